package testfile

import (
	"strings"
	"testing"

	"github.com/ifregtest/ifregtest/internal/checks"
)

func parseString(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(src), checks.NewRegistry())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestParseBasic(t *testing.T) {
	src := `
** game: zork1.z3
** interpreter: dfrotz -m

* basic
> look
Welcome to Zork
{status} Score: 0
`
	f := parseString(t, src)
	if f.GameFile != "zork1.z3" || f.Interpreter != "dfrotz" {
		t.Fatalf("file defaults = %+v", f)
	}
	if len(f.Tests) != 1 || f.Tests[0].Name != "basic" {
		t.Fatalf("tests = %+v", f.Tests)
	}
	cmd := f.Tests[0].Commands[0]
	if cmd.Kind != "line" || cmd.Raw != "look" {
		t.Fatalf("command = %+v", cmd)
	}
	if len(cmd.Checks) != 2 {
		t.Fatalf("checks = %+v", cmd.Checks)
	}
}

func TestParseDuplicateTestName(t *testing.T) {
	src := "* one\n> x\n* one\n> y\n"
	_, err := Parse(strings.NewReader(src), checks.NewRegistry())
	if err == nil {
		t.Fatal("expected duplicate-name parse error")
	}
}

func TestParseUnknownCommandType(t *testing.T) {
	src := "* one\n> {bogus} x\n"
	_, err := Parse(strings.NewReader(src), checks.NewRegistry())
	if err == nil {
		t.Fatal("expected unknown command type error")
	}
}

func TestParseUnknownFileOption(t *testing.T) {
	src := "** bogus: value\n* one\n"
	_, err := Parse(strings.NewReader(src), checks.NewRegistry())
	if err == nil {
		t.Fatal("expected unknown option error")
	}
}

func TestIncludeExpansion(t *testing.T) {
	src := `
* setup
> north
> take lamp

* main
> {include} setup
> inventory
`
	f := parseString(t, src)
	main := f.testsIdx["main"]
	if len(main.Commands) != 3 {
		t.Fatalf("expanded commands = %+v", main.Commands)
	}
	if main.Commands[0].Raw != "north" || main.Commands[1].Raw != "take lamp" || main.Commands[2].Raw != "inventory" {
		t.Fatalf("expanded commands = %+v", main.Commands)
	}
}

func TestIncludeCycleDetected(t *testing.T) {
	src := `
* a
> {include} b

* b
> {include} a
`
	_, err := Parse(strings.NewReader(src), checks.NewRegistry())
	if err == nil {
		t.Fatal("expected include cycle error")
	}
}

func TestPreCommandChecks(t *testing.T) {
	src := `
* only
Welcome to Zork.
> look
`
	f := parseString(t, src)
	if len(f.Tests[0].PreChecks) != 1 {
		t.Fatalf("prechecks = %+v", f.Tests[0].PreChecks)
	}
}
