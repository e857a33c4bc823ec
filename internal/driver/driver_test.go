package driver

import (
	"context"
	"testing"
	"time"

	"github.com/ifregtest/ifregtest/internal/checks"
	"github.com/ifregtest/ifregtest/internal/testfile"
)

// cheapScript is a dumb-terminal fake interpreter: it prints an opening
// prompt, then echoes a fixed response to every line of input, always
// ending the prompt with "\n>" the way CheapRead expects.
const cheapScript = `printf "You are in a room.\n>"
while IFS= read -r line; do
  printf "\nYou said: %s\n>" "$line"
done`

func mustCheck(t *testing.T, r *checks.Registry, line int, text string) checks.Check {
	t.Helper()
	c, err := r.Parse(line, text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return c
}

func TestRunCheapModePassesAndFails(t *testing.T) {
	registry := checks.NewRegistry()
	f := &testfile.File{Interpreter: "sh", InterpArgs: []string{"-c", cheapScript}, GameFile: "unused"}
	test := &testfile.Test{
		Name: "basic",
		Commands: []*testfile.Command{
			{Kind: "line", Raw: "look", Checks: []checks.Check{
				mustCheck(t, registry, 1, "You said: look"),
				mustCheck(t, registry, 2, "this text never appears"),
			}},
		},
	}

	opts := Options{Format: FormatCheap, Timeout: 2 * time.Second}
	result, err := Run(context.Background(), f, []*testfile.Test{test}, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Tests) != 1 {
		t.Fatalf("expected 1 test result, got %d", len(result.Tests))
	}
	tr := result.Tests[0]
	if len(tr.Failures) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d: %+v", len(tr.Failures), tr.Failures)
	}
	if tr.DurationMS < 0 {
		t.Fatalf("expected non-negative duration, got %d", tr.DurationMS)
	}
}

func TestRunRejectsNonPositiveTimeout(t *testing.T) {
	f := &testfile.File{Interpreter: "sh", InterpArgs: []string{"-c", cheapScript}, GameFile: "unused"}
	test := &testfile.Test{Name: "basic"}
	_, err := Run(context.Background(), f, []*testfile.Test{test}, Options{Format: FormatCheap, Timeout: 0})
	if err == nil {
		t.Fatal("expected an error for non-positive timeout")
	}
}

func TestRunVitalFailureAbortsTestOnly(t *testing.T) {
	registry := checks.NewRegistry()
	f := &testfile.File{Interpreter: "sh", InterpArgs: []string{"-c", cheapScript}, GameFile: "unused"}
	test := &testfile.Test{
		Name: "vital",
		Commands: []*testfile.Command{
			{Kind: "line", Raw: "look", Checks: []checks.Check{
				mustCheck(t, registry, 1, "{vital}never appears here"),
			}},
			{Kind: "line", Raw: "inventory", Checks: []checks.Check{
				mustCheck(t, registry, 2, "You said: inventory"),
			}},
		},
	}

	result, err := Run(context.Background(), f, []*testfile.Test{test}, Options{Format: FormatCheap, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tr := result.Tests[0]
	if !tr.Aborted {
		t.Fatal("expected test to be marked aborted after vital failure")
	}
	if len(tr.Failures) != 1 {
		t.Fatalf("expected only the vital failure to be recorded, got %+v", tr.Failures)
	}
}

// remScript is a persistent fake RemGlk interpreter: it answers the init
// request with "Initial room.", then answers every later request by
// clearing the window and printing "Moved room.", always with line input
// pending on window 1.
const remScript = `i=0
while IFS= read -r line; do
  i=$((i+1))
  if [ "$i" -eq 1 ]; then
    printf '{"type":"update","gen":1,"windows":[{"id":1,"type":"buffer","rock":1}],"content":[{"id":1,"text":[{"content":[{"style":"normal","text":"Initial room."}]}]}],"input":[{"id":1,"type":"line","gen":1}]}\n'
  else
    printf '{"type":"update","gen":%d,"windows":[{"id":1,"type":"buffer","rock":1}],"content":[{"id":1,"clear":true,"text":[{"content":[{"style":"normal","text":"Moved room."}]}]}],"input":[{"id":1,"type":"line","gen":%d}]}\n' "$i" "$i"
  fi
done`

// hangScript never replies, so every read times out: a stand-in for a
// wedged or crashed interpreter.
const hangScript = `while IFS= read -r line; do :; done`

func TestRunTimeoutIsRecordedAsFailureNotAborted(t *testing.T) {
	registry := checks.NewRegistry()
	f := &testfile.File{Interpreter: "sh", InterpArgs: []string{"-c", hangScript}, GameFile: "unused"}
	tests := []*testfile.Test{
		{Name: "hangs", Commands: []*testfile.Command{
			{Kind: "line", Raw: "look", Checks: []checks.Check{mustCheck(t, registry, 1, "anything")}},
		}},
		{Name: "also-hangs", Commands: []*testfile.Command{
			{Kind: "line", Raw: "look", Checks: []checks.Check{mustCheck(t, registry, 1, "anything")}},
		}},
	}

	opts := Options{Format: FormatRem, Timeout: 30 * time.Millisecond}
	result, err := Run(context.Background(), f, tests, opts)
	if err != nil {
		t.Fatalf("Run should not return a fatal error for a per-test timeout: %v", err)
	}
	if len(result.Tests) != 2 {
		t.Fatalf("expected the run to continue through both tests, got %d results", len(result.Tests))
	}
	for _, tr := range result.Tests {
		if !tr.Aborted {
			t.Fatalf("expected test %q to be marked aborted after the timeout", tr.Name)
		}
		if len(tr.Failures) != 1 || tr.Failures[0].Check != "runtime error" {
			t.Fatalf("expected a single recorded runtime-error failure for %q, got %+v", tr.Name, tr.Failures)
		}
	}
}

func TestRunPreChecksEvaluatedBeforePrecommands(t *testing.T) {
	registry := checks.NewRegistry()
	f := &testfile.File{
		Interpreter: "sh", InterpArgs: []string{"-c", remScript}, GameFile: "unused",
		PreCommands: []*testfile.Command{{Kind: "line", Raw: "look"}},
	}
	test := &testfile.Test{
		Name:      "ordering",
		PreChecks: []checks.Check{mustCheck(t, registry, 1, "Initial room.")},
		Commands: []*testfile.Command{
			{Kind: "line", Raw: "go north", Checks: []checks.Check{mustCheck(t, registry, 2, "Moved room.")}},
		},
	}

	result, err := Run(context.Background(), f, []*testfile.Test{test}, Options{Format: FormatRem, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tr := result.Tests[0]
	if len(tr.Failures) != 0 {
		t.Fatalf("expected no failures: pre-checks must see the initial state, not the precommand's. got %+v", tr.Failures)
	}
}

func TestRunVitalFailureTwiceAbortsRun(t *testing.T) {
	registry := checks.NewRegistry()
	f := &testfile.File{Interpreter: "sh", InterpArgs: []string{"-c", cheapScript}, GameFile: "unused"}
	makeTest := func(name string) *testfile.Test {
		return &testfile.Test{
			Name: name,
			Commands: []*testfile.Command{
				{Kind: "line", Raw: "look", Checks: []checks.Check{
					mustCheck(t, registry, 1, "{vital}never appears here"),
				}},
			},
		}
	}
	tests := []*testfile.Test{makeTest("a"), makeTest("b"), makeTest("c")}

	opts := Options{Format: FormatCheap, Timeout: 2 * time.Second, VitalAbortsRun: true}
	result, err := Run(context.Background(), f, tests, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.AbortedRun {
		t.Fatal("expected the whole run to be aborted after two vital failures")
	}
	if len(result.Tests) != 2 {
		t.Fatalf("expected the run to stop after the second test, got %d results", len(result.Tests))
	}
}
