// Package command defines the tagged union of user input actions a test can
// drive the interpreter through.
package command

import "fmt"

// Command is implemented by every input-action variant. It is a closed
// tagged union: Kind identifies the concrete type without a runtime type
// switch at every call site.
type Command interface {
	Kind() string
}

type Line struct{ Text string }

func (Line) Kind() string { return "line" }

// Char is a single keypress: either a literal Unicode scalar (Key holds the
// one-rune string) or a named special key (Key holds the lower-case name
// from SpecialKeys).
type Char struct{ Key string }

func (Char) Kind() string { return "char" }

type Hyperlink struct{ Value int }

func (Hyperlink) Kind() string { return "hyperlink" }

type Mouse struct{ X, Y int }

func (Mouse) Kind() string { return "mouse" }

type Timer struct{}

func (Timer) Kind() string { return "timer" }

type Arrange struct{ Width, Height int }

func (Arrange) Kind() string { return "arrange" }

type Refresh struct{}

func (Refresh) Kind() string { return "refresh" }

type FilerefPrompt struct{ Text string }

func (FilerefPrompt) Kind() string { return "filerefprompt" }

type Debug struct{ Text string }

func (Debug) Kind() string { return "debug" }

// Include is resolved to the referenced test's command list at parse time;
// it never reaches the driver.
type Include struct{ Name string }

func (Include) Kind() string { return "include" }

// SpecialKeys is the fixed table of named special keys accepted by a Char
// command, besides a literal Unicode scalar.
var SpecialKeys = map[string]bool{
	"left": true, "right": true, "up": true, "down": true,
	"return": true, "delete": true, "escape": true, "tab": true,
	"pageup": true, "pagedown": true, "home": true, "end": true,
	"space": true,
	"func1": true, "func2": true, "func3": true, "func4": true,
	"func5": true, "func6": true, "func7": true, "func8": true,
	"func9": true, "func10": true, "func11": true, "func12": true,
}

// ErrUnknownKind is returned by parsers encountering an unrecognized
// command-type prefix.
func ErrUnknownKind(kind string) error {
	return fmt.Errorf("unknown command type %q", kind)
}
