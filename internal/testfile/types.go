package testfile

import "github.com/ifregtest/ifregtest/internal/checks"

// Command is one cycle of a Test: an input action, followed by the checks
// evaluated against the resulting state.
type Command struct {
	Raw    string // the action descriptor, as the driver's encoder expects it
	Kind   string // "line", "char", "hyperlink", "mouse", "timer", "arrange", "refresh", "filerefprompt", "debug"
	Checks []checks.Check
}

// Test represents one `* name` block: a session from the beginning,
// optionally with file-level overrides and a pre-command.
type Test struct {
	Name        string
	GameFile    string // overrides the file-level default; empty if unset
	Interpreter string // overrides the file-level default; empty if unset
	InterpArgs  []string

	PreChecks []checks.Check // checks evaluated against the initial state, before any input
	Commands  []*Command
}

// File is the parsed test file: file-level defaults plus the ordered list
// of tests.
type File struct {
	GameFile    string
	Interpreter string
	InterpArgs  []string
	RemFormat   bool
	CheckClass  []string // paths/globs of extension check-class plugins to load
	PreCommands []*Command

	Tests    []*Test
	testsIdx map[string]*Test
}
