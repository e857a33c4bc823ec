package testfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/ifregtest/ifregtest/internal/checks"
	"github.com/ifregtest/ifregtest/internal/rterrors"
)

// knownCommandKinds is the fixed set of command-type prefixes accepted
// after "> {type} text"; default is "line" when no {type} is given.
var knownCommandKinds = map[string]bool{
	"line": true, "char": true, "hyperlink": true, "mouse": true,
	"timer": true, "arrange": true, "refresh": true,
	"filerefprompt": true, "debug": true, "include": true,
}

// Parse reads a declarative test file: line-based, case-sensitive, "#"
// begins a comment. See SPEC_FULL.md §1.F for the directive grammar.
func Parse(r io.Reader, registry *checks.Registry) (*File, error) {
	f := &File{testsIdx: make(map[string]*Test)}

	var curTest *Test
	var curCmd *Command

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ln := strings.TrimSpace(scanner.Text())
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}

		if strings.HasPrefix(ln, "**") {
			rest := strings.TrimSpace(ln[2:])
			pos := strings.IndexByte(rest, ':')
			if pos < 0 {
				continue
			}
			key := strings.TrimSpace(rest[:pos])
			val := strings.TrimSpace(rest[pos+1:])
			if curTest == nil {
				if err := applyFileOption(f, key, val, lineNo); err != nil {
					return nil, err
				}
			} else {
				if err := applyTestOption(curTest, key, val, lineNo); err != nil {
					return nil, err
				}
			}
			continue
		}

		if strings.HasPrefix(ln, "*") {
			name := strings.TrimSpace(ln[1:])
			if _, dup := f.testsIdx[name]; dup {
				return nil, rterrors.New(rterrors.KindParse, "line %d: test name used twice: %s", lineNo, name)
			}
			curTest = &Test{Name: name}
			f.Tests = append(f.Tests, curTest)
			f.testsIdx[name] = curTest
			curCmd = nil
			continue
		}

		if strings.HasPrefix(ln, ">") {
			if curTest == nil {
				return nil, rterrors.New(rterrors.KindParse, "line %d: command outside of any test", lineNo)
			}
			rest := strings.TrimSpace(ln[1:])
			kind, text := splitCommandType(rest)
			if !knownCommandKinds[kind] {
				return nil, rterrors.New(rterrors.KindParse, "line %d: unknown command type %q", lineNo, kind)
			}
			curCmd = &Command{Raw: text, Kind: kind}
			curTest.Commands = append(curTest.Commands, curCmd)
			continue
		}

		// Any other non-empty line is a check on the current (or
		// pre-init) command.
		check, err := registry.Parse(lineNo, ln)
		if err != nil {
			return nil, err
		}
		if curCmd != nil {
			curCmd.Checks = append(curCmd.Checks, check)
		} else if curTest != nil {
			curTest.PreChecks = append(curTest.PreChecks, check)
		} else {
			return nil, rterrors.New(rterrors.KindParse, "line %d: check outside of any test", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, rterrors.Wrap(rterrors.KindParse, err, "reading test file")
	}

	if err := resolveIncludes(f); err != nil {
		return nil, err
	}
	return f, nil
}

func splitCommandType(rest string) (kind, text string) {
	if strings.HasPrefix(rest, "{") {
		end := strings.IndexByte(rest, '}')
		if end > 0 {
			kind = rest[1:end]
			text = strings.TrimSpace(rest[end+1:])
			return kind, text
		}
	}
	return "line", rest
}

func applyFileOption(f *File, key, val string, lineNo int) error {
	switch key {
	case "pre", "precommand":
		f.PreCommands = append(f.PreCommands, &Command{Raw: val, Kind: "line"})
	case "game":
		f.GameFile = val
	case "interpreter":
		parts := strings.Fields(val)
		if len(parts) > 0 {
			f.Interpreter = parts[0]
			f.InterpArgs = parts[1:]
		}
	case "remformat":
		f.RemFormat = strings.EqualFold(val, "true") || strings.EqualFold(val, "yes")
	case "checkclass":
		f.CheckClass = append(f.CheckClass, val)
	default:
		return rterrors.New(rterrors.KindParse, "line %d: unknown option: ** %s", lineNo, key)
	}
	return nil
}

func applyTestOption(t *Test, key, val string, lineNo int) error {
	switch key {
	case "game":
		t.GameFile = val
	case "interpreter":
		parts := strings.Fields(val)
		if len(parts) > 0 {
			t.Interpreter = parts[0]
			t.InterpArgs = parts[1:]
		}
	default:
		return rterrors.New(rterrors.KindParse, "line %d: unknown option: ** %s in * %s", lineNo, key, t.Name)
	}
	return nil
}

// resolveIncludes expands Include commands into the referenced test's
// command list at parse time. Cycle detection walks an ancestor stack.
func resolveIncludes(f *File) error {
	for _, t := range f.Tests {
		expanded, err := expandCommands(f, t.Commands, []string{t.Name})
		if err != nil {
			return err
		}
		t.Commands = expanded
	}
	return nil
}

func expandCommands(f *File, cmds []*Command, ancestors []string) ([]*Command, error) {
	var out []*Command
	for _, c := range cmds {
		if c.Kind != "include" {
			out = append(out, c)
			continue
		}
		name := c.Raw
		for _, a := range ancestors {
			if a == name {
				return nil, rterrors.New(rterrors.KindParse, "include cycle: %s", strings.Join(append(ancestors, name), " -> "))
			}
		}
		included, ok := f.testsIdx[name]
		if !ok {
			return nil, rterrors.New(rterrors.KindParse, "include of unknown test %q", name)
		}
		nested, err := expandCommands(f, included.Commands, append(ancestors, name))
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}
