package gamesession

import (
	"strconv"
	"strings"

	"github.com/ifregtest/ifregtest/internal/command"
	"github.com/ifregtest/ifregtest/internal/rterrors"
	"github.com/ifregtest/ifregtest/internal/testfile"
)

// decodeCommand turns a parsed testfile.Command into the concrete
// command.Command tagged-union value the session sends.
func decodeCommand(c *testfile.Command) (command.Command, error) {
	switch c.Kind {
	case "line":
		return command.Line{Text: c.Raw}, nil
	case "char":
		return command.Char{Key: resolveCharKey(c.Raw)}, nil
	case "hyperlink":
		v, err := strconv.Atoi(strings.TrimSpace(c.Raw))
		if err != nil {
			return nil, rterrors.Wrap(rterrors.KindParse, err, "hyperlink command value")
		}
		return command.Hyperlink{Value: v}, nil
	case "mouse":
		fields := strings.Fields(c.Raw)
		if len(fields) != 2 {
			return nil, rterrors.New(rterrors.KindParse, "mouse command needs \"x y\", got %q", c.Raw)
		}
		x, err1 := strconv.Atoi(fields[0])
		y, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, rterrors.New(rterrors.KindParse, "mouse command needs integer x y, got %q", c.Raw)
		}
		return command.Mouse{X: x, Y: y}, nil
	case "timer":
		return command.Timer{}, nil
	case "arrange":
		fields := strings.Fields(c.Raw)
		if len(fields) != 2 {
			return nil, rterrors.New(rterrors.KindParse, "arrange command needs \"width height\", got %q", c.Raw)
		}
		w, err1 := strconv.Atoi(fields[0])
		h, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, rterrors.New(rterrors.KindParse, "arrange command needs integer width height, got %q", c.Raw)
		}
		return command.Arrange{Width: w, Height: h}, nil
	case "refresh":
		return command.Refresh{}, nil
	case "filerefprompt":
		return command.FilerefPrompt{Text: c.Raw}, nil
	case "debug":
		return command.Debug{Text: c.Raw}, nil
	default:
		return nil, command.ErrUnknownKind(c.Kind)
	}
}

// resolveCharKey accepts a named special key, a decimal scalar, a
// 0x-prefixed hex scalar, a single character literal, or empty (meaning
// newline), per spec.md §6.
func resolveCharKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "return"
	}
	if command.SpecialKeys[strings.ToLower(raw)] {
		return strings.ToLower(raw)
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		if n, err := strconv.ParseInt(raw[2:], 16, 32); err == nil {
			return string(rune(n))
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return string(rune(n))
	}
	r := []rune(raw)
	if len(r) == 1 {
		return string(r[0])
	}
	return raw
}
