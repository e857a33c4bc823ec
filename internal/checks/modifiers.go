package checks

import (
	"regexp"

	"github.com/ifregtest/ifregtest/internal/rterrors"
)

var modifierPrefix = regexp.MustCompile(`^(!|\{[a-z]*\})\s*`)

// stripModifiers peels off "!"/"{invert}", "{status}", "{graphic}"/
// "{graphics}", and "{vital}" prefixes in a loop, returning the remaining
// check text. An unrecognized "{...}" token is a ParseError.
func stripModifiers(line int, text string) (string, Modifiers, error) {
	mod := Modifiers{Target: TargetStory}
	for {
		m := modifierPrefix.FindStringSubmatch(text)
		if m == nil {
			break
		}
		tok := m[1]
		text = text[len(m[0]):]
		switch tok {
		case "!", "{invert}":
			mod.Inverse = true
		case "{status}":
			mod.Target = TargetStatus
		case "{graphic}", "{graphics}":
			mod.Target = TargetGraphics
		case "{vital}":
			mod.Vital = true
		default:
			return "", Modifiers{}, rterrors.New(rterrors.KindParse, "line %d: unknown test modifier: %s", line, tok)
		}
	}
	return text, mod, nil
}
