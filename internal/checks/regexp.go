package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// RegExp matches an unanchored regular expression against any line of the
// target projection. Check text is written as /pattern/.
type RegExp struct {
	base
	Pattern string
	re      *regexp.Regexp
}

func (r *RegExp) String() string {
	return fmt.Sprintf("RegExp(%q)", truncate(r.Pattern))
}

func (r *RegExp) subeval(p display.Projection) string {
	for _, ln := range linesFor(p, r.target) {
		if r.re.MatchString(ln.Text) {
			return ""
		}
	}
	return "not found"
}

// RegExpBuilder recognizes /pattern/ check lines.
type RegExpBuilder struct{}

func (RegExpBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}
	pattern := strings.TrimSuffix(strings.TrimPrefix(text, "/"), "/")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return &RegExp{base: newBase(line, mod), Pattern: pattern, re: re}, true
}
