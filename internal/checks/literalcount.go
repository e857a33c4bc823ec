package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// LiteralCount requires a substring to occur at least N times, summed
// across all lines of the target projection. Written as "{count=N} needle".
//
// Matches are found by advancing one byte position after each hit, not by
// needle length, so "aa" is found twice in "aaa". This mirrors the source
// harness exactly (see DESIGN.md, Open Question decisions) and is deliberately
// not "fixed" to non-overlapping counting.
type LiteralCount struct {
	base
	Needle string
	N      int
}

func (l *LiteralCount) String() string {
	return fmt.Sprintf("LiteralCount(n=%d, %q)", l.N, truncate(l.Needle))
}

func (l *LiteralCount) subeval(p display.Projection) string {
	count := 0
	for _, ln := range linesFor(p, l.target) {
		count += countOverlapping(ln.Text, l.Needle)
	}
	if count >= l.N {
		return ""
	}
	return fmt.Sprintf("only found %d times", count)
}

func countOverlapping(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	count := 0
	pos := 0
	for {
		idx := strings.Index(haystack[pos:], needle)
		if idx < 0 {
			break
		}
		count++
		pos += idx + 1
	}
	return count
}

var literalCountPrefix = regexp.MustCompile(`^\{count=(\d+)\}\s*`)

// LiteralCountBuilder recognizes "{count=N} needle" check lines.
type LiteralCountBuilder struct{}

func (LiteralCountBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	m := literalCountPrefix.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	needle := text[len(m[0]):]
	return &LiteralCount{base: newBase(line, mod), Needle: needle, N: n}, true
}
