package checks

import (
	"fmt"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// Literal matches a substring against any line of the target projection.
// It is the catch-all builder: it always succeeds, so it must be
// registered last.
type Literal struct {
	base
	Needle string
}

func (l *Literal) String() string {
	return fmt.Sprintf("Literal(%q)", truncate(l.Needle))
}

func (l *Literal) subeval(p display.Projection) string {
	for _, ln := range linesFor(p, l.target) {
		if strings.Contains(ln.Text, l.Needle) {
			return ""
		}
	}
	return "not found"
}

// LiteralBuilder always matches; it must be last in the registry.
type LiteralBuilder struct{}

func (LiteralBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	return &Literal{base: newBase(line, mod), Needle: text}, true
}

func truncate(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
