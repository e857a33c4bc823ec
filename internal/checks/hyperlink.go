package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// HyperlinkSpan requires a span with the given hyperlink id whose text
// contains needle. Written as "{link=ID} needle".
type HyperlinkSpan struct {
	base
	LinkID int
	Needle string
}

func (h *HyperlinkSpan) String() string {
	return fmt.Sprintf("HyperlinkSpan(link=%d, %q)", h.LinkID, truncate(h.Needle))
}

func (h *HyperlinkSpan) subeval(p display.Projection) string {
	for _, sp := range spansFor(p, h.target) {
		if sp.Kind == display.SpanText && sp.HasLink && sp.Hyperlink == h.LinkID && strings.Contains(sp.Text, h.Needle) {
			return ""
		}
	}
	return "not found"
}

var hyperlinkPrefix = regexp.MustCompile(`^\{link=(\d+)\}\s*`)

// HyperlinkSpanBuilder recognizes "{link=ID} needle" check lines.
type HyperlinkSpanBuilder struct{}

func (HyperlinkSpanBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	m := hyperlinkPrefix.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	needle := text[len(m[0]):]
	return &HyperlinkSpan{base: newBase(line, mod), LinkID: id, Needle: needle}, true
}
