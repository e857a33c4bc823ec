// Package trace renders the protocol conversation for --verbose 2: each
// outbound request and inbound update, JSON-highlighted and labeled.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	sentLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#83a598"))
	recvLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b8bb26"))
	errLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fb4934"))
)

// Printer writes a highlighted protocol trace to w.
type Printer struct {
	w     io.Writer
	lexer chroma.Lexer
	style *chroma.Style
}

// New builds a Printer over w, falling back to unhighlighted JSON if no
// JSON lexer is registered.
func New(w io.Writer) *Printer {
	lexer := lexers.Get("json")
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	return &Printer{w: w, lexer: lexer, style: style}
}

// Sent logs one outbound request.
func (p *Printer) Sent(req any) {
	fmt.Fprintf(p.w, "%s %s\n", sentLabel.Render(">>"), p.render(req))
}

// Received logs one inbound raw update.
func (p *Printer) Received(raw json.RawMessage) {
	var obj any
	if err := json.Unmarshal(raw, &obj); err != nil {
		fmt.Fprintf(p.w, "%s %s\n", recvLabel.Render("<<"), string(raw))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", recvLabel.Render("<<"), p.render(obj))
}

// Failed logs a session-level error (launch, timeout, protocol violation).
func (p *Printer) Failed(err error) {
	fmt.Fprintf(p.w, "%s %s\n", errLabel.Render("!!"), err)
}

func (p *Printer) render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if p.lexer == nil {
		return string(b)
	}
	iter, err := p.lexer.Tokenise(nil, string(b))
	if err != nil {
		return string(b)
	}
	var out strings.Builder
	for tok := iter(); tok != chroma.EOF; tok = iter() {
		entry := p.style.Get(tok.Type)
		s := lipgloss.NewStyle()
		if entry.Colour.IsSet() {
			s = s.Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())))
		}
		if entry.Bold == chroma.Yes {
			s = s.Bold(true)
		}
		out.WriteString(s.Render(tok.Value))
	}
	return out.String()
}
