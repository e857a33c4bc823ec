package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPrinterSentIncludesPayload(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Sent(map[string]any{"type": "line", "gen": 1, "value": "look"})

	out := stripANSI(buf.String())
	if !strings.Contains(out, ">>") {
		t.Fatalf("expected a sent marker, got %q", out)
	}
	if !strings.Contains(out, `"look"`) {
		t.Fatalf("expected the request value in output, got %q", out)
	}
}

func TestPrinterReceivedFallsBackOnBadJSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Received(json.RawMessage(`not json`))

	out := stripANSI(buf.String())
	if !strings.Contains(out, "not json") {
		t.Fatalf("expected raw fallback text, got %q", out)
	}
}

func TestPrinterReceivedHighlightsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Received(json.RawMessage(`{"gen":2,"windows":[]}`))

	out := stripANSI(buf.String())
	if !strings.Contains(out, `"gen"`) {
		t.Fatalf("expected highlighted json in output, got %q", out)
	}
}

func TestPrinterFailed(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Failed(errors.New("boom"))

	out := stripANSI(buf.String())
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected the error text in output, got %q", out)
	}
}

// stripANSI removes SGR escape sequences so assertions can check on plain
// text regardless of whether the test runs in a color-capable terminal.
func stripANSI(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		if r == 0x1b {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
