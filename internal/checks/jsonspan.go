package checks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// JsonSpan requires a span (or, against the graphics target, a raw draw
// object) whose fields satisfy every specified key→value equality. Written
// as "{json key=value key2=\"quoted value\" key3=42 key4=true}".
type JsonSpan struct {
	base
	Pairs map[string]any
}

func (j *JsonSpan) String() string {
	return fmt.Sprintf("JsonSpan(%d pairs)", len(j.Pairs))
}

func (j *JsonSpan) subeval(p display.Projection) string {
	if j.target == TargetGraphics {
		for _, raw := range p.Graphics {
			var obj map[string]any
			if err := json.Unmarshal(raw, &obj); err != nil {
				continue
			}
			if matchesAll(obj, j.Pairs) {
				return ""
			}
		}
		return "not found"
	}
	for _, sp := range spansFor(p, j.target) {
		if sp.Raw != nil && matchesAll(sp.Raw, j.Pairs) {
			return ""
		}
	}
	return "not found"
}

func matchesAll(obj map[string]any, want map[string]any) bool {
	for k, v := range want {
		got, ok := obj[k]
		if !ok {
			return false
		}
		if !jsonValueEqual(got, v) {
			return false
		}
	}
	return true
}

func jsonValueEqual(a, b any) bool {
	if af, ok := a.(float64); ok {
		switch bv := b.(type) {
		case float64:
			return af == bv
		case int:
			return af == float64(bv)
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// JsonSpanBuilder recognizes "{json ...}" check lines.
type JsonSpanBuilder struct{}

func (JsonSpanBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	if !strings.HasPrefix(text, "{json") {
		return nil, false
	}
	close := strings.LastIndex(text, "}")
	if close < 0 {
		return nil, false
	}
	body := strings.TrimSpace(text[len("{json") : close])
	pairs, err := parseKVGrammar(body)
	if err != nil {
		return nil, false
	}
	return &JsonSpan{base: newBase(line, mod), Pairs: pairs}, true
}

// parseKVGrammar parses a space-separated list of key=value pairs. Values
// accept single- or double-quoted strings, numeric literals, true/false/
// null, or a bareword resolved as a plain string.
func parseKVGrammar(s string) (map[string]any, error) {
	out := make(map[string]any)
	i := 0
	n := len(s)
	for i < n {
		for i < n && s[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("expected key=value at %q", s[i:])
		}
		key := s[i : i+eq]
		i += eq + 1
		if i >= n {
			return nil, fmt.Errorf("missing value for key %q", key)
		}

		var val any
		switch s[i] {
		case '"', '\'':
			quote := s[i]
			j := i + 1
			for j < n && s[j] != quote {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("unterminated quoted value for key %q", key)
			}
			val = s[i+1 : j]
			i = j + 1
		default:
			j := i
			for j < n && s[j] != ' ' {
				j++
			}
			token := s[i:j]
			i = j
			val = resolveBareword(token)
		}
		out[key] = val
	}
	return out, nil
}

func resolveBareword(tok string) any {
	switch tok {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}
