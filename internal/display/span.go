package display

import (
	"encoding/json"
	"fmt"
)

// SpanKind distinguishes the two span shapes the protocol emits.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanSpecial
)

// Span is one styled or special segment of a grid line or buffer paragraph.
type Span struct {
	Kind SpanKind

	// SpanText fields.
	Style     string `json:"style,omitempty"`
	Text      string `json:"text,omitempty"`
	Hyperlink int    `json:"hyperlink,omitempty"`
	HasLink   bool   `json:"-"`

	// SpanSpecial fields ("special":"image" is the only interpreted kind;
	// others are preserved opaquely in Raw).
	Special   string   `json:"special,omitempty"`
	ImageID   int      `json:"image,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
	AltText   string   `json:"alttext,omitempty"`
	ImgWidth  *int     `json:"width,omitempty"`
	ImgHeight *int     `json:"height,omitempty"`
	Raw       map[string]any `json:"-"`
}

// PlainText returns the textual content of the span, empty for specials.
func (s Span) PlainText() string {
	if s.Kind == SpanText {
		return s.Text
	}
	return ""
}

// DecodeSpans walks a heterogeneous content array: each element is either
// a dict with "style"/"text" (+ optional "hyperlink"), a dict with
// "special", or a legacy pair of two consecutive scalars [style, text].
// The decoder is an explicit cursor over the array, not a runtime type
// query dispatch.
func DecodeSpans(raw json.RawMessage) ([]Span, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode span array: %w", err)
	}

	var spans []Span
	i := 0
	for i < len(items) {
		var obj map[string]any
		if err := json.Unmarshal(items[i], &obj); err == nil {
			span, err := decodeSpanObject(obj)
			if err != nil {
				return nil, err
			}
			spans = append(spans, span)
			i++
			continue
		}

		// Legacy pair form: two consecutive scalars [style, text].
		if i+1 >= len(items) {
			return nil, fmt.Errorf("dangling scalar in span array at index %d", i)
		}
		var style, text string
		if err := json.Unmarshal(items[i], &style); err != nil {
			return nil, fmt.Errorf("decode legacy span style: %w", err)
		}
		if err := json.Unmarshal(items[i+1], &text); err != nil {
			return nil, fmt.Errorf("decode legacy span text: %w", err)
		}
		spans = append(spans, Span{Kind: SpanText, Style: style, Text: text})
		i += 2
	}
	return spans, nil
}

func decodeSpanObject(obj map[string]any) (Span, error) {
	if special, ok := obj["special"].(string); ok {
		s := Span{Kind: SpanSpecial, Special: special, Raw: obj}
		if special == "image" {
			if v, ok := numberOf(obj["image"]); ok {
				s.ImageID = v
			}
			if v, ok := obj["alignment"].(string); ok {
				s.Alignment = v
			}
			if v, ok := obj["alttext"].(string); ok {
				s.AltText = v
			}
			if v, ok := numberOf(obj["width"]); ok {
				s.ImgWidth = &v
			}
			if v, ok := numberOf(obj["height"]); ok {
				s.ImgHeight = &v
			}
		}
		return s, nil
	}

	s := Span{Kind: SpanText, Raw: obj}
	if v, ok := obj["style"].(string); ok {
		s.Style = v
	}
	if v, ok := obj["text"].(string); ok {
		s.Text = v
	}
	if v, ok := numberOf(obj["hyperlink"]); ok {
		s.Hyperlink = v
		s.HasLink = true
	}
	return s, nil
}

func numberOf(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}
