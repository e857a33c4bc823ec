package display

import "sort"

// Line is one flattened line, keeping both its plain-text projection and
// its raw spans so checks can choose which form to consume.
type Line struct {
	Text  string
	Spans []Span
}

// GridOffset records where one grid window's rows begin in the aggregate
// status projection.
type GridOffset struct {
	WindowID int
	Start    int
}

// Projection is the flattened view over all windows that the check engine
// evaluates against.
type Projection struct {
	Story    []Line
	Status   []Line
	Graphics [][]byte

	GridOffsets []GridOffset
}

// Project flattens the current window set into status/story/graphics
// projections. Grid windows are ordered by ascending id; each grid's
// starting row in the aggregate is recorded for index-mapping.
func (s *State) Project() Projection {
	var p Projection

	gridIDs := make([]int, 0)
	bufferIDs := make([]int, 0)
	graphicsIDs := make([]int, 0)
	for id, w := range s.Windows {
		switch w.Kind {
		case KindGrid:
			gridIDs = append(gridIDs, id)
		case KindBuffer:
			bufferIDs = append(bufferIDs, id)
		case KindGraphics:
			graphicsIDs = append(graphicsIDs, id)
		}
	}
	sort.Ints(gridIDs)
	sort.Ints(bufferIDs)
	sort.Ints(graphicsIDs)

	for _, id := range gridIDs {
		w := s.Windows[id]
		p.GridOffsets = append(p.GridOffsets, GridOffset{WindowID: id, Start: len(p.Status)})
		for _, spans := range w.GridLines {
			p.Status = append(p.Status, Line{Text: plainText(spans), Spans: spans})
		}
	}

	for _, id := range bufferIDs {
		w := s.Windows[id]
		for _, para := range w.Paragraphs {
			p.Story = append(p.Story, Line{Text: plainText(para.Spans), Spans: para.Spans})
		}
	}

	for _, id := range graphicsIDs {
		w := s.Windows[id]
		p.Graphics = append(p.Graphics, w.Draws...)
	}

	return p
}

func plainText(spans []Span) string {
	var out string
	for _, sp := range spans {
		out += sp.PlainText()
	}
	return out
}
