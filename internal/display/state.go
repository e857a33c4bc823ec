// Package display reconstructs interpreter display state from the streamed
// RemGlk update protocol: per-window content, input focus, and the
// flattened projections the check engine consumes.
package display

import (
	"encoding/json"

	"github.com/ifregtest/ifregtest/internal/protocol"
	"github.com/ifregtest/ifregtest/internal/rterrors"
)

const NoWindow = -1

// State is the full reconstructed session: the window set, the monotonic
// generation counter, the special-input indicator, and the legacy
// single-focus convenience fields.
type State struct {
	Windows      map[int]*Window
	Generation   int
	SpecialInput string

	// Legacy single-focus view: derived, not authoritative. Exists only to
	// reject updates that would give two windows exclusive line/char focus.
	LineInputWin      int
	CharInputWin      int
	HyperlinkInputWin int
	MouseInputWin     int

	// LegacyInputCancelBug preserves the source's "winid"-literal lookup
	// bug in input cancellation instead of the corrected by-id lookup this
	// spec otherwise mandates. Off by default.
	LegacyInputCancelBug bool

	gridOrder []int // ascending grid ids, recomputed each Apply for status offsets
}

// NewState returns an empty session state, no windows seen yet.
func NewState() *State {
	return &State{
		Windows:           make(map[int]*Window),
		LineInputWin:      NoWindow,
		CharInputWin:      NoWindow,
		HyperlinkInputWin: NoWindow,
		MouseInputWin:     NoWindow,
	}
}

type windowDescAdapter struct{ d protocol.WindowDesc }

func (a windowDescAdapter) id() int        { return a.d.ID }
func (a windowDescAdapter) kindStr() string { return a.d.Type }
func (a windowDescAdapter) rock() int       { return a.d.Rock }

// Apply folds one decoded protocol update into the state, in the fixed
// order mandated by the protocol: generation, input cancellation, window
// set, content deltas, input set, special input.
func (s *State) Apply(u *protocol.Update) error {
	// 1. Generation.
	if u.Gen != nil {
		s.Generation = *u.Gen
	}

	// 2. Input cancellation preparation. Only meaningful when the update
	// actually carries an input list; an absent list means "no change",
	// matching the reference interpreter's own accept_output behavior.
	if u.Input != nil {
		byID := make(map[int]protocol.InputDesc, len(u.Input))
		for _, in := range u.Input {
			key := in.ID
			if s.LegacyInputCancelBug {
				// Faithful-to-source quirk: the lookup key is the literal
				// string "winid" rather than the window's actual id, so
				// no window ever finds its descriptor and every pending
				// input is cancelled here, whatever the update carries.
				key = legacyWinIDSentinel
			}
			byID[key] = in
		}
		for id, w := range s.Windows {
			if w.Input.Kind == "" {
				continue
			}
			desc, ok := byID[id]
			if !ok || w.Input.Gen < desc.Gen {
				w.Input = PendingInput{}
			}
		}
	}

	// 3. Window set.
	if u.Windows != nil {
		for _, w := range s.Windows {
			w.inPlace = false
		}
		for _, wd := range u.Windows {
			w, ok := s.Windows[wd.ID]
			if !ok {
				w = newWindow(windowDescAdapter{wd})
				w.ID = wd.ID
				s.Windows[wd.ID] = w
			}
			w.Rect = Rect{Left: wd.Left, Top: wd.Top, Width: wd.Width, Height: wd.Height}
			w.inPlace = true
			if w.Kind == KindGrid {
				w.GridWidth = wd.GridWidth
				w.resizeGrid(wd.GridHeight)
			}
		}
		for id, w := range s.Windows {
			if !w.inPlace {
				delete(s.Windows, id)
			}
		}
	}

	// 4. Content deltas.
	for _, cd := range u.Content {
		w, ok := s.Windows[cd.ID]
		if !ok {
			return rterrors.New(rterrors.KindProtocol, "content update for unknown window %d", cd.ID)
		}
		if w.Input.Kind == "line" {
			return rterrors.New(rterrors.KindProtocol, "content delivered to window %d while line input pending", cd.ID)
		}
		switch w.Kind {
		case KindGrid:
			if err := applyGridContent(w, cd); err != nil {
				return err
			}
		case KindBuffer:
			if err := applyBufferContent(w, cd); err != nil {
				return err
			}
		case KindGraphics:
			for _, d := range cd.Draw {
				w.Draws = append(w.Draws, d)
			}
		}
	}

	// 5. Input set.
	if u.Input != nil {
		s.LineInputWin, s.CharInputWin = NoWindow, NoWindow
		s.HyperlinkInputWin, s.MouseInputWin = NoWindow, NoWindow
		for _, in := range u.Input {
			w, ok := s.Windows[in.ID]
			if !ok {
				return rterrors.New(rterrors.KindProtocol, "input request for unknown window %d", in.ID)
			}
			w.Input = PendingInput{Kind: in.Type, Gen: in.Gen, Hyperlink: in.Hyperlink, Mouse: in.Mouse}
			switch in.Type {
			case "line":
				if s.LineInputWin != NoWindow {
					return rterrors.New(rterrors.KindProtocol, "multiple windows claim line input")
				}
				s.LineInputWin = in.ID
			case "char":
				if s.CharInputWin != NoWindow {
					return rterrors.New(rterrors.KindProtocol, "multiple windows claim char input")
				}
				s.CharInputWin = in.ID
			}
			if in.Hyperlink {
				s.HyperlinkInputWin = in.ID
			}
			if in.Mouse {
				s.MouseInputWin = in.ID
			}
		}
	}

	// 6. Special input.
	if u.SpecialInput != nil {
		s.SpecialInput = u.SpecialInput.Type
		s.LineInputWin, s.CharInputWin = NoWindow, NoWindow
		for _, w := range s.Windows {
			w.Input = PendingInput{}
		}
	} else if u.Input != nil {
		s.SpecialInput = ""
	}

	return nil
}

const legacyWinIDSentinel = -0x5a17 // never a real window id; stands in for the literal string "winid"

func applyGridContent(w *Window, cd protocol.ContentDelta) error {
	for _, line := range cd.Lines {
		spans, err := DecodeSpans(line.Content)
		if err != nil {
			return rterrors.Wrap(rterrors.KindProtocol, err, "window %d line %d", w.ID, line.Line)
		}
		if line.Line < 0 || line.Line >= len(w.GridLines) {
			continue
		}
		w.GridLines[line.Line] = spans
	}
	return nil
}

func applyBufferContent(w *Window, cd protocol.ContentDelta) error {
	if cd.Clear {
		w.Paragraphs = nil
	}
	for _, entry := range cd.Text {
		spans, err := DecodeSpans(entry.Content)
		if err != nil {
			return rterrors.Wrap(rterrors.KindProtocol, err, "window %d paragraph", w.ID)
		}
		if entry.Append && len(w.Paragraphs) > 0 && len(spans) > 0 {
			last := &w.Paragraphs[len(w.Paragraphs)-1]
			last.Spans = append(last.Spans, spans...)
			last.FlowBreak = entry.FlowBreak
			continue
		}
		w.Paragraphs = append(w.Paragraphs, Paragraph{Spans: spans, FlowBreak: entry.FlowBreak})
	}
	return nil
}

// rawJSON is a small helper used by tests to build content payloads inline.
func rawJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
