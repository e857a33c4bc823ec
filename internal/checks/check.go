// Package checks implements the declarative assertion language evaluated
// against reconstructed display state after every test turn.
package checks

import "github.com/ifregtest/ifregtest/internal/display"

// Target selects which projection a check runs against.
type Target int

const (
	TargetStory Target = iota
	TargetStatus
	TargetGraphics
)

func (t Target) String() string {
	switch t {
	case TargetStatus:
		return "status"
	case TargetGraphics:
		return "graphics"
	default:
		return "story"
	}
}

// Modifiers is the set of generic prefixes stripped from a check line
// before the remaining text is offered to the builder registry.
type Modifiers struct {
	Inverse bool
	Target  Target
	Vital   bool
}

// Check is an evaluated predicate over the reconstructed display state.
type Check interface {
	// SourceLine is the 1-based line number in the test file, for diagnostics.
	SourceLine() int
	Vital() bool
	Inverse() bool
	Target() Target
	// String renders the check for diagnostic output.
	String() string
	// subeval runs the check's positive-form predicate against the chosen
	// projection and returns a failure reason, or "" on success.
	subeval(p display.Projection) string
}

// Eval runs a check's predicate and applies the inverse modifier. "Inverse
// passes when the positive form finds nothing" is the fixed semantics.
func Eval(c Check, p display.Projection) string {
	res := c.subeval(p)
	if !c.Inverse() {
		return res
	}
	if res != "" {
		return ""
	}
	return "inverse check should have failed"
}

// base carries the fields every concrete check shares.
type base struct {
	line    int
	inverse bool
	target  Target
	vital   bool
}

func (b base) SourceLine() int  { return b.line }
func (b base) Vital() bool      { return b.vital }
func (b base) Inverse() bool    { return b.inverse }
func (b base) Target() Target   { return b.target }

func newBase(line int, mod Modifiers) base {
	return base{line: line, inverse: mod.Inverse, target: mod.Target, vital: mod.Vital}
}

// linesFor returns the plain-text lines for the check's target projection.
func linesFor(p display.Projection, t Target) []display.Line {
	switch t {
	case TargetStatus:
		return p.Status
	case TargetStory:
		return p.Story
	default:
		return nil
	}
}

// spansFor flattens all spans across the target projection's lines, in
// order. Used by span-level checks (hyperlink/image/json).
func spansFor(p display.Projection, t Target) []display.Span {
	var out []display.Span
	for _, ln := range linesFor(p, t) {
		out = append(out, ln.Spans...)
	}
	return out
}
