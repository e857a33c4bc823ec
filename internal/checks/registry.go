package checks

// Builder attempts to parse a (post-modifier-stripping) check line into a
// concrete Check. It returns (nil, false) to decline, letting the next
// builder in the registry try.
type Builder interface {
	Build(sourceLine int, text string, mod Modifiers) (Check, bool)
}

// Registry is the ordered list of check builders. The first one whose
// Build returns a check wins; extension builders registered via Prepend
// are tried before the built-ins.
type Registry struct {
	builders []Builder
}

// NewRegistry returns a registry with the built-in check classes installed
// in the fixed order: RegExp, LiteralCount, HyperlinkSpan, ImageSpan,
// JsonSpan, Literal. Literal is the catch-all and must stay last.
func NewRegistry() *Registry {
	return &Registry{builders: []Builder{
		RegExpBuilder{},
		LiteralCountBuilder{},
		HyperlinkSpanBuilder{},
		ImageSpanBuilder{},
		JsonSpanBuilder{},
		LiteralBuilder{},
	}}
}

// Prepend installs an extension builder ahead of every currently-registered
// builder, including previously prepended ones, so among extensions the
// last-loaded is tried first.
func (r *Registry) Prepend(b Builder) {
	r.builders = append([]Builder{b}, r.builders...)
}

// Parse strips modifier prefixes from a raw check line and offers the
// remainder to each builder in order, returning the first match.
func (r *Registry) Parse(sourceLine int, rawLine string) (Check, error) {
	text, mod, err := stripModifiers(sourceLine, rawLine)
	if err != nil {
		return nil, err
	}
	for _, b := range r.builders {
		if c, ok := b.Build(sourceLine, text, mod); ok {
			return c, nil
		}
	}
	// Unreachable: LiteralBuilder always matches.
	return &Literal{base: newBase(sourceLine, mod), Needle: text}, nil
}
