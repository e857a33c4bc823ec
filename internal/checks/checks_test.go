package checks

import (
	"testing"

	"github.com/ifregtest/ifregtest/internal/display"
)

func storyProjection(text string) display.Projection {
	return display.Projection{Story: []display.Line{{Text: text}}}
}

func TestLiteralPassAndInverse(t *testing.T) {
	r := NewRegistry()
	p := storyProjection("Welcome to Zork.")

	c, err := r.Parse(1, "Welcome to Zork")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c, p); res != "" {
		t.Fatalf("expected pass, got %q", res)
	}

	c2, err := r.Parse(1, "! Welcome to Zork")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c2, p); res == "" {
		t.Fatal("expected inverse to fail since the literal is present")
	}
}

func TestStatusModifier(t *testing.T) {
	r := NewRegistry()
	p := display.Projection{
		Story:  []display.Line{{Text: "You are in a room."}},
		Status: []display.Line{{Text: "West of House  Score: 0"}},
	}

	c, err := r.Parse(1, "{status} West of House")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c, p); res != "" {
		t.Fatalf("expected pass, got %q", res)
	}

	c2, err := r.Parse(1, "West of House")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c2, p); res == "" {
		t.Fatal("expected failure: unqualified check searches story, not status")
	}
}

func TestLiteralCount(t *testing.T) {
	r := NewRegistry()
	p := storyProjection("leaf leaf leaf")

	c, err := r.Parse(1, "{count=3} leaf")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c, p); res != "" {
		t.Fatalf("expected pass, got %q", res)
	}

	c2, err := r.Parse(1, "{count=4} leaf")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c2, p); res != "only found 3 times" {
		t.Fatalf("got %q", res)
	}
}

func TestImageSpan(t *testing.T) {
	r := NewRegistry()
	w64, h64 := 64, 64
	p := display.Projection{Story: []display.Line{{
		Spans: []display.Span{{Kind: display.SpanSpecial, Special: "image", ImageID: 17, ImgWidth: &w64, ImgHeight: &h64}},
	}}}

	c, err := r.Parse(1, "{image=17 width=64}")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c, p); res != "" {
		t.Fatalf("expected pass, got %q", res)
	}

	c2, err := r.Parse(1, "{image=17 width=65}")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c2, p); res == "" {
		t.Fatal("expected failure for mismatched width")
	}
}

func TestHyperlinkSpan(t *testing.T) {
	r := NewRegistry()
	p := display.Projection{Story: []display.Line{{
		Spans: []display.Span{{Kind: display.SpanText, Text: "click here", Hyperlink: 5, HasLink: true}},
	}}}
	c, err := r.Parse(1, "{link=5} click here")
	if err != nil {
		t.Fatal(err)
	}
	if res := Eval(c, p); res != "" {
		t.Fatalf("expected pass, got %q", res)
	}
}

func TestInverseDuality(t *testing.T) {
	r := NewRegistry()
	cases := []display.Projection{storyProjection("alpha"), storyProjection("beta")}
	for _, p := range cases {
		c, err := r.Parse(1, "alpha")
		if err != nil {
			t.Fatal(err)
		}
		cInv, err := r.Parse(1, "! alpha")
		if err != nil {
			t.Fatal(err)
		}
		pass := Eval(c, p) == ""
		invPass := Eval(cInv, p) == ""
		if pass == invPass {
			t.Fatalf("inverse duality violated for %+v: pass=%v invPass=%v", p, pass, invPass)
		}
	}
}

func TestRegistrationOrderLiteralIsLastResort(t *testing.T) {
	r := NewRegistry()
	c, err := r.Parse(1, "/Welcome/")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*RegExp); !ok {
		t.Fatalf("expected RegExp check, got %T", c)
	}

	c2, err := r.Parse(1, "plain text")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c2.(*Literal); !ok {
		t.Fatalf("expected Literal catch-all, got %T", c2)
	}
}

func TestUnknownModifierIsParseError(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Parse(1, "{bogus} text"); err == nil {
		t.Fatal("expected parse error for unknown modifier")
	}
}
