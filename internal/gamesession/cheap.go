package gamesession

import (
	"context"
	"time"

	"github.com/ifregtest/ifregtest/internal/channel"
	"github.com/ifregtest/ifregtest/internal/display"
	"github.com/ifregtest/ifregtest/internal/rterrors"
	"github.com/ifregtest/ifregtest/internal/testfile"
)

// CheapSession drives the dumb-terminal variant: no JSON, no window
// model, just raw lines read until the interpreter's ">" prompt. Story
// text is all the check engine ever sees; Status and Graphics are
// always empty.
type CheapSession struct {
	ch          *channel.Channel
	readTimeout time.Duration
}

// NewCheapSession builds a session around an already-launched channel.
func NewCheapSession(ch *channel.Channel, readTimeout time.Duration) *CheapSession {
	return &CheapSession{ch: ch, readTimeout: readTimeout}
}

func (s *CheapSession) Init(ctx context.Context) (display.Projection, error) {
	return s.readPrompt(ctx)
}

func (s *CheapSession) Send(ctx context.Context, c *testfile.Command) (display.Projection, error) {
	if c.Kind != "line" {
		return display.Projection{}, rterrors.New(rterrors.KindCheck, "cheap mode only supports line input, got %q", c.Kind)
	}
	if err := channel.CheapWrite(s.ch.Stdin(), c.Raw); err != nil {
		return display.Projection{}, err
	}
	return s.readPrompt(ctx)
}

func (s *CheapSession) Close() error { return s.ch.Close() }

func (s *CheapSession) readPrompt(ctx context.Context) (display.Projection, error) {
	rctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()
	lines, err := channel.CheapRead(rctx, s.ch.Stdout())
	if err != nil {
		return display.Projection{}, err
	}
	proj := display.Projection{}
	for _, ln := range lines {
		proj.Story = append(proj.Story, display.Line{Text: ln, Spans: []display.Span{{Kind: display.SpanText, Text: ln}}})
	}
	return proj, nil
}
