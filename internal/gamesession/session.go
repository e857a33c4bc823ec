// Package gamesession drives one test's subprocess session: encoding
// commands, pumping responses through the display reconstructor, and
// handing back the flattened projection the check engine evaluates.
package gamesession

import (
	"context"
	"time"

	"github.com/ifregtest/ifregtest/internal/channel"
	cmdpkg "github.com/ifregtest/ifregtest/internal/command"
	"github.com/ifregtest/ifregtest/internal/display"
	"github.com/ifregtest/ifregtest/internal/protocol"
	"github.com/ifregtest/ifregtest/internal/rterrors"
	"github.com/ifregtest/ifregtest/internal/testfile"
	"github.com/ifregtest/ifregtest/internal/trace"
)

// Session abstracts over the RemGlk and cheap-mode transports so the
// driver's per-test loop doesn't need to know which one it's talking to.
type Session interface {
	// Init performs the handshake (or, in cheap mode, the first read) and
	// returns the initial projection.
	Init(ctx context.Context) (display.Projection, error)
	// Send encodes and transmits one test command and returns the
	// resulting projection.
	Send(ctx context.Context, c *testfile.Command) (display.Projection, error)
	Close() error
}

// RemSession drives the RemGlk JSON protocol over a persistent subprocess:
// one channel for the life of the session.
type RemSession struct {
	ch          *channel.Channel
	state       *display.State
	metrics     protocol.Metrics
	readTimeout time.Duration
	trace       *trace.Printer
}

// NewRemSession builds a session around an already-launched channel.
func NewRemSession(ch *channel.Channel, metrics protocol.Metrics, readTimeout time.Duration) *RemSession {
	return &RemSession{ch: ch, state: display.NewState(), metrics: metrics, readTimeout: readTimeout}
}

// SetTrace attaches a protocol tracer (--verbose 2); nil disables tracing.
func (s *RemSession) SetTrace(t *trace.Printer) { s.trace = t }

func (s *RemSession) Init(ctx context.Context) (display.Projection, error) {
	req := protocol.Init(s.metrics)
	if s.trace != nil {
		s.trace.Sent(req)
	}
	if err := s.ch.WriteRequest(req); err != nil {
		return display.Projection{}, err
	}
	return s.pump(ctx)
}

func (s *RemSession) Send(ctx context.Context, c *testfile.Command) (display.Projection, error) {
	req, err := s.encode(c)
	if err != nil {
		return display.Projection{}, err
	}
	if s.trace != nil {
		s.trace.Sent(req)
	}
	if err := s.ch.WriteRequest(req); err != nil {
		return display.Projection{}, err
	}
	return s.pump(ctx)
}

func (s *RemSession) Close() error { return s.ch.Close() }

func (s *RemSession) pump(ctx context.Context) (display.Projection, error) {
	rctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()
	raw, err := s.ch.ReadResponse(rctx)
	if err != nil {
		if s.trace != nil {
			s.trace.Failed(err)
		}
		return display.Projection{}, err
	}
	if s.trace != nil {
		s.trace.Received(raw)
	}
	upd, err := protocol.Decode(raw)
	if err != nil {
		return display.Projection{}, rterrors.Wrap(rterrors.KindProtocol, err, "decode update")
	}
	if err := s.state.Apply(upd); err != nil {
		return display.Projection{}, err
	}
	return s.state.Project(), nil
}

func (s *RemSession) encode(c *testfile.Command) (protocol.Request, error) {
	action, err := decodeCommand(c)
	if err != nil {
		return nil, err
	}
	gen := s.state.Generation
	switch a := action.(type) {
	case cmdpkg.Line:
		if s.state.LineInputWin == display.NoWindow {
			return nil, rterrors.New(rterrors.KindCheck, "Game is not expecting line input")
		}
		return protocol.Line(gen, s.state.LineInputWin, a.Text), nil
	case cmdpkg.Char:
		if s.state.CharInputWin == display.NoWindow {
			return nil, rterrors.New(rterrors.KindCheck, "Game is not expecting char input")
		}
		return protocol.Char(gen, s.state.CharInputWin, a.Key), nil
	case cmdpkg.Hyperlink:
		if s.state.HyperlinkInputWin == display.NoWindow {
			return nil, rterrors.New(rterrors.KindCheck, "Game is not expecting hyperlink input")
		}
		return protocol.Hyperlink(gen, s.state.HyperlinkInputWin, a.Value), nil
	case cmdpkg.Mouse:
		if s.state.MouseInputWin == display.NoWindow {
			return nil, rterrors.New(rterrors.KindCheck, "Game is not expecting mouse input")
		}
		return protocol.Mouse(gen, s.state.MouseInputWin, a.X, a.Y), nil
	case cmdpkg.Timer:
		return protocol.Timer(gen), nil
	case cmdpkg.Arrange:
		m := s.metrics
		m.Width, m.Height = a.Width, a.Height
		return protocol.Arrange(gen, m), nil
	case cmdpkg.Refresh:
		return protocol.Refresh(), nil
	case cmdpkg.FilerefPrompt:
		if s.state.SpecialInput != "fileref_prompt" {
			return nil, rterrors.New(rterrors.KindCheck, "Game is not expecting a fileref_prompt response")
		}
		return protocol.FilerefPrompt(gen, a.Text), nil
	case cmdpkg.Debug:
		return protocol.DebugInput(gen, a.Text), nil
	default:
		return nil, rterrors.New(rterrors.KindParse, "unsupported command kind")
	}
}
