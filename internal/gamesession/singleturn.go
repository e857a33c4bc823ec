package gamesession

import (
	"context"
	"time"

	"github.com/ifregtest/ifregtest/internal/channel"
	"github.com/ifregtest/ifregtest/internal/display"
	"github.com/ifregtest/ifregtest/internal/protocol"
	"github.com/ifregtest/ifregtest/internal/testfile"
	"github.com/ifregtest/ifregtest/internal/trace"
)

// Launcher starts a fresh subprocess for one turn. first distinguishes the
// opening turn (plain --autosave) from every later one (-autometrics
// --autosave --autorestore), per the interpreter's single-turn flag
// sequencing.
type Launcher func(first bool) (*channel.Channel, error)

// SingleTurnSession drives interpreters that can't hold a process open
// across commands: each Init/Send spawns a new subprocess, reads exactly
// one update from it, then closes its channel (killing and reaping the
// process). Display state persists
// in the session across relaunches even though the channel doesn't.
type SingleTurnSession struct {
	launch      Launcher
	metrics     protocol.Metrics
	readTimeout time.Duration
	state       *display.State
	first       bool
	trace       *trace.Printer
}

// NewSingleTurnSession builds a session that relaunches the interpreter on
// every turn via launch.
func NewSingleTurnSession(launch Launcher, metrics protocol.Metrics, readTimeout time.Duration) *SingleTurnSession {
	return &SingleTurnSession{launch: launch, metrics: metrics, readTimeout: readTimeout, state: display.NewState(), first: true}
}

// SetTrace attaches a protocol tracer (--verbose 2); nil disables tracing.
func (s *SingleTurnSession) SetTrace(t *trace.Printer) { s.trace = t }

func (s *SingleTurnSession) Init(ctx context.Context) (display.Projection, error) {
	ch, err := s.launch(true)
	if err != nil {
		return display.Projection{}, err
	}
	defer ch.Close()
	s.first = false

	inner := &RemSession{ch: ch, state: s.state, metrics: s.metrics, readTimeout: s.readTimeout, trace: s.trace}
	return inner.Init(ctx)
}

func (s *SingleTurnSession) Send(ctx context.Context, c *testfile.Command) (display.Projection, error) {
	ch, err := s.launch(false)
	if err != nil {
		return display.Projection{}, err
	}
	defer ch.Close()

	inner := &RemSession{ch: ch, state: s.state, metrics: s.metrics, readTimeout: s.readTimeout, trace: s.trace}
	return inner.Send(ctx, c)
}

// Close is a no-op: every turn's channel is closed as soon as its one
// response has been read.
func (s *SingleTurnSession) Close() error { return nil }
