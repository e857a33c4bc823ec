// Package driver runs test files: per-test session setup, command
// playback, check evaluation, and guaranteed subprocess teardown.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ifregtest/ifregtest/internal/channel"
	"github.com/ifregtest/ifregtest/internal/checks"
	"github.com/ifregtest/ifregtest/internal/display"
	"github.com/ifregtest/ifregtest/internal/gamesession"
	"github.com/ifregtest/ifregtest/internal/protocol"
	"github.com/ifregtest/ifregtest/internal/rterrors"
	"github.com/ifregtest/ifregtest/internal/testfile"
	"github.com/ifregtest/ifregtest/internal/trace"
)

// Format selects the transport a session speaks.
type Format string

const (
	FormatRem       Format = "rem"       // persistent subprocess, RemGlk JSON
	FormatRemSingle Format = "remsingle" // fresh subprocess per turn, RemGlk JSON
	FormatCheap     Format = "cheap"     // persistent subprocess, dumb-terminal lines
)

// Options configures one run across a set of tests.
type Options struct {
	Format         Format
	Timeout        time.Duration
	Env            []string
	ExtraPre       []*testfile.Command // CLI --pre, run after file-level precommands
	VitalAbortsRun bool                // --vital passed twice
	Metrics        protocol.Metrics
	Trace          *trace.Printer // non-nil enables --verbose 2 protocol tracing
}

// Failure is one check that did not pass.
type Failure struct {
	Line   int
	Check  string
	Target string
	Reason string
}

// TestResult is the outcome of running a single test.
type TestResult struct {
	Name       string
	Failures   []Failure
	Aborted    bool // a vital check failed, or a runtime error occurred, and the rest of the test was skipped
	DurationMS int64
}

// RunResult is the outcome of an entire invocation.
type RunResult struct {
	Tests      []TestResult
	AbortedRun bool // a vital check failed twice with VitalAbortsRun set
}

// ErrorCount totals failed checks across every test in the run.
func (r *RunResult) ErrorCount() int {
	n := 0
	for _, t := range r.Tests {
		n += len(t.Failures)
	}
	return n
}

// Run executes every test in order against f, in the given format.
func Run(ctx context.Context, f *testfile.File, tests []*testfile.Test, opts Options) (*RunResult, error) {
	result := &RunResult{}
	vitalHits := 0

	for _, t := range tests {
		if opts.Timeout <= 0 {
			return nil, rterrors.New(rterrors.KindConfig, "timeout must be positive")
		}
		tr, vitalFailed, err := runOne(ctx, f, t, opts)
		if err != nil {
			return nil, err
		}
		result.Tests = append(result.Tests, tr)
		if vitalFailed {
			vitalHits++
			if opts.VitalAbortsRun && vitalHits >= 2 {
				result.AbortedRun = true
				break
			}
		}
	}
	return result, nil
}

func runOne(ctx context.Context, f *testfile.File, t *testfile.Test, opts Options) (tr TestResult, vitalFail bool, err error) {
	tr = TestResult{Name: t.Name}
	start := time.Now()
	defer func() { tr.DurationMS = time.Since(start).Milliseconds() }()

	slog.Info("running test", "name", t.Name, "format", opts.Format)

	gameFile := f.GameFile
	if t.GameFile != "" {
		gameFile = t.GameFile
	}
	interp, interpArgs := f.Interpreter, f.InterpArgs
	if t.Interpreter != "" {
		interp, interpArgs = t.Interpreter, t.InterpArgs
	}
	if gameFile == "" || interp == "" {
		return tr, false, rterrors.New(rterrors.KindConfig, "test %q: no game file or interpreter configured", t.Name)
	}

	sess, err := newSession(interp, interpArgs, gameFile, opts)
	if err != nil {
		if rterrors.Is(err, rterrors.KindConfig) {
			return tr, false, err
		}
		return tr, recordRuntimeError(&tr, "session launch", err), nil
	}
	defer sess.Close()

	proj, err := sess.Init(ctx)
	if err != nil {
		return tr, recordRuntimeError(&tr, "session init", err), nil
	}

	// Pre-command checks run against the pristine post-init state, before
	// any precommand or test command has been sent.
	if evalInto(&tr, t.PreChecks, proj) {
		tr.Aborted = true
		return tr, true, nil
	}

	for _, pre := range f.PreCommands {
		proj, err = sess.Send(ctx, pre)
		if err != nil {
			return tr, recordRuntimeError(&tr, "file precommand", err), nil
		}
	}
	for _, pre := range opts.ExtraPre {
		proj, err = sess.Send(ctx, pre)
		if err != nil {
			return tr, recordRuntimeError(&tr, "--pre command", err), nil
		}
	}

	for _, cmd := range t.Commands {
		proj, err = sess.Send(ctx, cmd)
		if err != nil {
			return tr, recordRuntimeError(&tr, fmt.Sprintf("command %q", cmd.Raw), err), nil
		}
		if evalInto(&tr, cmd.Checks, proj) {
			tr.Aborted = true
			return tr, true, nil
		}
	}
	return tr, false, nil
}

// recordRuntimeError records a per-test runtime failure — a timeout, a
// protocol violation, a launch failure, or a "game is not expecting X
// input" rejection — as a Failure instead of aborting the whole run.
// Config and parse errors never reach here; those stay fatal. Reports true
// so the caller treats it like a vital check failure: the rest of the test
// is skipped and, with double-vital set, enough of these abort the run.
func recordRuntimeError(tr *TestResult, where string, err error) bool {
	tr.Failures = append(tr.Failures, Failure{
		Check:  "runtime error",
		Target: where,
		Reason: err.Error(),
	})
	tr.Aborted = true
	return true
}

// evalInto evaluates every check against proj, appending failures to tr.
// Returns true the moment a vital check fails.
func evalInto(tr *TestResult, cs []checks.Check, proj display.Projection) bool {
	for _, c := range cs {
		if reason := checks.Eval(c, proj); reason != "" {
			tr.Failures = append(tr.Failures, Failure{
				Line:   c.SourceLine(),
				Check:  c.String(),
				Target: c.Target().String(),
				Reason: reason,
			})
			if c.Vital() {
				return true
			}
		}
	}
	return false
}

func newSession(interp string, interpArgs []string, gameFile string, opts Options) (gamesession.Session, error) {
	switch opts.Format {
	case FormatRemSingle:
		launch := func(first bool) (*channel.Channel, error) {
			argv := channel.BuildArgv(interp, interpArgs, channel.SingleTurnFlags(first), gameFile)
			return channel.Launch(argv, opts.Env)
		}
		sess := gamesession.NewSingleTurnSession(launch, opts.Metrics, opts.Timeout)
		sess.SetTrace(opts.Trace)
		return sess, nil
	case FormatCheap:
		argv := channel.BuildArgv(interp, interpArgs, nil, gameFile)
		ch, err := channel.Launch(argv, opts.Env)
		if err != nil {
			return nil, err
		}
		return gamesession.NewCheapSession(ch, opts.Timeout), nil
	case FormatRem, "":
		argv := channel.BuildArgv(interp, interpArgs, nil, gameFile)
		ch, err := channel.Launch(argv, opts.Env)
		if err != nil {
			return nil, err
		}
		sess := gamesession.NewRemSession(ch, opts.Metrics, opts.Timeout)
		sess.SetTrace(opts.Trace)
		return sess, nil
	default:
		return nil, rterrors.New(rterrors.KindConfig, "unknown format %q", opts.Format)
	}
}
