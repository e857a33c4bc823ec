// Package channel owns the interpreter subprocess's lifetime and its two
// byte streams: spawning, framed request/response I/O with a bounded read
// deadline, and idempotent teardown.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ifregtest/ifregtest/internal/rterrors"
)

// Channel owns one interpreter's stdin/stdout pair. Persistent and
// single-turn sessions both drive the interpreter through it; tests build
// one directly over io.Pipe with FromPipes, so no real process is needed.
type Channel struct {
	stdin  io.WriteCloser
	stdout io.Reader
	proc   *exec.Cmd // nil when built over raw pipes (tests)

	mu     sync.Mutex
	closed bool
}

// Launch starts the interpreter as a child process with inherited stderr,
// unbuffered pipes for stdin/stdout. argv[0] is the interpreter path.
func Launch(argv []string, env []string) (*Channel, error) {
	if len(argv) == 0 {
		return nil, rterrors.New(rterrors.KindConfig, "empty interpreter command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, rterrors.Wrap(rterrors.KindLaunch, err, "stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, rterrors.Wrap(rterrors.KindLaunch, err, "stdout pipe")
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, rterrors.Wrap(rterrors.KindLaunch, err, "start %s", argv[0])
	}
	slog.Info("launched interpreter", "argv", argv, "pid", cmd.Process.Pid)
	return &Channel{stdin: stdin, stdout: stdout, proc: cmd}, nil
}

// FromPipes wraps an already-connected stdin/stdout pair (used by tests and
// by callers that manage the subprocess themselves).
func FromPipes(stdin io.WriteCloser, stdout io.Reader) *Channel {
	return &Channel{stdin: stdin, stdout: stdout}
}

// Stdin exposes the raw write side, for transports (cheap mode) that don't
// frame JSON requests.
func (c *Channel) Stdin() io.Writer { return c.stdin }

// Stdout exposes the raw read side, for transports (cheap mode) that don't
// parse JSON responses.
func (c *Channel) Stdout() io.Reader { return c.stdout }

// WriteRequest frames a JSON request object with a single trailing newline.
func (c *Channel) WriteRequest(req any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return rterrors.Wrap(rterrors.KindProtocol, err, "encode request")
	}
	body = append(body, '\n')
	if _, err := c.stdin.Write(body); err != nil {
		return rterrors.Wrap(rterrors.KindLaunch, err, "write to interpreter")
	}
	return nil
}

// ReadResponse consumes bytes until one complete JSON object arrives,
// bounded by ctx's deadline. Framing is detected incrementally: every time
// a '}' byte is seen, a JSON parse is attempted; success returns the raw
// object bytes, failure keeps reading. A zero-byte read is end-of-stream
// and triggers one final parse attempt. Non-whitespace bytes preceding the
// first '{' are captured and reported as a NotJsonError.
func (c *Channel) ReadResponse(ctx context.Context) (json.RawMessage, error) {
	type chunk struct {
		b   []byte
		n   int
		err error
	}
	reads := make(chan chunk, 1)
	buf := make([]byte, 4096)

	var acc bytes.Buffer
	var preJSON bytes.Buffer
	sawOpenBrace := false

	for {
		// One Read at a time, so no read is left pending on stdout once an
		// object has been returned; the next call gets the next response.
		go func() {
			n, err := c.stdout.Read(buf)
			out := make([]byte, n)
			copy(out, buf[:n])
			reads <- chunk{b: out, n: n, err: err}
		}()
		select {
		case <-ctx.Done():
			return nil, rterrors.New(rterrors.KindTimeout, "no response from interpreter within deadline")
		case r := <-reads:
			if r.n > 0 {
				for _, b := range r.b {
					if !sawOpenBrace {
						if b == '{' {
							sawOpenBrace = true
							acc.WriteByte(b)
						} else if !isSpace(b) {
							preJSON.WriteByte(b)
						}
						continue
					}
					acc.WriteByte(b)
					if b == '}' {
						if obj, ok := tryParse(acc.Bytes()); ok {
							return obj, nil
						}
					}
				}
			}
			if r.err != nil || r.n == 0 {
				if obj, ok := tryParse(acc.Bytes()); ok {
					return obj, nil
				}
				if preJSON.Len() > 0 {
					return nil, &rterrors.Error{
						Kind:    rterrors.KindNotJSON,
						Message: "interpreter emitted non-JSON output before any '{'",
						Lines:   splitLines(preJSON.String()),
					}
				}
				if r.err != nil && r.err != io.EOF {
					return nil, rterrors.Wrap(rterrors.KindLaunch, r.err, "read from interpreter")
				}
				return nil, rterrors.New(rterrors.KindTimeout, "interpreter closed stdout before emitting a response")
			}
		}
	}
}

func tryParse(b []byte) (json.RawMessage, bool) {
	if len(b) == 0 {
		return nil, false
	}
	var probe map[string]any
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Close tears the subprocess down: close stdin, close stdout, signal kill,
// reap. Idempotent and safe to call more than once or after a prior error.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if closer, ok := c.stdin.(io.Closer); ok && closer != nil {
		_ = closer.Close()
	}
	if closer, ok := c.stdout.(io.Closer); ok && closer != nil {
		_ = closer.Close()
	}
	if c.proc != nil && c.proc.Process != nil {
		pid := c.proc.Process.Pid
		_ = c.proc.Process.Kill()
		_, _ = c.proc.Process.Wait()
		slog.Info("interpreter torn down", "pid", pid)
	}
	return nil
}

// WithTimeout is a small convenience used by callers that read on a fixed
// per-read deadline rather than a caller-supplied context.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
