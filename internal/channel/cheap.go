package channel

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ifregtest/ifregtest/internal/rterrors"
)

// CheapRead runs the reduced dumb-terminal protocol: no JSON, no windows.
// It reads bytes until the accumulated stream ends with "\n>" or the
// stream closes, then splits on newline into story lines.
func CheapRead(ctx context.Context, stdout io.Reader) ([]string, error) {
	type chunk struct {
		b   []byte
		n   int
		err error
	}
	reads := make(chan chunk, 1)
	buf := make([]byte, 4096)

	var acc bytes.Buffer
	for {
		// One Read at a time, so no read is left pending on stdout once the
		// prompt has been seen; the next call gets the next response.
		go func() {
			n, err := stdout.Read(buf)
			out := make([]byte, n)
			copy(out, buf[:n])
			reads <- chunk{b: out, n: n, err: err}
		}()
		select {
		case <-ctx.Done():
			return nil, rterrors.New(rterrors.KindTimeout, "no response from interpreter within deadline")
		case r := <-reads:
			if r.n > 0 {
				acc.Write(r.b)
				if bytes.HasSuffix(acc.Bytes(), []byte("\n>")) {
					return splitCheapLines(acc.String()), nil
				}
			}
			if r.err != nil || r.n == 0 {
				return splitCheapLines(acc.String()), nil
			}
		}
	}
}

func splitCheapLines(s string) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if ln == ">" {
			continue
		}
		out = append(out, ln)
	}
	return out
}

// CheapWrite writes a line-input command terminated by a single newline.
func CheapWrite(stdin io.Writer, cmd string) error {
	_, err := io.WriteString(stdin, cmd+"\n")
	if err != nil {
		return rterrors.Wrap(rterrors.KindLaunch, err, "write to interpreter")
	}
	return nil
}
