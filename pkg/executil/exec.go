// Package executil provides subprocess execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// Executor runs external commands and captures their output.
type Executor interface {
	// Output executes a command in dir (empty means inherit cwd) and returns
	// its stdout. Stderr is kept out of the returned bytes so callers reading
	// file contents or machine-parsed output never see diagnostics mixed in.
	// On failure, stderr is folded into the error message, capped at 500 bytes
	// to prevent large or ANSI-polluted output from corrupting logs or TUI
	// display. The original *exec.ExitError is preserved via wrapping so
	// callers can inspect exit codes with errors.As.
	Output(ctx context.Context, dir, cmd string, args ...string) ([]byte, error)
}

// RealExecutor calls actual external commands.
type RealExecutor struct{}

// Output executes a command and returns its stdout.
func (e *RealExecutor) Output(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	if dir != "" {
		c.Dir = dir
	}

	var stdout, errBuf bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &limitedWriter{buf: &errBuf, max: maxStderrLen}

	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(errBuf.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w", msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("exec %s: %w", cmd, err)
	}
	return stdout.Bytes(), nil
}
