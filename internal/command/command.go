// Package command runs the platform's diagnostic utilities (route
// tracer, name resolver) as opaque child processes and exposes their
// standard output as a stream of lines.
//
// Utilities are started directly, never through a shell, so a target
// is always passed as one literal argv element.
package command

import (
	"bufio"
	"context"
	"io"

	"pinger/util"
)

// maxLineSize bounds a single output line.  Utilities emit short lines;
// anything longer is treated as a read failure.
const maxLineSize = 64 * 1024

// Launcher starts child processes.
type Launcher interface {
	// Start launches argv[0] with the remaining elements as arguments.
	Start(ctx context.Context, argv []string) (Process, error)
}

// Process is a running child process.
type Process interface {
	// Stdout is the child's standard output.  It reaches EOF once the
	// child (and anything it spawned) closes its end.
	Stdout() io.Reader

	// ExitCode reports the exit status without blocking.  exited is
	// false when the process has not been reaped yet.
	ExitCode() (code int, exited bool)

	// Wait blocks until the process exits or ctx is done, in which case
	// it returns errors.ErrInterrupted.  The process is not killed.
	Wait(ctx context.Context) (int, error)

	// Close releases the read end of stdout.
	Close() error
}

// Lines returns a line iterator over r that starts out reading into
// buf (nil allocates).  Lines are yielded as soon as their newline
// arrives; trailing carriage returns are stripped.
func Lines(r io.Reader, buf []byte) *bufio.Scanner {
	if buf == nil {
		buf = make([]byte, 0, util.DefaultBufSize)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(buf[:0], maxLineSize)
	return sc
}
