package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"pinger/internal/errors"
	"pinger/util"
)

// ExecLauncher starts real child processes with os/exec.
type ExecLauncher struct {
	Logger *util.Logger
}

// Start launches argv without a shell.  Stdout is wired through an
// os.Pipe owned by the caller so that reaping the child (which happens
// in the background as soon as it exits) never races with reading its
// output.  Stderr is discarded.
func (l *ExecLauncher) Start(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.ErrNoCommand
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = w

	if l.Logger != nil {
		l.Logger.Debug("exec: %s", cmd.String())
	}
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("exec %q: %w", argv[0], err)
	}
	// The child holds its own copy of the write end.
	w.Close()

	p := &execProcess{cmd: cmd, stdout: r, done: make(chan struct{})}
	go p.reap()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	done   chan struct{}

	mu   sync.Mutex
	code int
}

func (p *execProcess) reap() {
	err := p.cmd.Wait()
	code := 0
	if p.cmd.ProcessState != nil {
		code = p.cmd.ProcessState.ExitCode()
	} else if err != nil {
		code = -1
	}
	p.mu.Lock()
	p.code = code
	p.mu.Unlock()
	close(p.done)
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) ExitCode() (int, bool) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.code, true
	default:
		return 0, false
	}
}

func (p *execProcess) Wait(ctx context.Context) (int, error) {
	select {
	case <-p.done:
		code, _ := p.ExitCode()
		return code, nil
	case <-ctx.Done():
		return 0, errors.ErrInterrupted
	}
}

func (p *execProcess) Close() error { return p.stdout.Close() }
