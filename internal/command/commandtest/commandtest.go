// Package commandtest provides a scripted command.Launcher for tests.
package commandtest

import (
	"context"
	"io"
	"strings"
	"sync"

	"pinger/internal/command"
	"pinger/internal/errors"
)

// Script describes how a fake child process behaves.
type Script struct {
	Lines    []string // written to stdout, one per line
	Code     int      // exit status
	Pending  bool     // ExitCode reports not-yet-exited
	StartErr error    // returned by Start instead of a process
	WaitErr  error    // returned by Wait
	ReadErr  error    // returned by stdout after Lines
}

// Launcher hands out processes following Scripts keyed by argv[0].
type Launcher struct {
	Scripts map[string]Script

	mu    sync.Mutex
	calls [][]string
}

// Start implements command.Launcher.
func (l *Launcher) Start(ctx context.Context, argv []string) (command.Process, error) {
	if len(argv) == 0 {
		return nil, errors.ErrNoCommand
	}
	l.mu.Lock()
	l.calls = append(l.calls, append([]string(nil), argv...))
	l.mu.Unlock()

	s := l.Scripts[argv[0]]
	if s.StartErr != nil {
		return nil, s.StartErr
	}

	var out io.Reader = strings.NewReader(joinLines(s.Lines))
	if s.ReadErr != nil {
		out = io.MultiReader(out, errReader{s.ReadErr})
	}
	return &process{script: s, stdout: out}, nil
}

// Calls returns every argv passed to Start.
func (l *Launcher) Calls() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]string(nil), l.calls...)
}

type process struct {
	script Script
	stdout io.Reader
}

func (p *process) Stdout() io.Reader { return p.stdout }

func (p *process) ExitCode() (int, bool) {
	if p.script.Pending {
		return 0, false
	}
	return p.script.Code, true
}

func (p *process) Wait(ctx context.Context) (int, error) {
	if p.script.WaitErr != nil {
		return 0, p.script.WaitErr
	}
	return p.script.Code, nil
}

func (p *process) Close() error { return nil }

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
