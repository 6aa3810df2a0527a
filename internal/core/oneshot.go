package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"pinger/internal/dispatch"
	"pinger/internal/metrics"
	"pinger/internal/task"
	"pinger/util"
)

// OneShotMode runs a single operation, prints its lines to Out and
// returns when the run completes.  The goroutine calling Run serves as
// the interactive context.
type OneShotMode struct {
	Dispatcher task.Dispatcher
	Op         dispatch.Operation
	Target     string
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Out defaults to os.Stdout when nil.
	Out io.Writer
}

func (m *OneShotMode) out() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return os.Stdout
}

// Run starts the operation and serves its output until Done.  A failed
// diagnostic is reported as a line, not as an error; Run only fails if
// output cannot be written.
func (m *OneShotMode) Run(ctx context.Context) error {
	loop := task.NewLoop()
	session := task.NewSession(ctx, m.Dispatcher, loop.Do, m.Logger, m.Metrics)
	sink := &writerSink{w: m.out()}

	go func() {
		defer loop.Close()
		var t *task.Task
		loop.Do(func() { t = session.Start(m.Target, m.Op, sink) })
		if t != nil {
			t.Wait()
		}
	}()

	loop.Run()
	return sink.Err()
}

// writerSink prints each line to w.  Controls have no meaning on a
// plain stream.  With blankAfterDone an empty line separates runs.
type writerSink struct {
	w              io.Writer
	blankAfterDone bool

	mu  sync.Mutex
	err error
}

func (s *writerSink) Line(text string) {
	s.write(text)
}

func (s *writerSink) SetControlsEnabled(bool) {}

func (s *writerSink) Done() {
	if s.blankAfterDone {
		s.write("")
	}
}

func (s *writerSink) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintln(s.w, text); err != nil {
		s.err = fmt.Errorf("write output: %w", err)
	}
}

// Err returns the first write error.
func (s *writerSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
