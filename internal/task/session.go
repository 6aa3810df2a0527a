// Package task runs diagnostic operations in the background and
// delivers their output to a front-end.
//
// A front-end owns one Session.  Each call to Start creates a Task that
// dispatches the operation on its own goroutine; every line it produces
// and the final completion signal are handed back to the front-end's
// interactive context through an Executor, one at a time and in order.
// Tasks cannot be cancelled once started.
package task

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"pinger/internal/dispatch"
	"pinger/internal/errors"
	"pinger/internal/metrics"
	"pinger/util"
)

// Sink receives the output of one run.  All methods are called on the
// interactive context.
type Sink interface {
	// Line appends one line of output.
	Line(text string)
	// SetControlsEnabled disables controls when a run starts and
	// re-enables them when it completes.
	SetControlsEnabled(enabled bool)
	// Done is called exactly once, after every line.
	Done()
}

// Executor runs fn on the interactive context and returns after fn has
// run.  Successive calls must run in call order.
type Executor func(fn func())

// Dispatcher executes one operation; *dispatch.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, target string, op dispatch.Operation, emit dispatch.Emitter) error
}

// Session owns the state shared by every run started from one
// front-end: the route-trace-in-progress flag.
type Session struct {
	ctx        context.Context
	dispatcher Dispatcher
	exec       Executor
	logger     *util.Logger
	metrics    *metrics.Collector

	routeTrace atomic.Bool
}

// NewSession returns a Session whose tasks run d and deliver through
// exec.  ctx bounds blocking waits on child processes; it does not
// cancel running operations.
func NewSession(ctx context.Context, d Dispatcher, exec Executor, logger *util.Logger, m *metrics.Collector) *Session {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Session{ctx: ctx, dispatcher: d, exec: exec, logger: logger, metrics: m}
}

// RouteTraceActive reports whether a route trace is running.
func (s *Session) RouteTraceActive() bool { return s.routeTrace.Load() }

// Task is a handle on one run.
type Task struct {
	Target string
	Op     dispatch.Operation

	done chan struct{}
}

// Done is closed after the sink's Done has been called.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the run has completed.
func (t *Task) Wait() { <-t.done }

// Start begins a run of op against target.  It must be called on the
// interactive context and never blocks on I/O.
//
// Surrounding whitespace is trimmed from target.  An empty target, or
// a route trace while another is in progress, is rejected: the sink
// gets one explanatory line and Done, synchronously, and no work is
// started.
func (s *Session) Start(target string, op dispatch.Operation, sink Sink) *Task {
	target = strings.TrimSpace(target)
	t := &Task{Target: target, Op: op, done: make(chan struct{})}

	if target == "" {
		s.reject(t, sink, errors.ErrEmptyTarget)
		return t
	}
	if op == dispatch.RouteTrace && !s.routeTrace.CompareAndSwap(false, true) {
		s.reject(t, sink, errors.ErrBusy)
		return t
	}

	s.metrics.RunStarted(op.String())
	s.logger.Verbose("%s %s: started", op, target)
	sink.SetControlsEnabled(false)

	go s.run(t, sink)
	return t
}

func (s *Session) reject(t *Task, sink Sink, err error) {
	s.metrics.RunRejected()
	s.logger.Verbose("%s %q rejected: %v", t.Op, t.Target, err)
	sink.Line(dispatch.Describe(t.Op, t.Target, err))
	sink.Done()
	close(t.done)
}

func (s *Session) run(t *Task, sink Sink) {
	defer close(t.done)
	defer s.finish(t, sink)

	emit := func(line string) {
		s.exec(func() {
			s.metrics.LineDelivered()
			sink.Line(line)
		})
	}

	if err := s.dispatch(t, emit); err != nil {
		s.metrics.RecordError(err.Error())
		s.logger.Verbose("%s %s: %v", t.Op, t.Target, err)
		emit(dispatch.Describe(t.Op, t.Target, err))
	}
}

// finish re-enables controls, clears the route-trace flag and signals
// Done on the interactive context.  If the executor has shut down and
// drops the call, the flag is still cleared here.
func (s *Session) finish(t *Task, sink Sink) {
	var delivered atomic.Bool
	s.exec(func() {
		delivered.Store(true)
		sink.SetControlsEnabled(true)
		if t.Op == dispatch.RouteTrace {
			s.routeTrace.Store(false)
		}
		sink.Done()
	})
	if !delivered.Load() && t.Op == dispatch.RouteTrace {
		s.routeTrace.Store(false)
	}
	s.metrics.RunFinished()
	s.logger.Verbose("%s %s: done", t.Op, t.Target)
}

// dispatch runs the operation, turning a panic into an error so the run
// still completes.
func (s *Session) dispatch(t *Task, emit dispatch.Emitter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("%s %s: panic: %v", t.Op, t.Target, r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.dispatcher.Dispatch(s.ctx, t.Target, t.Op, emit)
}
