package task

import "sync"

// Loop is a single-goroutine interactive context for front-ends that
// have no UI toolkit of their own (the CLI and the console).  Funcs
// submitted with Do run one at a time, in submission order, on the
// goroutine that called Run.
type Loop struct {
	queue chan func()
	stop  chan struct{}
	once  sync.Once
}

// NewLoop returns a Loop; call Run to start serving it.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func()),
		stop:  make(chan struct{}),
	}
}

// Run serves submitted funcs until Close is called.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.stop:
			return
		}
	}
}

// Do runs fn on the loop and returns once it has run.  After Close, Do
// returns without running fn.  Do must not be called from the loop
// goroutine itself.
func (l *Loop) Do(fn func()) {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case l.queue <- wrapped:
	case <-l.stop:
		return
	}
	select {
	case <-done:
	case <-l.stop:
	}
}

// Close stops the loop.  It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.stop) })
}
