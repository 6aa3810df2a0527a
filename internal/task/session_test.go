package task

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"pinger/internal/command/commandtest"
	"pinger/internal/dispatch"
	"pinger/internal/errors"
	"pinger/internal/metrics"
)

// ── fakes ────────────────────────────────────────────────────────────

type fakeDispatcher struct {
	lines []string
	err   error
	panic string
	block chan struct{} // if set, Dispatch waits for it to close
	calls atomic.Int32
	last  atomic.Value // target of the most recent call
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, target string, op dispatch.Operation, emit dispatch.Emitter) error {
	f.calls.Add(1)
	f.last.Store(target)
	if f.block != nil {
		<-f.block
	}
	for _, l := range f.lines {
		emit(l)
	}
	if f.panic != "" {
		panic(f.panic)
	}
	return f.err
}

// recordingSink logs every call.  It is only touched on the loop.
type recordingSink struct {
	events []string
	lines  []string
}

func (r *recordingSink) Line(text string) {
	r.events = append(r.events, "line:"+text)
	r.lines = append(r.lines, text)
}

func (r *recordingSink) SetControlsEnabled(enabled bool) {
	r.events = append(r.events, fmt.Sprintf("controls:%v", enabled))
}

func (r *recordingSink) Done() { r.events = append(r.events, "done") }

type harness struct {
	loop    *Loop
	session *Session
	metrics *metrics.Collector
}

func newHarness(t *testing.T, d Dispatcher) *harness {
	t.Helper()
	loop := NewLoop()
	go loop.Run()
	t.Cleanup(loop.Close)

	m := metrics.New()
	return &harness{
		loop:    loop,
		session: NewSession(context.Background(), d, loop.Do, nil, m),
		metrics: m,
	}
}

// start calls Start on the loop, as a front-end would.
func (h *harness) start(target string, op dispatch.Operation, sink Sink) *Task {
	var tk *Task
	h.loop.Do(func() { tk = h.session.Start(target, op, sink) })
	return tk
}

func (h *harness) run(t *testing.T, target string, op dispatch.Operation) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	tk := h.start(target, op, sink)
	select {
	case <-tk.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not complete")
	}
	return sink
}

// ── rejections ───────────────────────────────────────────────────────

func TestStart_EmptyTarget(t *testing.T) {
	for _, op := range []dispatch.Operation{dispatch.Reachability, dispatch.RouteTrace, dispatch.NameResolve} {
		for _, target := range []string{"", "   ", "\t \n"} {
			t.Run(fmt.Sprintf("%s/%q", op, target), func(t *testing.T) {
				d := &fakeDispatcher{lines: []string{"should not appear"}}
				h := newHarness(t, d)

				sink := h.run(t, target, op)

				want := []string{"line:" + dispatch.MsgEmptyTarget, "done"}
				if !reflect.DeepEqual(sink.events, want) {
					t.Errorf("events = %q, want %q", sink.events, want)
				}
				if d.calls.Load() != 0 {
					t.Error("dispatcher should not run for an empty target")
				}
				if h.session.RouteTraceActive() {
					t.Error("route trace flag set by rejected run")
				}
			})
		}
	}
}

func TestStart_TrimsTarget(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHarness(t, d)

	tk := h.start("  example.com\t", dispatch.NameResolve, &recordingSink{})
	<-tk.Done()

	if got, _ := d.last.Load().(string); got != "example.com" {
		t.Errorf("dispatched target = %q, want %q", got, "example.com")
	}
	if tk.Target != "example.com" {
		t.Errorf("Task.Target = %q", tk.Target)
	}
}

func TestStart_RouteTraceBusy(t *testing.T) {
	d := &fakeDispatcher{lines: []string{"hop 1"}, block: make(chan struct{})}
	h := newHarness(t, d)

	first := &recordingSink{}
	firstTask := h.start("example.com", dispatch.RouteTrace, first)
	if !h.session.RouteTraceActive() {
		t.Fatal("flag should be set while a trace runs")
	}

	second := h.run(t, "example.org", dispatch.RouteTrace)
	want := []string{"line:" + dispatch.MsgTraceBusy, "done"}
	if !reflect.DeepEqual(second.events, want) {
		t.Errorf("busy events = %q, want %q", second.events, want)
	}
	if !h.session.RouteTraceActive() {
		t.Error("busy rejection must not clear the flag")
	}
	if h.metrics.RejectedRuns() != 1 {
		t.Errorf("rejected = %d, want 1", h.metrics.RejectedRuns())
	}

	close(d.block)
	firstTask.Wait()
	if h.session.RouteTraceActive() {
		t.Error("flag should be cleared after the trace completes")
	}
	if d.calls.Load() != 1 {
		t.Errorf("dispatcher calls = %d, want 1", d.calls.Load())
	}
}

// TestStart_OtherOperationsNotExcluded verifies only route traces are
// mutually exclusive.
func TestStart_OtherOperationsNotExcluded(t *testing.T) {
	d := &fakeDispatcher{block: make(chan struct{})}
	h := newHarness(t, d)

	trace := h.start("example.com", dispatch.RouteTrace, &recordingSink{})
	ping := h.start("example.com", dispatch.Reachability, &recordingSink{})
	lookup := h.start("example.com", dispatch.NameResolve, &recordingSink{})

	deadline := time.Now().Add(5 * time.Second)
	for d.calls.Load() != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("dispatcher calls = %d, want 3 concurrent runs", d.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(d.block)
	trace.Wait()
	ping.Wait()
	lookup.Wait()
}

// ── completion ───────────────────────────────────────────────────────

func TestStart_DeliversInOrder(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	h := newHarness(t, &fakeDispatcher{lines: lines})

	sink := h.run(t, "example.com", dispatch.NameResolve)

	if !reflect.DeepEqual(sink.lines, lines) {
		t.Fatal("lines delivered out of order or incomplete")
	}
	if sink.events[0] != "controls:false" {
		t.Errorf("first event = %q, want controls disabled", sink.events[0])
	}
	n := len(sink.events)
	if sink.events[n-2] != "controls:true" || sink.events[n-1] != "done" {
		t.Errorf("last events = %q", sink.events[n-2:])
	}
	if h.metrics.LinesDelivered() != 200 {
		t.Errorf("lines delivered = %d", h.metrics.LinesDelivered())
	}
}

func TestStart_ErrorBecomesLastLine(t *testing.T) {
	h := newHarness(t, &fakeDispatcher{
		lines: []string{"Server: 10.0.0.53"},
		err:   errors.ExitStatus("example.invalid", 1),
	})

	sink := h.run(t, "example.invalid", dispatch.NameResolve)

	want := []string{
		"controls:false",
		"line:Server: 10.0.0.53",
		"line:nslookup failed. Exit code: 1",
		"controls:true",
		"done",
	}
	if !reflect.DeepEqual(sink.events, want) {
		t.Errorf("events = %q, want %q", sink.events, want)
	}
	if h.metrics.ErrorCount() != 1 {
		t.Errorf("errors = %d, want 1", h.metrics.ErrorCount())
	}
}

func TestStart_PanicRecovered(t *testing.T) {
	h := newHarness(t, &fakeDispatcher{panic: "nil map"})

	sink := h.run(t, "example.com", dispatch.RouteTrace)

	want := []string{"controls:false", "line:" + dispatch.MsgToolFailed, "controls:true", "done"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Errorf("events = %q, want %q", sink.events, want)
	}
	if h.session.RouteTraceActive() {
		t.Error("flag should be cleared after a failed trace")
	}
}

func TestStart_FlagClearedWhenExecutorClosed(t *testing.T) {
	d := &fakeDispatcher{lines: []string{"hop"}, block: make(chan struct{})}
	h := newHarness(t, d)

	tk := h.start("example.com", dispatch.RouteTrace, &recordingSink{})
	h.loop.Close()
	close(d.block)
	tk.Wait()

	if h.session.RouteTraceActive() {
		t.Error("flag should be cleared even when Done cannot be delivered")
	}
}

// ── end to end with the real dispatcher ──────────────────────────────

type staticResolver string

func (r staticResolver) Resolve(ctx context.Context, host string) (string, error) {
	return string(r), nil
}

func TestSession_RouteTraceEndToEnd(t *testing.T) {
	d := &dispatch.Dispatcher{
		Resolver: staticResolver("192.0.2.10"),
		Launcher: &commandtest.Launcher{Scripts: map[string]commandtest.Script{
			"traceroute": {Lines: []string{"L1", "L2"}},
		}},
		TraceCommand:  []string{"traceroute"},
		LookupCommand: []string{"nslookup"},
	}
	h := newHarness(t, d)

	sink := h.run(t, "example.com", dispatch.RouteTrace)

	if !reflect.DeepEqual(sink.lines, []string{"L1", "L2"}) {
		t.Errorf("lines = %q", sink.lines)
	}
	if h.session.RouteTraceActive() {
		t.Error("flag should be false after completion")
	}
}

func TestSession_Idempotent(t *testing.T) {
	d := &dispatch.Dispatcher{
		Resolver: staticResolver("192.0.2.10"),
		Launcher: &commandtest.Launcher{Scripts: map[string]commandtest.Script{
			"nslookup": {Lines: []string{"Name: example.com"}, Code: 2},
		}},
		TraceCommand:  []string{"traceroute"},
		LookupCommand: []string{"nslookup"},
	}
	h := newHarness(t, d)

	first := h.run(t, "example.com", dispatch.NameResolve)
	second := h.run(t, "example.com", dispatch.NameResolve)

	if !reflect.DeepEqual(first.events, second.events) {
		t.Errorf("runs differ:\n%q\n%q", first.events, second.events)
	}
	want := []string{"Name: example.com", "nslookup failed. Exit code: 2"}
	if !reflect.DeepEqual(first.lines, want) {
		t.Errorf("lines = %q, want %q", first.lines, want)
	}
}
