// Package metrics provides lightweight, lock-free counters for tracking
// what a pinger session did: runs started and rejected, lines delivered,
// probe outcomes and failures.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	runsActive     atomic.Int64
	runsTotal      atomic.Int64
	runsRejected   atomic.Int64
	linesDelivered atomic.Int64
	probeReplies   atomic.Int64
	probeTimeouts  atomic.Int64
	errorsTotal    atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	byOperation  map[string]int64
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now(), byOperation: make(map[string]int64)}
}

// ── Run metrics ──────────────────────────────────────────────────────

// RunStarted increments the active and total run counters and the
// per-operation count.
func (c *Collector) RunStarted(op string) {
	if c == nil {
		return
	}
	c.runsActive.Add(1)
	c.runsTotal.Add(1)
	c.mu.Lock()
	c.byOperation[op]++
	c.mu.Unlock()
}

// RunFinished decrements the active run counter.
func (c *Collector) RunFinished() {
	if c == nil {
		return
	}
	c.runsActive.Add(-1)
}

// RunRejected records a run refused before any work started (empty
// target, route trace already in progress).
func (c *Collector) RunRejected() {
	if c == nil {
		return
	}
	c.runsRejected.Add(1)
}

// ActiveRuns returns the number of runs in flight.
func (c *Collector) ActiveRuns() int64 {
	if c == nil {
		return 0
	}
	return c.runsActive.Load()
}

// TotalRuns returns the number of runs started.
func (c *Collector) TotalRuns() int64 {
	if c == nil {
		return 0
	}
	return c.runsTotal.Load()
}

// RejectedRuns returns the number of rejected runs.
func (c *Collector) RejectedRuns() int64 {
	if c == nil {
		return 0
	}
	return c.runsRejected.Load()
}

// ── Output metrics ───────────────────────────────────────────────────

// LineDelivered records one line handed to a sink.
func (c *Collector) LineDelivered() {
	if c == nil {
		return
	}
	c.linesDelivered.Add(1)
}

// LinesDelivered returns the number of lines handed to sinks.
func (c *Collector) LinesDelivered() int64 {
	if c == nil {
		return 0
	}
	return c.linesDelivered.Load()
}

// ── Probe metrics ────────────────────────────────────────────────────

// ProbeReply records a probe that got an answer.
func (c *Collector) ProbeReply() {
	if c == nil {
		return
	}
	c.probeReplies.Add(1)
}

// ProbeTimeout records a probe that got no answer.
func (c *Collector) ProbeTimeout() {
	if c == nil {
		return
	}
	c.probeTimeouts.Add(1)
}

// ProbeReplies returns the number of answered probes.
func (c *Collector) ProbeReplies() int64 {
	if c == nil {
		return 0
	}
	return c.probeReplies.Load()
}

// ProbeTimeouts returns the number of unanswered probes.
func (c *Collector) ProbeTimeouts() int64 {
	if c == nil {
		return 0
	}
	return c.probeTimeouts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string           `json:"uptime"`
	RunsActive       int64            `json:"runs_active"`
	RunsTotal        int64            `json:"runs_total"`
	RunsRejected     int64            `json:"runs_rejected"`
	RunsByOperation  map[string]int64 `json:"runs_by_operation,omitempty"`
	LinesDelivered   int64            `json:"lines_delivered"`
	ProbeReplies     int64            `json:"probe_replies"`
	ProbeTimeouts    int64            `json:"probe_timeouts"`
	ErrorsTotal      int64            `json:"errors_total"`
	LastError        string           `json:"last_error,omitempty"`
	LastErrorMessage string           `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:         time.Since(c.startTime).Truncate(time.Second).String(),
		RunsActive:     c.runsActive.Load(),
		RunsTotal:      c.runsTotal.Load(),
		RunsRejected:   c.runsRejected.Load(),
		LinesDelivered: c.linesDelivered.Load(),
		ProbeReplies:   c.probeReplies.Load(),
		ProbeTimeouts:  c.probeTimeouts.Load(),
		ErrorsTotal:    c.errorsTotal.Load(),
	}
	if len(c.byOperation) > 0 {
		s.RunsByOperation = make(map[string]int64, len(c.byOperation))
		for op, n := range c.byOperation {
			s.RunsByOperation[op] = n
		}
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
