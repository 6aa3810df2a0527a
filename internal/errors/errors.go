// Package errors provides domain-specific error types for pinger.
//
// Diagnostic runs never surface raw errors to the user: every failure
// is classified into a Kind and rendered as a single output line by the
// dispatcher.  The types here carry enough context (kind, target, exit
// code, underlying cause) for that rendering and for logging.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrEmptyTarget = errors.New("target is empty")
	ErrBusy        = errors.New("route trace already in progress")
	ErrInterrupted = errors.New("wait interrupted")
	ErrNoAddress   = errors.New("no addresses found")
	ErrNoCommand   = errors.New("no command specified")
)

// ── Diagnostic taxonomy ──────────────────────────────────────────────

// Kind classifies a failed diagnostic run.
type Kind int

const (
	KindUnknown Kind = iota
	KindEmptyInput
	KindBusy
	KindHostUnresolvable
	KindProbeIO
	KindLaunch
	KindNonZeroExit
	KindInterrupted
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindEmptyInput:       "empty input",
	KindBusy:             "busy",
	KindHostUnresolvable: "host unresolvable",
	KindProbeIO:          "probe i/o failure",
	KindLaunch:           "subprocess launch failure",
	KindNonZeroExit:      "subprocess non-zero exit",
	KindInterrupted:      "wait interrupted",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DiagError is a classified failure of a single diagnostic run.
type DiagError struct {
	Kind   Kind
	Target string
	Code   int   // exit status, only for KindNonZeroExit
	Err    error // underlying cause (may be nil)
}

func (e *DiagError) Error() string {
	s := fmt.Sprintf("%s %q", e.Kind, e.Target)
	if e.Kind == KindNonZeroExit {
		s += fmt.Sprintf(" (exit %d)", e.Code)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DiagError) Unwrap() error { return e.Err }

// Diag builds a DiagError of the given kind.
func Diag(kind Kind, target string, err error) *DiagError {
	return &DiagError{Kind: kind, Target: target, Err: err}
}

// ExitStatus builds a KindNonZeroExit error for the given code.
func ExitStatus(target string, code int) *DiagError {
	return &DiagError{Kind: KindNonZeroExit, Target: target, Code: code}
}

// KindOf returns the Kind of err, or KindUnknown when err carries no
// classification.
func KindOf(err error) Kind {
	var de *DiagError
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrEmptyTarget):
		return KindEmptyInput
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrInterrupted):
		return KindInterrupted
	}
	return KindUnknown
}

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op   string // "resolve", "probe"
	Addr string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }
