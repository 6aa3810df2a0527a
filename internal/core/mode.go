// Package core is the orchestration layer.  It composes the dispatcher
// and task runner into complete front-end modes and provides a builder
// that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	probe, command  →  dispatch  →  task  →  core  →  cmd (CLI)
//
// The desktop front-end in internal/gui sits beside core and shares
// BuildDispatcher with it.
package core

import "context"

// Mode represents a complete front-end of pinger (one-shot or console).
// Each mode owns an interactive context for the duration of Run.
type Mode interface {
	Run(ctx context.Context) error
}
