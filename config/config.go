// Package config defines the runtime configuration for pinger and
// provides helpers for turning tool command strings into argv prefixes.
package config

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"pinger/internal/dispatch"
	"pinger/internal/errors"
	"pinger/util"
)

// Config holds every tuneable for a single pinger invocation.
type Config struct {
	// ── Operation ────────────────────────────────────────────────────
	Operation   string // raw operation word; empty in console and GUI modes
	Target      string
	Interactive bool

	// ── Tools ────────────────────────────────────────────────────────
	ConfigFile    string
	TraceCommand  string // shell-style, e.g. "traceroute -n -w 2"
	LookupCommand string
	EchoPort      int
	SourceAddress string // optional source IP for reachability probes

	// ── Output ───────────────────────────────────────────────────────
	Verbose     int
	ShowMetrics bool
	Notify      bool // desktop notification when a traceroute finishes
	DryRun      bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		TraceCommand:  DefaultTraceCommand,
		LookupCommand: DefaultLookupCommand,
		EchoPort:      DefaultEchoPort,
		Notify:        DefaultNotify,
	}
}

// ── Command helpers ──────────────────────────────────────────────────

// TraceArgv splits TraceCommand into the argv prefix the target is
// appended to.
func (c *Config) TraceArgv() ([]string, error) {
	return splitCommand("trace-cmd", c.TraceCommand)
}

// LookupArgv splits LookupCommand into an argv prefix.
func (c *Config) LookupArgv() ([]string, error) {
	return splitCommand("lookup-cmd", c.LookupCommand)
}

func splitCommand(field, cmd string) ([]string, error) {
	argv, err := shlex.Split(cmd)
	if err != nil {
		return nil, &errors.ConfigError{
			Field:   field,
			Value:   cmd,
			Message: err.Error(),
			Hint:    "check quoting; the string is split like a POSIX shell would",
		}
	}
	if len(argv) == 0 {
		return nil, &errors.ConfigError{
			Field:   field,
			Value:   cmd,
			Message: "command is empty",
			Hint:    fmt.Sprintf("set --%s or remove it to use the default", field),
		}
	}
	return argv, nil
}

// Op parses Operation.
func (c *Config) Op() (dispatch.Operation, error) {
	op, err := dispatch.ParseOperation(c.Operation)
	if err != nil {
		return 0, &errors.ConfigError{
			Field:   "operation",
			Value:   c.Operation,
			Message: "unknown operation",
			Hint:    "use ping, traceroute or nslookup",
		}
	}
	return op, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent for
// the CLI.  An empty target is not an error here: the run itself
// reports it.
func (c *Config) Validate() error {
	if c.Interactive {
		if c.Operation != "" {
			return &errors.ConfigError{
				Field:   "interactive",
				Message: "console mode does not take an operation",
				Hint:    "run `pinger -i` and type commands at the prompt",
			}
		}
	} else {
		if strings.TrimSpace(c.Operation) == "" {
			return &errors.ConfigError{
				Field:   "operation",
				Message: "an operation is required",
				Hint:    "pinger ping|traceroute|nslookup <target>, or -i for the console",
			}
		}
		if _, err := c.Op(); err != nil {
			return err
		}
	}
	return c.ValidateTools()
}

// ValidateTools checks the settings shared by every front-end.
func (c *Config) ValidateTools() error {
	if c.EchoPort < 1 || c.EchoPort > 65535 {
		return &errors.ConfigError{
			Field:   "echo-port",
			Value:   c.EchoPort,
			Message: "port out of range 1-65535",
			Hint:    fmt.Sprintf("the echo service listens on %d", DefaultEchoPort),
		}
	}
	if c.SourceAddress != "" && !util.IsIPLiteral(c.SourceAddress) {
		return &errors.ConfigError{
			Field:   "source",
			Value:   c.SourceAddress,
			Message: "not an IP address",
			Hint:    "give the address of a local interface, e.g. 192.0.2.5",
		}
	}
	if _, err := c.TraceArgv(); err != nil {
		return err
	}
	if _, err := c.LookupArgv(); err != nil {
		return err
	}
	return nil
}
