package config

import (
	"runtime"

	"pinger/internal/probe"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and config file parsing.

const (
	// DefaultLookupCommand is the name-resolution utility.
	DefaultLookupCommand = "nslookup"

	// DefaultEchoPort is the TCP port reachability probes connect to.
	DefaultEchoPort = probe.DefaultEchoPort

	// DefaultNotify enables the desktop notification after a traceroute.
	DefaultNotify = true
)

// DefaultTraceCommand is the route-tracing utility for this platform.
var DefaultTraceCommand = defaultTraceCommand(runtime.GOOS)

func defaultTraceCommand(goos string) string {
	if goos == "windows" {
		return "tracert"
	}
	return "traceroute"
}
