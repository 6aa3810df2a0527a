package dispatch

import (
	"fmt"

	"pinger/internal/errors"
)

// User-facing lines.  Front-ends and scripts match on these, so the
// wording is fixed.
const (
	MsgEmptyTarget       = "Please enter an IP address"
	MsgTraceBusy         = "Traceroute is already in progress. Please wait for it to finish."
	MsgTimedOut          = "Request timed out."
	MsgPingFailed        = "An error occurred while pinging"
	MsgToolFailed        = "An error occurred while performing traceroute or nslookup"
	MsgTraceFailed       = "Traceroute failed. Please check the IP address and try again."
	MsgLookupInterrupted = "nslookup interrupted."
)

// ReplyLine formats a successful probe.
func ReplyLine(addr string, elapsedMs int64) string {
	return fmt.Sprintf("Reply from %s: bytes=32 time=%dms TTL=128", addr, elapsedMs)
}

// Describe renders the single line reported for a failed run of op
// against target.  Unclassified errors (including recovered panics)
// get the generic message for the operation.
func Describe(op Operation, target string, err error) string {
	var de *errors.DiagError
	if errors.As(err, &de) {
		switch de.Kind {
		case errors.KindHostUnresolvable:
			return "Unknown host: " + target
		case errors.KindNonZeroExit:
			if op == RouteTrace {
				return MsgTraceFailed
			}
			return fmt.Sprintf("nslookup failed. Exit code: %d", de.Code)
		case errors.KindInterrupted:
			return MsgLookupInterrupted
		}
	}

	switch errors.KindOf(err) {
	case errors.KindEmptyInput:
		return MsgEmptyTarget
	case errors.KindBusy:
		return MsgTraceBusy
	case errors.KindInterrupted:
		return MsgLookupInterrupted
	}

	if op == Reachability {
		return MsgPingFailed
	}
	return MsgToolFailed
}
