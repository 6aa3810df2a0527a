package dispatch

import (
	"fmt"
	"strings"
)

// Operation selects which diagnostic a run performs.
type Operation int

const (
	Reachability Operation = iota
	RouteTrace
	NameResolve
)

func (o Operation) String() string {
	switch o {
	case Reachability:
		return "ping"
	case RouteTrace:
		return "traceroute"
	case NameResolve:
		return "nslookup"
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseOperation accepts the user-facing names: ping, traceroute
// (or tracert) and nslookup, in any case.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ping":
		return Reachability, nil
	case "traceroute", "tracert":
		return RouteTrace, nil
	case "nslookup":
		return NameResolve, nil
	}
	return 0, fmt.Errorf("unknown operation %q (want ping, traceroute or nslookup)", s)
}
