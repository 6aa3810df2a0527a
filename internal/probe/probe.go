// Package probe provides the host reachability primitive: resolving a
// target to an address and checking, within a timeout, whether that
// address answers.
//
// There is no packet construction here.  A probe is a TCP connect to
// the echo port: a completed handshake or an active refusal both prove
// the host is up, silence until the deadline means it is not.
package probe

import (
	"context"
	"net"
	"syscall"
	"time"

	"pinger/internal/errors"
	"pinger/util"
)

// DefaultEchoPort is the TCP echo service port.
const DefaultEchoPort = 7

// DialFunc establishes a network connection.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Prober checks whether a resolved address is reachable.
type Prober interface {
	// Probe returns true if addr answered before timeout.  A non-nil
	// error means the probe itself failed, not that the host is down.
	Probe(ctx context.Context, addr string, timeout time.Duration) (bool, error)
}

// TCPEchoProber probes by connecting to the echo port.
type TCPEchoProber struct {
	Port int      // 0 means DefaultEchoPort
	Dial DialFunc // nil means net.Dialer.DialContext
}

// Probe implements Prober.
func (p *TCPEchoProber) Probe(ctx context.Context, addr string, timeout time.Duration) (bool, error) {
	port := p.Port
	if port == 0 {
		port = DefaultEchoPort
	}
	dial := p.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := util.FormatAddr(addr, port)
	conn, err := dial(probeCtx, "tcp", target)
	if err == nil {
		conn.Close()
		return true, nil
	}
	if ctx.Err() != nil {
		return false, errors.Wrap("probe", target, ctx.Err())
	}
	return classify(target, err)
}

// classify maps a dial failure onto reachable / unreachable / error.
func classify(target string, err error) (bool, error) {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true, nil
	case isTimeout(err),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return false, nil
	}
	return false, errors.Wrap("probe", target, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
