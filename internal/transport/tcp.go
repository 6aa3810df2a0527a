// Package transport establishes the outbound connections that
// reachability probes are made of.  A probe only needs the connection
// attempt's outcome; nothing is sent over it.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections, optionally from a
// specific source address.
type TCPDialer struct {
	Timeout   time.Duration // 0 leaves the bound to ctx
	LocalAddr string        // optional source IP ("" = chosen by the kernel)
}

// Dial connects to address over TCP.  Its method value serves as a
// probe.DialFunc.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}

	if d.LocalAddr != "" {
		ip := net.ParseIP(d.LocalAddr)
		if ip == nil {
			return nil, fmt.Errorf("invalid source address %q", d.LocalAddr)
		}
		dialer.LocalAddr = &net.TCPAddr{IP: ip}
	}

	return dialer.DialContext(ctx, network, address)
}
