package util

import (
	"net"
	"strconv"
)

// FormatAddr returns "host:port", bracketing IPv6 literals.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// IsIPLiteral reports whether host is a numeric IPv4 or IPv6 address.
func IsIPLiteral(host string) bool {
	return net.ParseIP(host) != nil
}

// PreferIPv4 picks the address a probe should target: the first IPv4
// address if there is one, otherwise the first address.  It returns ""
// for an empty slice.
func PreferIPv4(addrs []net.IPAddr) string {
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String()
		}
	}
	if len(addrs) > 0 {
		return addrs[0].IP.String()
	}
	return ""
}
