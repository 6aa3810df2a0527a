package probe

import (
	"context"
	"net"

	"pinger/internal/errors"
	"pinger/util"
)

// Resolver turns a target name into the address probes are sent to.
type Resolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// NetResolver resolves through the platform resolver.
type NetResolver struct {
	Resolver *net.Resolver // nil means net.DefaultResolver
}

// Resolve returns host unchanged when it is an IP literal, otherwise
// the first IPv4 address it resolves to (or the first address of any
// family).
func (r *NetResolver) Resolve(ctx context.Context, host string) (string, error) {
	if util.IsIPLiteral(host) {
		return host, nil
	}
	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	addrs, err := res.LookupIPAddr(ctx, host)
	if err != nil {
		return "", errors.Wrap("resolve", host, err)
	}
	addr := util.PreferIPv4(addrs)
	if addr == "" {
		return "", errors.Wrap("resolve", host, errors.ErrNoAddress)
	}
	return addr, nil
}
