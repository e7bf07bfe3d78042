// Package address restricts logins to an allowlist of source addresses.
package address

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// CheckError reports that an address could not be evaluated.
type CheckError struct {
	Address string
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot check address %q", e.Address)
	}
	return fmt.Sprintf("cannot check address %q: %v", e.Address, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Resolver looks up the addresses of a host name.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Checker matches addresses against a list of prefixes.
type Checker struct {
	prefixes []netip.Prefix
	resolver Resolver
}

// NewChecker parses a whitespace separated list of addresses and CIDR
// prefixes, e.g. "127.0.0.1 10.0.0.0/8 ::1/128".
func NewChecker(patterns string) (*Checker, error) {
	fields := strings.Fields(patterns)
	if len(fields) == 0 {
		return nil, fmt.Errorf("address allowlist is empty")
	}

	c := &Checker{resolver: net.DefaultResolver}
	for _, field := range fields {
		prefix, err := parsePattern(field)
		if err != nil {
			return nil, err
		}
		c.prefixes = append(c.prefixes, prefix)
	}
	return c, nil
}

// WithResolver replaces the resolver used for host names.
func (c *Checker) WithResolver(r Resolver) *Checker {
	c.resolver = r
	return c
}

// Check reports whether ip is in the allowlist. ip may be a literal address
// or a host name, which is resolved; it is allowed when any of its addresses
// match.
func (c *Checker) Check(ctx context.Context, ip string) (bool, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false, &CheckError{Err: fmt.Errorf("no address supplied")}
	}

	if addr, err := netip.ParseAddr(ip); err == nil {
		return c.contains(addr), nil
	}

	addrs, err := c.resolver.LookupNetIP(ctx, "ip", ip)
	if err != nil {
		return false, &CheckError{Address: ip, Err: err}
	}
	for _, addr := range addrs {
		if c.contains(addr) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Checker) contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range c.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parsePattern(pattern string) (netip.Prefix, error) {
	if strings.Contains(pattern, "/") {
		prefix, err := netip.ParsePrefix(pattern)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid address pattern %q: %w", pattern, err)
		}
		return prefix.Masked(), nil
	}

	addr, err := netip.ParseAddr(pattern)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid address pattern %q: %w", pattern, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
