package service

import (
	"context"
	"fmt"
)

// AddressChecker decides whether a source address may log in.
type AddressChecker interface {
	Check(ctx context.Context, ip string) (bool, error)
}

// GateDecision is the outcome of an address check.
type GateDecision int

const (
	Allowed GateDecision = iota
	Denied
)

func (d GateDecision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("GateDecision(%d)", int(d))
	}
}

// AddressGate applies an optional AddressChecker to login requests. A nil
// gate allows every request.
type AddressGate struct {
	checker AddressChecker
}

func NewAddressGate(checker AddressChecker) *AddressGate {
	return &AddressGate{checker: checker}
}

// GateError reports that the address checker itself failed.
type GateError struct {
	Err error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("address check failed: %v", e.Err)
}

func (e *GateError) Unwrap() error {
	return e.Err
}

// Evaluate checks ip. A checker failure is returned as *GateError.
func (g *AddressGate) Evaluate(ctx context.Context, ip *string) (GateDecision, error) {
	if g == nil || g.checker == nil {
		return Allowed, nil
	}

	var addr string
	if ip != nil {
		addr = *ip
	}
	ok, err := g.checker.Check(ctx, addr)
	if err != nil {
		return Denied, &GateError{Err: err}
	}
	if !ok {
		return Denied, nil
	}
	return Allowed, nil
}
