// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a DNS lookup failed, so that callers never need to poke
// around in error strings or transport-specific error types.
type Kind int

// The failure kinds reported by [Pool.ResolveHost].
const (
	KindOther     Kind = iota // transport trouble, server failures, cancellation.
	KindTimeout               // query ran into the client's timeout.
	KindNoAnswers             // the resolver's definite "no": NXDOMAIN or no A/AAAA records.
)

// String returns the clear-text representation of a failure Kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNoAnswers:
		return "no answers"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// QueryError is the only error type reported by [Pool.ResolveHost]: the name
// queried, the failure [Kind], and the underlying cause where there is one.
type QueryError struct {
	Name string // the queried FQDN
	Kind Kind   // failure classification
	Err  error  // underlying cause, if any
}

// Error returns the clear-text representation of a query error.
func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query for %q yields %s", e.Name, e.Kind)
	}
	return fmt.Sprintf("query for %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying cause, if any.
func (e *QueryError) Unwrap() error { return e.Err }

// kindOf classifies transport and context errors: anything that smells like a
// deadline becomes KindTimeout, the rest is KindOther.
func kindOf(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	return KindOther
}
