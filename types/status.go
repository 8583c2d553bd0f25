// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import "fmt"

// Status indicates how far a probe for a particular DNS name has progressed,
// such as pending, resolved, et cetera.
type Status int

// The probe states of a DNS name.
const (
	Pending     Status = iota // name not yet queried or query still in flight.
	Resolved                  // name resolved to at least one address.
	Timeout                   // query ran into the resolver's deadline.
	CantResolve               // authoritative "no", or the query failed outright.
)

// String returns the clear-text representation of a Status value; terminal
// states render exactly as they appear on subdig's result lines.
func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Resolved:
		return "Resolved"
	case Timeout:
		return "Timeout"
	case CantResolve:
		return "CantResolve"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// IsTerminal returns true after a probe has come to its final verdict, whatever
// that verdict may be.
func (s Status) IsTerminal() bool {
	switch s {
	case Resolved, Timeout, CantResolve:
		return true
	default:
		return false
	}
}
