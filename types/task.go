// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

// Task represents a single subdomain probe: the candidate label taken
// verbatim from a wordlist, together with the probe [Status] and, for
// terminal tasks, the resolved addresses or the error that felled the query.
type Task struct {
	Label  string   `json:"label"`  // subdomain label, possibly empty
	Status Status   `json:"status"` // probe state
	Addrs  []string `json:"addrs"`  // resolved IP (v4/v6) addresses, if any
	err    error    // optional error details for unresolved names
}

// NewTask returns a pending probe task for the given subdomain label.
func NewTask(label string) Task {
	return Task{Label: label, Status: Pending}
}

// Err returns an optional error that occurred while trying to resolve the
// task's name.
func (t Task) Err() error { return t.err }

// WithStatus returns a copy of the task moved into the specified (terminal)
// status, with optional error details. The original task stays untouched;
// tasks travel through channels by value.
func (t Task) WithStatus(s Status, err error) Task {
	t.Status = s
	t.err = err
	return t
}

// WithAddrs returns a copy of the task carrying the resolved addresses.
func (t Task) WithAddrs(addrs []string) Task {
	t.Addrs = addrs
	return t
}

// FQDN returns the task's name within the target domain as it appears on
// result lines: always "label.target", so an empty label renders with a
// leading dot.
func (t Task) FQDN(target string) string {
	return t.Label + "." + target
}

// QueryName returns the DNS name to actually query: "label.target", except
// that an empty label queries the bare target domain itself.
func (t Task) QueryName(target string) string {
	if t.Label == "" {
		return target
	}
	return t.Label + "." + target
}
