// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package scan

import (
	"context"
	"sync"

	"github.com/siemens/subdig/types"
)

// Tally counts terminal probe verdicts by status. A typical use case for a
// Tally is to consume a scanner's news stream and keep running totals that a
// progress display can poll while the scan is still underway.
type Tally struct {
	mu     sync.Mutex
	counts map[types.Status]int
	total  int
}

// NewTally returns a new and properly initialized Tally.
func NewTally() *Tally {
	return &Tally{
		counts: map[types.Status]int{},
	}
}

// Update counts a single probe verdict.
func (t *Tally) Update(task types.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[task.Status]++
	t.total++
}

// Count returns the number of verdicts with the specified status seen so far.
func (t *Tally) Count(status types.Status) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[status]
}

// Total returns the number of verdicts seen so far, regardless of status.
func (t *Tally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Track verdict updates received from the specified news channel until the
// channel is closed or the context done. Track only returns after processing
// all updates or when the context is done.
func (t *Tally) Track(ctx context.Context, news <-chan types.Task) error {
	for {
		select {
		case task, ok := <-news:
			if !ok {
				return nil
			}
			t.Update(task)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
