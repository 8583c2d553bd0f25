// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package scan

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/siemens/subdig/types"

	"github.com/gammazero/deque"
)

// DefaultMaxInFlight bounds the number of simultaneously outstanding queries
// unless configured otherwise using [WithMaxInFlight].
const DefaultMaxInFlight = 100

// defaultIdleQuantum is the scheduler's nap between pacing checks while
// nothing is outstanding.
const defaultIdleQuantum = 20 * time.Millisecond

// Resolver issues an asynchronous A/AAAA lookup for a name, reporting the
// resolved addresses or the lookup failure through the specified callback.
// The callback fires exactly once per lookup, from whatever goroutine the
// resolver fancies. A dnsworker.Pool satisfies this interface.
type Resolver interface {
	ResolveHost(ctx context.Context, name string, fn func(addrs []string, err error))
}

// Scanner probes a wordlist of subdomain candidates against a single target
// domain, pacing query dispatches to an average QPS budget and streaming
// each probe's terminal verdict over its “news” channel.
//
// The scheduling is strictly single-owner: one loop owns the task queue, the
// in-flight accounting, and the pacing state, so none of them need locking.
// Completion multiplexing is done over a channel into which every finished
// query drops its verdict, with the loop as the channel's single consumer.
type Scanner struct {
	target      string
	resolver    Resolver
	tasks       []types.Task
	qps         uint
	maxInFlight int
	quantum     time.Duration
	news        chan types.Task
	completions chan types.Task

	pending   atomic.Int64
	inflight  atomic.Int64
	completed atomic.Int64
}

// ScannerOption can be passed to New when creating new Scanner objects.
type ScannerOption func(*Scanner)

// New returns a new Scanner probing the specified wordlist of candidate
// tasks within the specified target domain through the specified resolver,
// as well as a “news stream”. The news channel sends each probe task exactly
// once, namely after it reached its terminal verdict; verdicts appear in
// completion order, which is nondeterministic across runs. The news channel
// is closed when [Scanner.Scan] returns.
//
// The progress counters already report the whole wordlist as pending right
// after creation, so [Scanner.Stats] watchers started before [Scanner.Scan]
// get accurate snapshots from their very first one.
//
// The new scanner defaults to 10 queries per second and at most
// [DefaultMaxInFlight] simultaneously outstanding queries.
//
// The scanner can be configured during creation using several options:
//   - [WithQPS]
//   - [WithMaxInFlight]
//   - [WithIdleQuantum]
func New(target string, resolver Resolver, tasks []types.Task, options ...ScannerOption) (*Scanner, <-chan types.Task, error) {
	s := &Scanner{
		target:      target,
		resolver:    resolver,
		tasks:       tasks,
		qps:         10,
		maxInFlight: DefaultMaxInFlight,
		quantum:     defaultIdleQuantum,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.qps == 0 {
		return nil, nil, errors.New("Scanner: qps must be positive")
	}
	s.pending.Store(int64(len(tasks)))
	chansize := s.maxInFlight
	if chansize <= 0 {
		chansize = DefaultMaxInFlight
	}
	s.news = make(chan types.Task, chansize)
	s.completions = make(chan types.Task, chansize)
	return s, s.news, nil
}

// WithQPS sets the target average rate of newly dispatched queries per
// second. The default is 10.
func WithQPS(qps uint) ScannerOption {
	return func(s *Scanner) {
		s.qps = qps
	}
}

// WithMaxInFlight caps the number of simultaneously outstanding queries.
// Passing 0 removes the cap, so that only the QPS budget throttles
// dispatching and slow completions let the outstanding queries pile up.
func WithMaxInFlight(max int) ScannerOption {
	return func(s *Scanner) {
		s.maxInFlight = max
	}
}

// WithIdleQuantum sets the fixed nap the scheduler takes whenever pacing
// doesn't yet permit another dispatch and no query is outstanding. The
// default is 20ms.
func WithIdleQuantum(quantum time.Duration) ScannerOption {
	return func(s *Scanner) {
		s.quantum = quantum
	}
}

// Scan works the wordlist tasks to completion: each control-loop tick it
// dispatches as many queued tasks as the QPS budget and the in-flight cap
// permit, in wordlist (FIFO) order, and then waits for whichever outstanding
// query finishes first in order to pass its verdict on to the news channel.
// Scan returns nil after the last verdict went out, or the context's error
// after cancellation; either way it closes the news channel on its way out.
// A Scanner scans only once.
func (s *Scanner) Scan(ctx context.Context) error {
	defer close(s.news)

	var queue deque.Deque[types.Task]
	for _, task := range s.tasks {
		queue.PushBack(task)
	}

	pacer := NewPacer(s.qps, time.Now())
	inflight := 0
	for queue.Len() > 0 || inflight > 0 {
		// How many new queries does the QPS budget cover right now? Clamped
		// to the tasks actually still queued and to the remaining in-flight
		// headroom.
		allowed := pacer.Allowance(time.Now())
		if allowed > queue.Len() {
			allowed = queue.Len()
		}
		if s.maxInFlight > 0 && allowed > s.maxInFlight-inflight {
			allowed = s.maxInFlight - inflight
		}
		for i := 0; i < allowed; i++ {
			s.dispatch(ctx, queue.PopFront())
			pacer.MarkDispatch(time.Now())
			inflight++
			s.pending.Add(-1)
			s.inflight.Add(1)
		}

		if inflight == 0 {
			// Pacing doesn't permit a dispatch yet and nothing is
			// outstanding, so take a short nap instead of busy-spinning.
			select {
			case <-time.After(s.quantum):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		// Wait for whichever outstanding query finishes first and pass its
		// verdict on.
		select {
		case task := <-s.completions:
			inflight--
			s.inflight.Add(-1)
			s.completed.Add(1)
			select {
			case s.news <- task:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// dispatch hands a single task over to the resolver. The resolver later
// calls back from one of its worker goroutines; the callback classifies the
// outcome and drops the now-terminal task into the completions channel for
// the scheduler loop to pick up.
func (s *Scanner) dispatch(ctx context.Context, task types.Task) {
	s.resolver.ResolveHost(ctx, task.QueryName(s.target),
		func(addrs []string, err error) {
			task := task.WithAddrs(addrs).WithStatus(Classify(err), err)
			// Don't block endlessly in case the scheduler is already gone
			// after the context got cancelled.
			select {
			case s.completions <- task:
			case <-ctx.Done():
			}
		})
}

// Stats is a point-in-time snapshot of scan progress.
type Stats struct {
	Pending   int // tasks still queued, waiting for dispatch.
	InFlight  int // queries dispatched, verdict still outstanding.
	Completed int // verdicts already passed on.
}

// Stats returns a snapshot of the scan progress counters. It is safe for
// concurrent use, so diagnostics and progress rendering can watch a scan
// while it is running.
func (s *Scanner) Stats() Stats {
	return Stats{
		Pending:   int(s.pending.Load()),
		InFlight:  int(s.inflight.Load()),
		Completed: int(s.completed.Load()),
	}
}
