// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package scan

import "time"

// Pacer is subdig's average-rate limiter: it answers, tick for tick, how many
// new queries the configured QPS budget covers by now. Unused allowance
// accrues without a cap, so after a longer stretch without dispatch
// opportunities the Pacer permits a short burst above the nominal rate rather
// than strictly smoothing the dispatch distance.
//
// A Pacer never reads the wall clock itself; callers pass the current time
// into [Pacer.Allowance] and [Pacer.MarkDispatch]. Pacers are not safe for
// concurrent use, matching their single scheduler-loop owner.
type Pacer struct {
	interval time.Duration // nominal distance between two dispatches.
	last     time.Time     // when the most recent query was dispatched.
}

// NewPacer returns a new Pacer metering out query dispatches at the specified
// target rate of queries per second, with the last-dispatch timestamp primed
// to now. qps must be positive. Rates beyond 1e9 qps exceed the nanosecond
// resolution of the pacing interval; such a Pacer stops metering and permits
// any backlog of dispatches straight away.
func NewPacer(qps uint, now time.Time) *Pacer {
	interval := time.Second / time.Duration(qps)
	if interval <= 0 {
		// qps beyond 1e9 truncates the interval to zero; clamp to the clock
		// resolution so Allowance never divides by zero.
		interval = time.Nanosecond
	}
	return &Pacer{
		interval: interval,
		last:     now,
	}
}

// Interval returns the nominal distance between two consecutive dispatches.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Allowance returns the number of dispatches covered by the QPS budget at
// time now: zero until more than one interval has elapsed since the last
// dispatch, then the number of whole intervals elapsed since.
func (p *Pacer) Allowance(now time.Time) int {
	elapsed := now.Sub(p.last)
	if elapsed <= p.interval {
		return 0
	}
	return int(elapsed / p.interval)
}

// MarkDispatch records a query as actually dispatched at time now. Only
// actual dispatches advance the pacing timestamp; ticks without any dispatch
// leave it alone, so unused allowance keeps accruing.
func (p *Pacer) MarkDispatch(now time.Time) {
	p.last = now
}
