/*
Package scan implements subdig's rate-limited concurrent query scheduler: the
part that decides when to fire the next DNS query, keeps the right number of
queries in flight, and turns each outcome into exactly one terminal verdict.

A [Scanner] owns the queue of not-yet-dispatched probe tasks and works it off
in wordlist (FIFO) order. Each control-loop tick it asks its [Pacer] how many
new queries the QPS budget covers, additionally clamped by the in-flight cap,
dispatches that many through the configured [Resolver], and then waits for
whichever outstanding query finishes first. Completion multiplexing is plain
channel fare: every finished query drops its classified verdict into a
completions channel with the scheduler loop as the single consumer, so the
in-flight “set” boils down to a counter instead of a collection of live
operation handles. Verdicts leave the scanner through its news channel in
completion order, which is nondeterministic across runs.

The pacing deliberately is an average-rate limiter without a cap on stored
credit: allowance accrues while the loop waits on completions and is spent in
a short burst as soon as queued tasks are ready, see [Pacer] for the details.

Lookup outcomes collapse into the three terminal verdicts through the pure
[Classify] function; the scheduler never inspects resolver errors itself.
*/
package scan
