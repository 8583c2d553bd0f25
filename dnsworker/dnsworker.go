// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/miekg/dns"
)

// Pool is a (size-limited) pool of DNS client connections talking with the
// same DNS resolver address.
type Pool struct {
	clnt    *dns.Client
	workers *workerpool.WorkerPool
	mu      sync.Mutex // protects the pool of DNS connections
	free    []*dns.Conn
}

// New returns a pool of the specified size of DNS client connections, with each
// connection talking to the same DNS resolver address. The client's network and
// timeout settings apply to every query later exchanged through the pool.
//
// DNS tasks are submitted using [Pool.Submit] in form of task functions
// receiving a concrete [dns.Conn].
//
// The passed context is used for creating (dialing) the DNS client connections
// only. It is not directly passed to the submitted DNS tasks, so task
// submitters are themselves responsible for capturing the necessary context in
// their task function closure.
func New(ctx context.Context, size int, dnsclnt *dns.Client, addr string) (*Pool, error) {
	pool := &Pool{
		clnt:    dnsclnt,
		workers: workerpool.New(size),
	}
	free := make([]*dns.Conn, 0, size)
	for i := 0; i < size; i++ {
		conn, err := dnsclnt.DialContext(ctx, addr)
		if err != nil {
			// Immediately release all connections created so far.
			for _, conn := range free {
				conn.Close()
			}
			return nil, fmt.Errorf("cannot dial DNS resolver %s: %w", addr, err)
		}
		free = append(free, conn)
	}
	pool.free = free
	return pool, nil
}

// Submit a task to the DNS client connection pool, where it gets enqueued to be
// executed on an available DNS client connection.
func (p *Pool) Submit(task func(conn *dns.Conn)) {
	p.workers.Submit(func() { p.task(task) })
}

// ResolveHost is a convenience method for submitting A/AAAA queries and
// gathering the results. The results (resolved IP addresses in textual format)
// or a [*QueryError] if resolution failed is passed to the specified callback
// function fn.
//
// fn is called only once after completing both the A and AAAA queries, so fn
// always gets to see all IP addresses from all IP families (if any). Errors
// reported to fn are always of type [*QueryError], telling timeouts and
// answer-less outcomes apart from the other ways a query can go wrong.
//
// Please note that when the passed context is cancelled this will cancel all
// in-flight as well as scheduled name resolution jobs.
func (p *Pool) ResolveHost(ctx context.Context, name string, fn func([]string, error)) {
	p.Submit(func(conn *dns.Conn) {
		var addrs []string
		var qerr *QueryError
		defer func() { // ...ensure triggering the result callback on our way out
			if qerr != nil {
				fn(nil, qerr)
				return
			}
			fn(addrs, nil)
		}()

		fqdn := dns.Fqdn(name)
		nadanothing := true
		for _, addrType := range []uint16{dns.TypeA, dns.TypeAAAA} {
			// don't try to resolve the name if the context has been cancelled;
			// trigger the callback immediately with the context error.
			select {
			case <-ctx.Done():
				qerr = &QueryError{Name: fqdn, Kind: kindOf(ctx.Err()), Err: ctx.Err()}
				return
			default:
			}

			msg := dns.Msg{
				MsgHdr: dns.MsgHdr{Id: dns.Id()},
			}
			msg.SetQuestion(fqdn, addrType)
			r, _, err := p.clnt.ExchangeWithConn(&msg, conn)
			if err != nil {
				qerr = &QueryError{Name: fqdn, Kind: kindOf(err), Err: err}
				return
			}
			if r.Rcode == dns.RcodeNameError {
				// NXDOMAIN covers all record types, so don't bother asking
				// for more.
				break
			}
			if r.Rcode != dns.RcodeSuccess {
				qerr = &QueryError{
					Name: fqdn,
					Kind: KindOther,
					Err:  fmt.Errorf("server answered with rcode %s", dns.RcodeToString[r.Rcode]),
				}
				return
			}
			for _, rr := range r.Answer {
				if addrRR, ok := rr.(*dns.A); ok {
					nadanothing = false
					addrs = append(addrs, addrRR.A.String())
					continue
				}
				if addrRR, ok := rr.(*dns.AAAA); ok {
					nadanothing = false
					addrs = append(addrs, addrRR.AAAA.String())
				}
			}
		}
		// If we neither got A nor AAAA answers then this is the resolver's
		// definite "no": the callback sees it as a no-answers query error.
		if nadanothing {
			qerr = &QueryError{Name: fqdn, Kind: KindNoAnswers}
		}
	})
}

// task grabs the next free DNS client and passes it to the specified function.
// After the function returns, the connection is put back into the free list.
func (p *Pool) task(task func(conn *dns.Conn)) {
	// pop off a free DNS client connection,
	// https://ueokande.github.io/go-slice-tricks/,
	p.mu.Lock()
	if len(p.free) == 0 {
		panic("no free DNS client connection available")
	}
	last := len(p.free) - 1
	conn := p.free[last]
	p.free = p.free[:last]
	p.mu.Unlock()
	// run the task with its assigned DNS client connection...
	task(conn)
	// ...and push the DNS client connection back into the free list.
	p.mu.Lock()
	p.free = append(p.free, conn)
	p.mu.Unlock()
}

// StopWait waits for all enqueued address lookup or generic DNS request tasks
// to finish, and then shuts down the pool.
func (p *Pool) StopWait() {
	p.workers.StopWait()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.free {
		conn.Close()
	}
	p.free = nil
}
