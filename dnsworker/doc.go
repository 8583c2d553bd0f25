/*
Package dnsworker implements a simple limiting DNS client-request execution
pool. Subdig uses [Pool] with a pool of “DNS workers” for A/AAAA lookups.
Please note that the A/AAAA queries for a single fqdn are not concurrent.

Usage

	dnsclnt := dns.Client{Timeout: 5 * time.Second}
	workers, err := dnsworker.New(
	    context.Background(),
	    4,                    // number of parallel DNS connections and thus workers
	    &dnsclnt,             // DNS client
	    "127.0.0.1:53",       // address of server/resolver
	)
	workers.ResolveHost(
	    context.Background(),
	    "foobar.example.org",
	    func(addrs []string, err error) {
	        // do something with addrs, unless there's an error reported
	    })
	workers.Submit(func(conn *dns.Conn) {
	    // do something with the DNS connection
	})

Failed lookups are reported to the callback as [*QueryError] values carrying a
failure [Kind], so callers can tell timeouts and answer-less names apart from
the other ways a query can go wrong without parsing error strings.

# Acknowledgements

Under its hood, [Pool] leverages [github.com/gammazero/workerpool] as the
limiting goroutine pool.

[github.com/gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package dnsworker
