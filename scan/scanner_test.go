// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/siemens/subdig/dnsworker"
	"github.com/siemens/subdig/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

// stubResolver fakes asynchronous lookups with canned per-name outcomes
// after an optional artificial latency, recording the dispatch order and the
// concurrency high-water mark along the way.
type stubResolver struct {
	latency time.Duration
	outcome func(name string) ([]string, error)

	mu        sync.Mutex
	names     []string
	active    int
	highwater int
}

func (r *stubResolver) ResolveHost(ctx context.Context, name string, fn func([]string, error)) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.active++
	if r.active > r.highwater {
		r.highwater = r.active
	}
	r.mu.Unlock()
	go func() {
		if r.latency > 0 {
			select {
			case <-time.After(r.latency):
			case <-ctx.Done():
			}
		}
		addrs, err := []string{"192.0.2.1"}, error(nil)
		if r.outcome != nil {
			addrs, err = r.outcome(name)
		}
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
		fn(addrs, err)
	}()
}

// dispatched returns the queried names in dispatch order.
func (r *stubResolver) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// maxActive returns the high-water mark of simultaneously outstanding
// lookups.
func (r *stubResolver) maxActive() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highwater
}

var _ = Describe("scanning a wordlist", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("rejects a zero QPS budget", func() {
		_, _, err := New("example.com", &stubResolver{}, nil, WithQPS(0))
		Expect(err).To(HaveOccurred())
	})

	It("reports the whole wordlist as pending right from creation", func() {
		tasks := []types.Task{types.NewTask("www"), types.NewTask("mail")}
		scanner, _, err := New("example.com", &stubResolver{}, tasks)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanner.Stats()).To(Equal(Stats{Pending: 2}))
	})

	It("terminates immediately on an empty wordlist", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{}
		scanner, news, err := New("example.com", resolver, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanner.Scan(ctx)).To(Succeed())
		Expect(news).To(BeClosed())
		Expect(resolver.dispatched()).To(BeEmpty())
	})

	It("reports a resolvable name as Resolved", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{}
		scanner, news, err := New("example.com", resolver, []types.Task{types.NewTask("www")},
			WithQPS(1000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		var verdicts []types.Task
		for task := range news {
			verdicts = append(verdicts, task)
		}
		Expect(<-done).To(Succeed())

		Expect(verdicts).To(HaveLen(1))
		Expect(verdicts[0].Status).To(Equal(types.Resolved))
		Expect(fmt.Sprintf("%s %s", verdicts[0].FQDN("example.com"), verdicts[0].Status)).
			To(Equal("www.example.com Resolved"))
	})

	It("classifies each verdict from its lookup outcome", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{
			outcome: func(name string) ([]string, error) {
				switch name {
				case "www.example.com":
					return []string{"192.0.2.7", "2001:db8::7"}, nil
				case "doesnotexist.example.com":
					return nil, &dnsworker.QueryError{Name: name + ".", Kind: dnsworker.KindNoAnswers}
				case "slow.example.com":
					return nil, &dnsworker.QueryError{Name: name + ".", Kind: dnsworker.KindTimeout}
				}
				return nil, &dnsworker.QueryError{Name: name + ".", Kind: dnsworker.KindOther, Err: errors.New("SERVFAIL")}
			},
		}
		tasks := []types.Task{
			types.NewTask("www"),
			types.NewTask("doesnotexist"),
			types.NewTask("slow"),
			types.NewTask("flaky"),
		}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(1000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		statuses := map[string]types.Status{}
		addrs := map[string][]string{}
		for task := range news {
			statuses[task.Label] = task.Status
			addrs[task.Label] = task.Addrs
		}
		Expect(<-done).To(Succeed())

		Expect(statuses).To(Equal(map[string]types.Status{
			"www":          types.Resolved,
			"doesnotexist": types.CantResolve,
			"slow":         types.Timeout,
			"flaky":        types.CantResolve,
		}))
		Expect(addrs["www"]).To(ConsistOf("192.0.2.7", "2001:db8::7"))
	})

	It("probes the bare target domain for empty labels", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{}
		tasks := []types.Task{types.NewTask(""), types.NewTask("mail")}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(1000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		fqdns := []string{}
		for task := range news {
			fqdns = append(fqdns, task.FQDN("example.com"))
		}
		Expect(<-done).To(Succeed())

		Expect(resolver.dispatched()).To(ConsistOf("example.com", "mail.example.com"))
		Expect(fqdns).To(ConsistOf(".example.com", "mail.example.com"))
	})

	It("dispatches strictly in wordlist order", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{}
		labels := []string{"alpha", "bravo", "charlie", "delta", "echo"}
		tasks := make([]types.Task, 0, len(labels))
		expected := make([]string, 0, len(labels))
		for _, label := range labels {
			tasks = append(tasks, types.NewTask(label))
			expected = append(expected, label+".example.com")
		}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(1000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		for range news {
		}
		Expect(<-done).To(Succeed())

		Expect(resolver.dispatched()).To(Equal(expected))
	})

	It("completes every probe exactly once under burst dispatch", NodeTimeout(30*time.Second), func(ctx context.Context) {
		const numtasks = 50

		resolver := &stubResolver{latency: 5 * time.Millisecond}
		tasks := make([]types.Task, 0, numtasks)
		for i := 0; i < numtasks; i++ {
			tasks = append(tasks, types.NewTask(fmt.Sprintf("host-%02d", i)))
		}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(100000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		seen := map[string]int{}
		for task := range news {
			Expect(task.Status.IsTerminal()).To(BeTrue(),
				"verdict for %q isn't terminal", task.Label)
			seen[task.Label]++
		}
		Expect(<-done).To(Succeed())

		Expect(seen).To(HaveLen(numtasks), "probes lost or invented")
		for label, count := range seen {
			Expect(count).To(Equal(1), "probe %q emitted %d times", label, count)
		}
		Expect(scanner.Stats()).To(Equal(Stats{
			Pending:   0,
			InFlight:  0,
			Completed: numtasks,
		}))
	})

	It("caps the number of simultaneously outstanding queries", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{latency: 250 * time.Millisecond}
		tasks := make([]types.Task, 0, 10)
		for i := 0; i < 10; i++ {
			tasks = append(tasks, types.NewTask(fmt.Sprintf("host-%02d", i)))
		}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(100000), WithMaxInFlight(3), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		count := 0
		for range news {
			count++
		}
		Expect(<-done).To(Succeed())

		Expect(count).To(Equal(10))
		Expect(resolver.maxActive()).To(BeNumerically("<=", 3),
			"in-flight cap violated")
	})

	It("lets outstanding queries pile up without a cap", NodeTimeout(30*time.Second), func(ctx context.Context) {
		resolver := &stubResolver{latency: 250 * time.Millisecond}
		tasks := make([]types.Task, 0, 10)
		for i := 0; i < 10; i++ {
			tasks = append(tasks, types.NewTask(fmt.Sprintf("host-%02d", i)))
		}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(100000), WithMaxInFlight(0), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- scanner.Scan(ctx) }()
		for range news {
		}
		Expect(<-done).To(Succeed())

		Expect(resolver.maxActive()).To(BeNumerically(">", 3))
	})

	It("aborts promptly when the context gets cancelled", NodeTimeout(30*time.Second), func(specctx context.Context) {
		resolver := &stubResolver{latency: time.Minute}
		tasks := []types.Task{types.NewTask("www"), types.NewTask("mail")}
		scanner, news, err := New("example.com", resolver, tasks,
			WithQPS(1000), WithIdleQuantum(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(specctx)
		defer cancel()
		time.AfterFunc(100*time.Millisecond, cancel)
		Expect(scanner.Scan(ctx)).To(MatchError(context.Canceled))
		Expect(news).To(BeClosed())
	})

})
