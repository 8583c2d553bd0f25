// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/siemens/subdig/dnsworker"
	"github.com/siemens/subdig/scan"
	"github.com/siemens/subdig/types"
	"github.com/siemens/subdig/wordlist"

	"github.com/gosuri/uilive"
	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// ScanAndReport probes the candidate subdomains from the configured
// wordlist against the specified target domain, printing one line per probe
// verdict to stdout, in the order the verdicts arrive.
func ScanAndReport(ctx context.Context, target string) error {
	tasks, err := wordlist.Load(*subdomainsFile)
	if err != nil {
		return err
	}
	nsaddr, err := nameserverAddress(*nameserver)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"target":     target,
		"nameserver": nsaddr,
		"candidates": len(tasks),
	}).Debug("starting scan")

	// Even with the in-flight cap removed the worker pool keeps the wire
	// concurrency at a sensible level; excess queries then simply queue up
	// inside the pool.
	poolsize := int(*maxInFlight)
	if poolsize == 0 {
		poolsize = scan.DefaultMaxInFlight
	}
	pool, err := dnsworker.New(ctx, poolsize,
		&dns.Client{Net: *transport, Timeout: *queryTimeout}, nsaddr)
	if err != nil {
		return err
	}
	defer pool.StopWait()

	scanner, news, err := scan.New(target, pool, tasks,
		scan.WithQPS(*qps), scan.WithMaxInFlight(int(*maxInFlight)))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"qps":      *qps,
		"interval": time.Second / time.Duration(*qps),
	}).Debug("pacing queries")

	tally := scan.NewTally()
	trackingDone := make(chan struct{})  // the tally has seen the final verdict.
	renderingDone := make(chan struct{}) // the final progress render went out.

	go func() {
		defer close(trackingDone)
		_ = tally.Track(ctx, emitResults(ctx, os.Stdout, target, news))
	}()
	if *progress {
		go renderProgress(scanner, tally, target, len(tasks), trackingDone, renderingDone)
	} else {
		close(renderingDone)
	}
	if *debug {
		go logCounters(scanner, trackingDone)
	}

	err = scanner.Scan(ctx)
	<-trackingDone
	<-renderingDone
	if err != nil {
		return fmt.Errorf("scan aborted: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Completed")
	return nil
}

// emitResults prints one result line for each verdict arriving on the news
// channel to the specified writer, passing the verdicts on unmodified
// through the returned channel for tallying. The returned channel closes
// after the news channel has closed and all verdicts have been passed on.
func emitResults(ctx context.Context, w io.Writer, target string, news <-chan types.Task) <-chan types.Task {
	out := make(chan types.Task)
	go func() {
		defer close(out)
		for task := range news {
			fmt.Fprintf(w, "%s %s\n",
				task.FQDN(target), statusStyle(task.Status).Styled(task.Status.String()))
			select {
			case out <- task:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// renderProgress keeps rendering a live one-line progress update on stderr
// until tracking has finished, putting out a final summary line just before
// signalling renderingDone.
func renderProgress(
	scanner *scan.Scanner, tally *scan.Tally,
	target string, total int,
	trackingDone <-chan struct{}, renderingDone chan<- struct{},
) {
	defer close(renderingDone)
	// Don't use the uilive writer's Start and Stop, as the asynchronous
	// flushing tends to flicker; instead, flush explicitly after each single
	// render.
	term := uilive.New()
	term.Out = os.Stderr
	r := newRenderer(term, target, total)
	r.Render(scanner.Stats(), tally)
	term.Flush()
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Render(scanner.Stats(), tally)
			term.Flush()
		case <-trackingDone:
			r.RenderSummary(tally)
			term.Flush()
			return
		}
	}
}

// logCounters periodically logs the scheduler counters while the scan is
// running.
func logCounters(scanner *scan.Scanner, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stats := scanner.Stats()
			log.WithFields(log.Fields{
				"pending":   stats.Pending,
				"inflight":  stats.InFlight,
				"completed": stats.Completed,
			}).Debug("scan progress")
		case <-done:
			return
		}
	}
}
