// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/siemens/subdig/scan"
	"github.com/siemens/subdig/types"
)

// renderInterval is the interval between two successive renders of the live
// progress line.
const renderInterval = 100 * time.Millisecond

// renderer renders the live progress line from the current scheduler
// counters and verdict tally.
type renderer struct {
	w       io.Writer
	target  string
	total   int
	spinner *spinner
}

func newRenderer(w io.Writer, target string, total int) *renderer {
	return &renderer{
		w:       w,
		target:  target,
		total:   total,
		spinner: newSpinner(),
	}
}

// Render writes a single snapshot of the scan progress, advancing the
// spinner.
func (r *renderer) Render(stats scan.Stats, tally *scan.Tally) {
	fmt.Fprintf(r.w, "%sscanning %s: %d/%d done, %d in flight; %s\n",
		r.spinner.Next(), targetStyle.Styled(r.target),
		stats.Completed, r.total, stats.InFlight,
		verdictCounts(tally))
}

// RenderSummary writes the final summary line after the scan has finished.
func (r *renderer) RenderSummary(tally *scan.Tally) {
	fmt.Fprintf(r.w, "scanned %s: %d names probed; %s\n",
		targetStyle.Styled(r.target), tally.Total(), verdictCounts(tally))
}

// verdictCounts returns the rendered per-verdict counters.
func verdictCounts(tally *scan.Tally) string {
	return fmt.Sprintf("%s, %s, %s",
		resolvedCountStyle.Styled(fmt.Sprintf("%d resolved", tally.Count(types.Resolved))),
		timeoutCountStyle.Styled(fmt.Sprintf("%d timed out", tally.Count(types.Timeout))),
		cantResolveCountStyle.Styled(fmt.Sprintf("%d unresolvable", tally.Count(types.CantResolve))))
}
