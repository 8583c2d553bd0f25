// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/siemens/subdig/types"

	"github.com/muesli/termenv"
)

// The color profiles of the two output streams: result lines go to stdout,
// the live progress line to stderr. When a stream isn't a terminal, its
// styling automatically degrades into plain text, so piping the results
// never picks up any ANSI garnish.
var (
	stdoutProfile = termenv.NewOutput(os.Stdout).ColorProfile()
	stderrProfile = termenv.NewOutput(os.Stderr).ColorProfile()
)

// Styling of the verdict on result lines.
var (
	resolvedStyle    = stdoutProfile.String().Foreground(termenv.ANSIGreen)
	timeoutStyle     = stdoutProfile.String().Foreground(termenv.ANSIYellow)
	cantResolveStyle = stdoutProfile.String().Foreground(termenv.ANSIRed)
)

// Styling of the progress line.
var (
	targetStyle           = stderrProfile.String().Bold()
	resolvedCountStyle    = stderrProfile.String().Foreground(termenv.ANSIGreen)
	timeoutCountStyle     = stderrProfile.String().Foreground(termenv.ANSIYellow)
	cantResolveCountStyle = stderrProfile.String().Foreground(termenv.ANSIRed)
)

// statusStyle returns the style for rendering the specified verdict on a
// result line.
func statusStyle(s types.Status) termenv.Style {
	switch s {
	case types.Resolved:
		return resolvedStyle
	case types.Timeout:
		return timeoutStyle
	default:
		return cantResolveStyle
	}
}
