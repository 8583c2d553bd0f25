// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

// spinner is yet another blindingly simple text spinner; just enough to
// signal liveliness on the progress line, no bells, no frills attached. It
// advances whenever asked for its next phase, so it doesn't need any
// background ticking of its own.
type spinner struct {
	phases []string
	phase  int
}

// newSpinner returns a new spinner in its initial phase.
func newSpinner() *spinner {
	phases := []string{}
	for _, r := range "⠉⠘⠰⠤⠆⠃" {
		phases = append(phases, string(r)+" ")
	}
	return &spinner{phases: phases}
}

// Next returns the current spinner phase text and then advances the
// spinner, eventually wrapping over.
func (s *spinner) Next() string {
	phase := s.phases[s.phase]
	s.phase = (s.phase + 1) % len(s.phases)
	return phase
}
