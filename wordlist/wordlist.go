// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/siemens/subdig/types"
)

// FromReader returns one pending probe task per line of the specified
// newline-separated wordlist, with the subdomain labels taken verbatim: no
// trimming, no deduplication, no syntax checks. Empty lines become empty
// labels and thus later probe the bare target domain itself.
func FromReader(r io.Reader) ([]types.Task, error) {
	tasks := []types.Task{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tasks = append(tasks, types.NewTask(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read wordlist: %w", err)
	}
	return tasks, nil
}

// Load reads the wordlist file at path into pending probe tasks.
func Load(path string) ([]types.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open wordlist: %w", err)
	}
	defer f.Close()
	return FromReader(f)
}
