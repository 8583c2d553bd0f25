// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"os"
)

func main() {
	// Cobra reports any command error itself on stderr, so we must not
	// print it a second time here; see also:
	// https://github.com/spf13/cobra/issues/304
	if err := newRootCmd().Execute(); err != nil {
		osExit(1)
	}
}

// osExit is intercepted in unit tests in order to detect the "premature"
// ending of a CLI run together with its exit code.
var osExit = os.Exit
