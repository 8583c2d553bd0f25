// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package scan

import (
	"errors"

	"github.com/siemens/subdig/dnsworker"
	"github.com/siemens/subdig/types"
)

// Classify maps a lookup outcome onto the probe's terminal status. Lookups
// without an error classify as [types.Resolved] and timeouts as
// [types.Timeout]; everything else, including the resolver's definite "no
// answers", collapses into [types.CantResolve]. Timeouts get their own
// terminal status as they may hint at transient network conditions instead
// of a genuinely absent name.
func Classify(err error) types.Status {
	if err == nil {
		return types.Resolved
	}
	var qerr *dnsworker.QueryError
	if errors.As(err, &qerr) {
		switch qerr.Kind {
		case dnsworker.KindTimeout:
			return types.Timeout
		case dnsworker.KindNoAnswers:
			return types.CantResolve
		}
	}
	return types.CantResolve
}
