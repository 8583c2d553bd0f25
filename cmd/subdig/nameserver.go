// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// fallbackNameserver gets queried whenever no DNS server was explicitly
// specified and the system resolver configuration cannot be read either.
const fallbackNameserver = "8.8.8.8:53"

// resolvConf is where the system resolver configuration traditionally
// lives.
const resolvConf = "/etc/resolv.conf"

// nameserverAddress returns the "host:port" endpoint of the DNS server to
// query: an explicitly specified endpoint with a missing port defaulting to
// 53, otherwise the system's first configured name server, and as a last
// resort a public resolver.
func nameserverAddress(ns string) (string, error) {
	if ns != "" {
		return addPort(ns)
	}
	conf, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(conf.Servers) == 0 {
		return fallbackNameserver, nil
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// addPort coerces a DNS server endpoint into "host:port" form, defaulting a
// missing port to 53. Bare IPv6 addresses get their usual bracketing on the
// way.
func addPort(ns string) (string, error) {
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns, nil
	}
	hostport := net.JoinHostPort(ns, "53")
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return "", fmt.Errorf("invalid DNS server address %q: %w", ns, err)
	}
	return hostport, nil
}
