// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package stubdns

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
)

// Server is an in-process DNS server double listening on an ephemeral
// loopback UDP port. Tests program it with per-name answers, black holes, or
// failure rcodes; everything not programmed earns an NXDOMAIN.
type Server struct {
	srv *dns.Server

	mu     sync.Mutex
	zone   map[string][]net.IP // owner name -> A/AAAA addresses
	holes  map[string]bool     // queries to swallow without any reply
	rcodes map[string]int      // queries to fail with a specific rcode
}

// New starts a stub DNS server on 127.0.0.1 with an ephemeral port. Callers
// must eventually Close it.
func New() (*Server, error) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("cannot listen for stub DNS server: %w", err)
	}
	s := &Server{
		zone:   map[string][]net.IP{},
		holes:  map[string]bool{},
		rcodes: map[string]int{},
	}
	s.srv = &dns.Server{PacketConn: pc, Handler: s}
	started := make(chan struct{})
	s.srv.NotifyStartedFunc = func() { close(started) }
	go func() {
		// Errors after activation only mean we've been shut down.
		_ = s.srv.ActivateAndServe()
	}()
	<-started // wait for the server, one way or the other
	return s, nil
}

// Addr returns the server's "host:port" endpoint for dialing clients.
func (s *Server) Addr() string {
	return s.srv.PacketConn.LocalAddr().String()
}

// Answer programs the server to answer queries for name with the given IP
// addresses, with v4 addresses served as A records and v6 addresses as AAAA
// records. A name with no addresses of the queried family gets an empty
// NOERROR answer.
func (s *Server) Answer(name string, addrs ...string) {
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			panic(fmt.Sprintf("stubdns: invalid IP address %q", addr))
		}
		ips = append(ips, ip)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zone[canonical(name)] = ips
}

// Blackhole programs the server to silently swallow all queries for name, so
// that clients run into their timeouts.
func (s *Server) Blackhole(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holes[canonical(name)] = true
}

// Fail programs the server to answer queries for name with a SERVFAIL.
func (s *Server) Fail(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rcodes[canonical(name)] = dns.RcodeServerFailure
}

// Close shuts the server down.
func (s *Server) Close() {
	_ = s.srv.Shutdown()
}

// ServeDNS implements dns.Handler, answering from the programmed zone.
func (s *Server) ServeDNS(w dns.ResponseWriter, q *dns.Msg) {
	if len(q.Question) != 1 {
		return
	}
	question := q.Question[0]
	name := canonical(question.Name)

	s.mu.Lock()
	hole := s.holes[name]
	rcode, failing := s.rcodes[name]
	ips, known := s.zone[name]
	s.mu.Unlock()

	if hole {
		return
	}
	m := new(dns.Msg)
	switch {
	case failing:
		m.SetRcode(q, rcode)
	case !known:
		m.SetRcode(q, dns.RcodeNameError)
	default:
		m.SetReply(q)
		for _, ip := range ips {
			hdr := dns.RR_Header{
				Name:  question.Name,
				Class: dns.ClassINET,
				Ttl:   60,
			}
			if ip4 := ip.To4(); ip4 != nil && question.Qtype == dns.TypeA {
				hdr.Rrtype = dns.TypeA
				m.Answer = append(m.Answer, &dns.A{Hdr: hdr, A: ip4})
			} else if ip4 == nil && question.Qtype == dns.TypeAAAA {
				hdr.Rrtype = dns.TypeAAAA
				m.Answer = append(m.Answer, &dns.AAAA{Hdr: hdr, AAAA: ip})
			}
		}
	}
	_ = w.WriteMsg(m)
}

func canonical(name string) string {
	return strings.ToLower(dns.Fqdn(name))
}
