/*
Package stubdns provides an in-process DNS server double for tests, so test
suites never have to rely on external resolvers or test harness containers. A
[Server] listens on an ephemeral loopback port and answers only what tests
programmed into it: address records, silent black holes for provoking client
timeouts, or failure rcodes. Unprogrammed names earn an NXDOMAIN.
*/
package stubdns
