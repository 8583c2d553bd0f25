/*
Package wordlist reads newline-separated subdomain candidate lists into
pending probe tasks. Labels are taken over verbatim: no trimming, no
deduplication, no syntax checks, so garbage in a list simply ends up as
unresolvable names in the results. An empty line is taken as the empty label,
probing the bare target domain itself.
*/
package wordlist
