// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/siemens/subdig/scan"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// The CLI flags of the root command, configured and registered by
// newRootCmd.
var (
	subdomainsFile *string        // path of wordlist file with subdomain labels.
	nameserver     *string        // DNS server "host[:port]" to query, if any.
	qps            *uint          // target average rate of queries per second.
	maxInFlight    *uint          // cap on simultaneously outstanding queries.
	queryTimeout   *time.Duration // per-query timeout.
	transport      *string        // DNS transport, either "udp" or "tcp".
	debug          *bool          // enables debug logging.
	progress       *bool          // enables the live progress line on stderr.
)

// newRootCmd creates the root command of the subdig CLI, with all its flags
// set up, ready to be executed.
func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:     "subdig [flags] target-domain",
		Short:   "subdig discovers the resolvable subdomains of a target domain",
		Version: "0.9.0",
		Args:    cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyConfiguration(cmd); err != nil {
				return err
			}
			if *qps < 1 || *qps > 1_000_000 {
				return fmt.Errorf("--qps out of range [1..1000000]")
			}
			if *maxInFlight > 1_000_000 {
				return fmt.Errorf("--max-inflight out of range [0..1000000]")
			}
			if *queryTimeout < time.Millisecond {
				return fmt.Errorf("--timeout must be at least 1ms")
			}
			if *transport != "udp" && *transport != "tcp" {
				return fmt.Errorf("--net must be either %q or %q", "udp", "tcp")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if *debug {
				log.SetLevel(log.DebugLevel)
				log.Debug("debug logging enabled")
			}
			return ScanAndReport(context.Background(), args[0])
		},
	}
	// Sets up the flags.
	subdomainsFile = rootCmd.PersistentFlags().StringP(
		"subdomains", "s", "", "file with candidate subdomain labels, one per line")
	_ = rootCmd.MarkPersistentFlagRequired("subdomains")
	nameserver = rootCmd.PersistentFlags().StringP(
		"ns", "n", "", "DNS server to query, as \"host[:port]\"; defaults to the system resolver")
	qps = rootCmd.PersistentFlags().UintP(
		"qps", "q", 10, "target average rate of DNS queries per second")
	maxInFlight = rootCmd.PersistentFlags().Uint(
		"max-inflight", scan.DefaultMaxInFlight, "cap on simultaneously outstanding queries; 0 removes the cap")
	queryTimeout = rootCmd.PersistentFlags().Duration(
		"timeout", 5*time.Second, "timeout of a single DNS query")
	transport = rootCmd.PersistentFlags().String(
		"net", "udp", "DNS transport, either \"udp\" or \"tcp\"")
	debug = rootCmd.PersistentFlags().BoolP(
		"debug", "d", false, "show debugging output on stderr")
	progress = rootCmd.PersistentFlags().Bool(
		"progress", false, "show a live progress line on stderr")
	return
}

// applyConfiguration fills in all flags the user didn't explicitly set on
// the command line from an optional "subdig" configuration file and from
// SUBDIG_* environment variables. Explicitly set command line flags always
// win over the configuration file and environment.
func applyConfiguration(cmd *cobra.Command) error {
	v := viper.New()
	v.SetConfigName("subdig")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/subdig")
	if err := v.ReadInConfig(); err != nil {
		var notfound viper.ConfigFileNotFoundError
		if !errors.As(err, &notfound) {
			return fmt.Errorf("cannot read configuration: %w", err)
		}
	}
	v.SetEnvPrefix("subdig")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	var flagerr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil && flagerr == nil {
			flagerr = fmt.Errorf("invalid configuration value for %q: %w", f.Name, err)
		}
	})
	return flagerr
}
