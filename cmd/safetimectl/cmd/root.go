/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/facebook/safetime/cache"
	"github.com/facebook/safetime/safetime"
)

// RootCmd is a main entry point. It's exported so safetimectl could be
// easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "safetimectl",
	Short: "Trustworthy wall-clock client for hosts with untrusted local clocks",
}

// flags shared by the subcommands that perform NTP exchanges
var (
	rootVerboseFlag           bool
	rootHostsFlag             []string
	rootTimeoutFlag           time.Duration
	rootMaxRetryPerHostFlag   int
	rootMaxRetryLoopFlag      int
	rootRetryLoopDelayFlag    time.Duration
	rootRootDelayMaxFlag      int32
	rootRootDispersionMaxFlag uint32
	rootServerDelayMaxFlag    time.Duration
	rootCachePathFlag         string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringSliceVarP(&rootHostsFlag, "host", "H", []string{"time.facebook.com"}, "NTP server to query, repeatable")
	RootCmd.PersistentFlags().DurationVarP(&rootTimeoutFlag, "timeout", "t", 5*time.Second, "UDP round-trip timeout")
	RootCmd.PersistentFlags().IntVar(&rootMaxRetryPerHostFlag, "max-retry-per-host", 0, "additional attempts per host beyond the first")
	RootCmd.PersistentFlags().IntVar(&rootMaxRetryLoopFlag, "max-retry-loop", 0, "additional passes over the host list beyond the first")
	RootCmd.PersistentFlags().DurationVar(&rootRetryLoopDelayFlag, "retry-loop-delay", 0, "pause between passes over the host list")
	RootCmd.PersistentFlags().Int32Var(&rootRootDelayMaxFlag, "root-delay-max", 100, "max acceptable root delay, raw RFC-1305 units")
	RootCmd.PersistentFlags().Uint32Var(&rootRootDispersionMaxFlag, "root-dispersion-max", 100, "max acceptable root dispersion, raw RFC-1305 units")
	RootCmd.PersistentFlags().DurationVar(&rootServerDelayMaxFlag, "server-response-delay-max", time.Second, "max acceptable server response delay")
	RootCmd.PersistentFlags().StringVarP(&rootCachePathFlag, "cache", "c", "", "path to the on-disk cache file; empty keeps the cache in memory only")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs
// to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// newSafeTime materializes a SafeTime from the shared flags.
func newSafeTime() (*safetime.SafeTime, error) {
	b := safetime.NewBuilder().
		Hosts(rootHostsFlag...).
		ConnectionTimeout(rootTimeoutFlag).
		MaxRetryPerHost(rootMaxRetryPerHostFlag).
		MaxRetryLoop(rootMaxRetryLoopFlag).
		DelayBetweenRetryLoop(rootRetryLoopDelayFlag).
		RootDelayMax(rootRootDelayMaxFlag).
		RootDispersionMax(rootRootDispersionMaxFlag).
		ServerResponseDelayMax(rootServerDelayMaxFlag)
	if rootCachePathFlag != "" {
		b = b.Store(cache.NewINIStore(rootCachePathFlag))
	}
	opts, err := b.Build()
	if err != nil {
		return nil, err
	}
	return safetime.New(opts), nil
}

// Execute is the main entry point for CLI interface
func Execute() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
