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
	"time"

	"github.com/spf13/cobra"
)

var nowFallbackFlag bool

func init() {
	RootCmd.AddCommand(nowCmd)
	nowCmd.Flags().BoolVar(&nowFallbackFlag, "fallback", false, "fall back to the untrusted local clock when the cache is invalid")
}

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the corrected time from the cached offset, without network I/O",
	Long: "Print the corrected time extrapolated from the last synced offset. " +
		"Requires --cache pointing at a cache file written by a previous sync; " +
		"fails when the cache is empty or a reboot invalidated it.",
	RunE: func(c *cobra.Command, args []string) error {
		ConfigureVerbosity()

		st, err := newSafeTime()
		if err != nil {
			return err
		}

		if nowFallbackFlag {
			fmt.Println(time.UnixMilli(st.NowOrDefault()).UTC().Format(time.RFC3339Nano))
			return nil
		}

		ms, err := st.Now()
		if err != nil {
			return fmt.Errorf("no valid cache, run `safetimectl sync --cache <path>` first: %w", err)
		}
		fmt.Println(time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
		return nil
	},
}
