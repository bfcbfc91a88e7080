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
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(getTimeCmd)
}

var getTimeCmd = &cobra.Command{
	Use:   "get-time <host>",
	Short: "Single-shot exchange against one host, bypassing retry policy and cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ConfigureVerbosity()

		st, err := newSafeTime()
		if err != nil {
			return err
		}

		sample, err := st.GetTime(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("querying %q: %w", args[0], err)
		}

		fmt.Printf("host: %s\n", args[0])
		fmt.Printf("offset: %dms\n", sample.OffsetMS)
		fmt.Printf("corrected: %s\n", time.UnixMilli(sample.CorrectedMSAtResponse).UTC().Format(time.RFC3339Nano))
		if sample.Raw != nil {
			fmt.Printf("stratum: %d\n", sample.Raw.Stratum)
			fmt.Printf("root delay: %d\n", sample.Raw.RootDelay)
			fmt.Printf("root dispersion: %d\n", sample.Raw.RootDispersion)
			if rootVerboseFlag {
				spew.Dump(sample.Raw)
			}
		}
		return nil
	},
}
