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
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/safetime/listener"
	"github.com/facebook/safetime/ntp"
)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.AddCommand(syncCmd)
}

// attemptRow is one line of the per-attempt report printed after the sync
// finishes.
type attemptRow struct {
	host    string
	retry   int
	cycle   int
	outcome string
	latency time.Duration
}

// reportingListener records every attempt for the final table and the
// terminal result for the exit code.
type reportingListener struct {
	listener.NoOp

	mu       sync.Mutex
	lastMark time.Time
	rows     []attemptRow
	sample   *ntp.TimeSample
	err      error
}

func newReportingListener() *reportingListener {
	return &reportingListener{lastMark: time.Now()}
}

func (r *reportingListener) mark() time.Duration {
	now := time.Now()
	elapsed := now.Sub(r.lastMark)
	r.lastMark = now
	return elapsed
}

func (r *reportingListener) OnNTPResponseSuccessful(sample ntp.TimeSample, host string, perHostRetries, cycle int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, attemptRow{host, perHostRetries, cycle, okString, r.mark()})
}

func (r *reportingListener) OnNTPResponseFailed(host string, perHostRetries, cycle int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, attemptRow{host, perHostRetries, cycle, failString + " " + err.Error(), r.mark()})
}

func (r *reportingListener) OnSuccessful(sample ntp.TimeSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sample = &sample
}

func (r *reportingListener) OnFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *reportingListener) printTable() {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"host", "retry", "cycle", "outcome", "latency"})
	for _, row := range r.rows {
		table.Append([]string{
			row.host,
			strconv.Itoa(row.retry),
			strconv.Itoa(row.cycle),
			row.outcome,
			row.latency.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync across the configured hosts and print the result",
	RunE: func(c *cobra.Command, args []string) error {
		ConfigureVerbosity()

		st, err := newSafeTime()
		if err != nil {
			return err
		}

		rl := newReportingListener()
		task := st.SyncWithListener(rl)
		for !task.IsDone() {
			time.Sleep(10 * time.Millisecond)
		}

		if rootVerboseFlag {
			rl.printTable()
		}
		if rl.err != nil {
			fmt.Println(failString, rl.err)
			os.Exit(1)
		}
		fmt.Printf("%s offset=%dms corrected=%s\n",
			okString,
			rl.sample.OffsetMS,
			time.UnixMilli(rl.sample.CorrectedMSAtResponse).UTC().Format(time.RFC3339Nano),
		)
		if rootCachePathFlag != "" {
			log.Debugf("cache written to %s", rootCachePathFlag)
		}
		return nil
	},
}
