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

// Package retry implements the host-rotation and cycle state machine that
// drives a transport+validator exchange with bounded retries and publishes
// progress events as it goes.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/safetime/cache"
	"github.com/facebook/safetime/listener"
	"github.com/facebook/safetime/ntp"
)

// Attempt performs one full transport+validate+offset exchange against
// host and returns either a trusted TimeSample or the error that rejected
// it. It must not retry internally; retrying is the Controller's job.
type Attempt func(ctx context.Context, host string) (ntp.TimeSample, error)

// Options configures the bounds of the state machine. See section 4.6: a
// zero MaxRetryPerHost means one attempt per host, and a zero MaxRetryLoop
// means one pass over the host list.
type Options struct {
	Hosts                 []string
	MaxRetryPerHost       int
	MaxRetryLoop          int
	DelayBetweenRetryLoop time.Duration
}

// Controller runs the retry state machine described in section 4.6.
type Controller struct {
	Options  Options
	Attempt  Attempt
	Cache    *cache.Repository
	Listener listener.Set

	// sleep overrides time.Sleep-style waiting for tests; nil means use a
	// real context-aware timer.
	sleep func(ctx context.Context, d time.Duration) error
}

// attemptCorrelationID derives a short, stable identifier for one attempt
// so log lines for the same (host, retry, cycle) combination are easy to
// grep together across a noisy retry sequence.
func attemptCorrelationID(host string, hostIndex, perHostRetries, cycle int) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s:%d:%d:%d", host, hostIndex, perHostRetries, cycle))
}

func (c *Controller) listenerOrNoOp() listener.Set {
	if c.Listener == nil {
		return listener.NoOp{}
	}
	return c.Listener
}

func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the state machine until success, exhaustion, or
// cancellation via ctx. On success it writes the sample to Cache (when
// non-nil) and returns nil. On exhaustion it returns ErrSyncFailure. On
// cancellation it returns ErrCancelled and emits no further listener
// events beyond ones already in flight.
func (c *Controller) Run(ctx context.Context) error {
	l := c.listenerOrNoOp()
	n := len(c.Options.Hosts)

	hostIndex := 0
	perHostRetries := 0
	cycle := 0

	for {
		if ctx.Err() != nil {
			return ErrCancelled
		}

		host := c.Options.Hosts[hostIndex]
		correlationID := attemptCorrelationID(host, hostIndex, perHostRetries, cycle)
		log.Debugf("safetime: attempt %x against %s (retry=%d cycle=%d)", correlationID, host, perHostRetries, cycle)

		sample, err := c.Attempt(ctx, host)
		if err == nil {
			if ctx.Err() != nil {
				return ErrCancelled
			}
			if c.Cache != nil {
				_ = c.Cache.Set(sample)
			}
			l.OnNTPResponseSuccessful(sample, host, perHostRetries, cycle)
			l.OnSuccessful(sample)
			return nil
		}

		log.Debugf("safetime: attempt %x against %s failed: %v", correlationID, host, err)
		l.OnNTPResponseFailed(host, perHostRetries, cycle, err)

		if ctx.Err() != nil {
			return ErrCancelled
		}

		if perHostRetries < c.Options.MaxRetryPerHost {
			perHostRetries++
			continue
		}

		perHostRetries = 0
		if hostIndex < n-1 {
			hostIndex++
			continue
		}

		// Every host exhausted for this cycle.
		if cycle == c.Options.MaxRetryLoop {
			if ctx.Err() != nil {
				return ErrCancelled
			}
			l.OnFailed(ErrSyncFailure)
			return ErrSyncFailure
		}

		cycle++
		hostIndex = 0
		if c.Options.DelayBetweenRetryLoop > 0 {
			l.NextRetryLoopIn(cycle, c.Options.DelayBetweenRetryLoop)
			if err := c.wait(ctx, c.Options.DelayBetweenRetryLoop); err != nil {
				return ErrCancelled
			}
		}

		if ctx.Err() != nil {
			return ErrCancelled
		}
	}
}
