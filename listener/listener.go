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

// Package listener defines the progress/success/failure notification
// surface a sync task reports through, and a couple of ready-made
// implementations for metrics export.
package listener

import (
	"time"

	"github.com/facebook/safetime/ntp"
)

// Set is the capability set a caller may implement to observe a sync
// task's progress. Any method may be omitted by embedding NoOp, which
// supplies no-op defaults for all of them.
type Set interface {
	// OnSuccessful fires exactly once, as the terminal event of a
	// successful sync.
	OnSuccessful(sample ntp.TimeSample)

	// OnFailed fires exactly once, as the terminal event of an exhausted
	// sync. Never fires after a cancellation.
	OnFailed(err error)

	// OnNTPResponseSuccessful fires once per sync, immediately before
	// OnSuccessful, naming the host and attempt counters that produced
	// the winning response.
	OnNTPResponseSuccessful(sample ntp.TimeSample, host string, perHostRetries, cycle int)

	// OnNTPResponseFailed fires once per failed attempt.
	OnNTPResponseFailed(host string, perHostRetries, cycle int, err error)

	// NextRetryLoopIn fires immediately before each cycle transition that
	// carries a non-zero delay.
	NextRetryLoopIn(cycle int, delay time.Duration)
}

// NoOp implements Set with every method a no-op. Embed it to implement
// only the callbacks that matter.
type NoOp struct{}

func (NoOp) OnSuccessful(ntp.TimeSample)                              {}
func (NoOp) OnFailed(error)                                           {}
func (NoOp) OnNTPResponseSuccessful(ntp.TimeSample, string, int, int) {}
func (NoOp) OnNTPResponseFailed(string, int, int, error)              {}
func (NoOp) NextRetryLoopIn(int, time.Duration)                       {}

var _ Set = NoOp{}
