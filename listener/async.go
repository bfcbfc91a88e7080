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

package listener

import (
	"time"

	"github.com/facebook/safetime/ntp"
)

// Async delivers every callback on its own single goroutine instead of the
// sync task's goroutine, so a slow listener never stalls the retry loop.
// Delivery order is preserved: a single queue drained by one goroutine
// guarantees the zero-or-more progress events still arrive before the
// terminal event.
type Async struct {
	inner Set
	queue chan func()
	done  chan struct{}
}

// NewAsync wraps inner in an Async dispatcher and starts its delivery
// goroutine. Callers must Close it when the wrapped listener is no longer
// needed.
func NewAsync(inner Set) *Async {
	a := &Async{
		inner: inner,
		queue: make(chan func(), 128),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		for fn := range a.queue {
			fn()
		}
	}()
	return a
}

// Close drains any queued callbacks and stops the delivery goroutine. It
// must not be called concurrently with callback invocations.
func (a *Async) Close() {
	close(a.queue)
	<-a.done
}

func (a *Async) OnSuccessful(sample ntp.TimeSample) {
	a.queue <- func() { a.inner.OnSuccessful(sample) }
}

func (a *Async) OnFailed(err error) {
	a.queue <- func() { a.inner.OnFailed(err) }
}

func (a *Async) OnNTPResponseSuccessful(sample ntp.TimeSample, host string, perHostRetries, cycle int) {
	a.queue <- func() { a.inner.OnNTPResponseSuccessful(sample, host, perHostRetries, cycle) }
}

func (a *Async) OnNTPResponseFailed(host string, perHostRetries, cycle int, err error) {
	a.queue <- func() { a.inner.OnNTPResponseFailed(host, perHostRetries, cycle, err) }
}

func (a *Async) NextRetryLoopIn(cycle int, delay time.Duration) {
	a.queue <- func() { a.inner.NextRetryLoopIn(cycle, delay) }
}

var _ Set = (*Async)(nil)

// Multi fans every callback out to each listener in order. A sync task
// configured with Multi{prom, jsonStats, offsetStats} feeds all three from
// the same event stream.
type Multi []Set

func (m Multi) OnSuccessful(sample ntp.TimeSample) {
	for _, l := range m {
		l.OnSuccessful(sample)
	}
}

func (m Multi) OnFailed(err error) {
	for _, l := range m {
		l.OnFailed(err)
	}
}

func (m Multi) OnNTPResponseSuccessful(sample ntp.TimeSample, host string, perHostRetries, cycle int) {
	for _, l := range m {
		l.OnNTPResponseSuccessful(sample, host, perHostRetries, cycle)
	}
}

func (m Multi) OnNTPResponseFailed(host string, perHostRetries, cycle int, err error) {
	for _, l := range m {
		l.OnNTPResponseFailed(host, perHostRetries, cycle, err)
	}
}

func (m Multi) NextRetryLoopIn(cycle int, delay time.Duration) {
	for _, l := range m {
		l.NextRetryLoopIn(cycle, delay)
	}
}

var _ Set = Multi(nil)
