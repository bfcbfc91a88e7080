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

package clock

//go:generate mockgen -source=clock.go -destination=tick_mock.go -package=clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// TickSource is a monotonic counter independent of wall-clock adjustments.
// It must reset to a small value across reboots so that a cache keyed off
// of it can detect a reboot and self-heal. Now is safe to call from any
// goroutine.
type TickSource interface {
	Now() int64
}

// Monotonic reads CLOCK_MONOTONIC directly through the clock_gettime
// syscall rather than relying on time.Now's hidden monotonic reading, so
// that the tick value is explicit and independently testable.
type Monotonic struct{}

// NewMonotonic returns a TickSource backed by CLOCK_MONOTONIC.
func NewMonotonic() *Monotonic {
	return &Monotonic{}
}

// Now returns the current monotonic tick count in milliseconds.
func (m *Monotonic) Now() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is always available on Linux; a failure here
		// means the process is in serious trouble already.
		panic("clock: CLOCK_MONOTONIC unavailable: " + err.Error())
	}
	return ts.Sec*1000 + ts.Nsec/int64(time.Millisecond)
}

// WallNowMS returns the current wall-clock reading in milliseconds since
// the Unix epoch, as seen by the local (untrusted) system clock.
func WallNowMS() int64 {
	return time.Now().UnixMilli()
}
