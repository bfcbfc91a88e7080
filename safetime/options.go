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

// Package safetime is the public surface of the service: a trustworthy
// now() backed by periodic or on-demand NTP syncs, with a bounded,
// observable retry policy and a cache that makes now() O(1) between
// syncs.
package safetime

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/facebook/safetime/cache"
	"github.com/facebook/safetime/clock"
	"github.com/facebook/safetime/listener"
)

// Options is the immutable configuration a SafeTime is built from.
type Options struct {
	Hosts                  []string
	Port                   int
	TTL                    int
	ConnectionTimeout      time.Duration
	MaxRetryPerHost        int
	MaxRetryLoop           int
	DelayBetweenRetryLoop  time.Duration
	RootDelayMax           int32
	RootDispersionMax      uint32
	ServerResponseDelayMax time.Duration
	DefaultListener        listener.Set
	Store                  cache.Store
	Ticks                  clock.TickSource
}

// Builder materializes an Options via a fluent configuration API. Defaults
// are set by NewBuilder; Build does not replace a field that a setter has
// set to its zero value.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder pre-populated with defaults: a 5s
// connection timeout, thresholds of 1 (the minimum legal value) for the
// root delay/dispersion maxima, an in-memory cache store, and a
// CLOCK_MONOTONIC tick source.
func NewBuilder() *Builder {
	return &Builder{opts: Options{
		ConnectionTimeout:      5 * time.Second,
		RootDelayMax:           1,
		RootDispersionMax:      1,
		ServerResponseDelayMax: time.Second,
		Store:                  cache.NewMemStore(),
		Ticks:                  clock.NewMonotonic(),
		DefaultListener:        listener.NoOp{},
	}}
}

func (b *Builder) Hosts(hosts ...string) *Builder {
	b.opts.Hosts = hosts
	return b
}

func (b *Builder) Port(port int) *Builder {
	b.opts.Port = port
	return b
}

func (b *Builder) TTL(ttl int) *Builder {
	b.opts.TTL = ttl
	return b
}

func (b *Builder) ConnectionTimeout(d time.Duration) *Builder {
	b.opts.ConnectionTimeout = d
	return b
}

func (b *Builder) MaxRetryPerHost(n int) *Builder {
	b.opts.MaxRetryPerHost = n
	return b
}

func (b *Builder) MaxRetryLoop(n int) *Builder {
	b.opts.MaxRetryLoop = n
	return b
}

func (b *Builder) DelayBetweenRetryLoop(d time.Duration) *Builder {
	b.opts.DelayBetweenRetryLoop = d
	return b
}

func (b *Builder) RootDelayMax(v int32) *Builder {
	b.opts.RootDelayMax = v
	return b
}

func (b *Builder) RootDispersionMax(v uint32) *Builder {
	b.opts.RootDispersionMax = v
	return b
}

func (b *Builder) ServerResponseDelayMax(d time.Duration) *Builder {
	b.opts.ServerResponseDelayMax = d
	return b
}

func (b *Builder) DefaultListener(l listener.Set) *Builder {
	b.opts.DefaultListener = l
	return b
}

func (b *Builder) Store(s cache.Store) *Builder {
	b.opts.Store = s
	return b
}

func (b *Builder) Ticks(t clock.TickSource) *Builder {
	b.opts.Ticks = t
	return b
}

// Build validates the accumulated options and returns an immutable
// Options. The host list is allowed to be empty at build time; it is
// checked again, and must be non-empty, at sync time.
func (b *Builder) Build() (*Options, error) {
	if b.opts.MaxRetryPerHost < 0 {
		return nil, fmt.Errorf("safetime: max_retry_per_host must be >= 0, got %d", b.opts.MaxRetryPerHost)
	}
	if b.opts.MaxRetryLoop < 0 {
		return nil, fmt.Errorf("safetime: max_retry_loop must be >= 0, got %d", b.opts.MaxRetryLoop)
	}
	if b.opts.RootDelayMax < 1 {
		return nil, fmt.Errorf("safetime: root_delay_max must be >= 1, got %d", b.opts.RootDelayMax)
	}
	if b.opts.RootDispersionMax < 1 {
		return nil, fmt.Errorf("safetime: root_dispersion_max must be >= 1, got %d", b.opts.RootDispersionMax)
	}
	opts := b.opts
	// Defensive copy, dropping duplicate hosts while preserving order so
	// the retry controller never burns attempts on the same server twice
	// per cycle.
	hosts := make([]string, 0, len(b.opts.Hosts))
	for _, h := range slices.Clone(b.opts.Hosts) {
		if !slices.Contains(hosts, h) {
			hosts = append(hosts, h)
		}
	}
	opts.Hosts = hosts
	return &opts, nil
}
