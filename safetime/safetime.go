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

package safetime

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/facebook/safetime/cache"
	"github.com/facebook/safetime/clock"
	"github.com/facebook/safetime/listener"
	"github.com/facebook/safetime/ntp"
	"github.com/facebook/safetime/offset"
	"github.com/facebook/safetime/retry"
	"github.com/facebook/safetime/validator"
)

// ErrNoValidCache is returned by Now when no usable sample is cached.
var ErrNoValidCache = errors.New("safetime: now() called without a valid cache")

// SafeTime is the public facade: it owns the cache, the retry controller
// wiring, and the single outstanding sync task.
type SafeTime struct {
	opts       *Options
	cacheRepo  *cache.Repository
	transport  *ntp.Transport
	validator  *validator.Validator
	offsetCalc *offset.Calculator

	// attemptFn performs one exchange against a host; it is a field
	// rather than always calling s.attempt directly so tests can
	// substitute a fake transport without opening real sockets.
	attemptFn retry.Attempt

	mu     sync.Mutex
	active *Task
}

// New builds a SafeTime from a validated Options, as produced by
// Builder.Build.
func New(opts *Options) *SafeTime {
	transport := ntp.NewTransport(opts.Ticks)
	transport.Port = opts.Port
	transport.TTL = opts.TTL
	transport.ConnectionTimeout = opts.ConnectionTimeout

	v := validator.New(validator.Options{
		RootDelayMax:             opts.RootDelayMax,
		RootDispersionMax:        opts.RootDispersionMax,
		ServerResponseDelayMaxMS: opts.ServerResponseDelayMax.Milliseconds(),
	})

	st := &SafeTime{
		opts:       opts,
		cacheRepo:  cache.NewRepository(opts.Store),
		transport:  transport,
		validator:  v,
		offsetCalc: offset.New(),
	}
	st.attemptFn = st.attempt
	return st
}

// attempt performs one transport+parse+validate+offset exchange against a
// single host. It is the retry controller's Attempt callback.
func (s *SafeTime) attempt(_ context.Context, host string) (ntp.TimeSample, error) {
	ex, err := s.transport.Fetch(host)
	if err != nil {
		return ntp.TimeSample{}, err
	}
	parsed, err := ntp.Parse(ex.Response)
	if err != nil {
		return ntp.TimeSample{}, err
	}
	if err := s.validator.Validate(parsed, ex.RequestWallMS, ex.RequestTicks, ex.ResponseTicks); err != nil {
		return ntp.TimeSample{}, err
	}
	return s.offsetCalc.Calculate(parsed, ex.RequestWallMS, ex.RequestTicks, ex.ResponseTicks), nil
}

func (s *SafeTime) resolveListener(l listener.Set) listener.Set {
	if l != nil {
		return l
	}
	if s.opts.DefaultListener != nil {
		return s.opts.DefaultListener
	}
	return listener.NoOp{}
}

// Sync triggers a sync unconditionally, using the default listener, and
// returns a handle to the new task. Equivalent to SyncWithListener(nil).
func (s *SafeTime) Sync() *Task {
	return s.SyncWithListener(nil)
}

// SyncWithListener always dispatches a sync, ignoring cache state. If a
// previous task is still running it is cancelled and joined first. A nil
// listener falls back to the configured default listener.
func (s *SafeTime) SyncWithListener(l listener.Set) *Task {
	l = s.resolveListener(l)

	s.mu.Lock()
	prev := s.active
	s.mu.Unlock()
	if prev != nil {
		prev.Cancel()
		<-prev.finished
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{cancel: cancel, finished: make(chan struct{})}

	s.mu.Lock()
	s.active = task
	s.mu.Unlock()

	if len(s.opts.Hosts) == 0 {
		go func() {
			l.OnFailed(retry.ErrSyncFailure)
			task.setResult(retry.ErrSyncFailure)
		}()
		return task
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		controller := &retry.Controller{
			Options: retry.Options{
				Hosts:                 s.opts.Hosts,
				MaxRetryPerHost:       s.opts.MaxRetryPerHost,
				MaxRetryLoop:          s.opts.MaxRetryLoop,
				DelayBetweenRetryLoop: s.opts.DelayBetweenRetryLoop,
			},
			Attempt:  s.attemptFn,
			Cache:    s.cacheRepo,
			Listener: l,
		}
		return controller.Run(egCtx)
	})

	go func() {
		task.setResult(eg.Wait())
	}()

	return task
}

// NowOrSync invokes the listener's successful callback with the cached,
// extrapolated sample and returns no task if the cache is valid;
// otherwise it behaves like SyncWithListener.
func (s *SafeTime) NowOrSync() *Task {
	return s.NowOrSyncWithListener(nil)
}

// NowOrSyncWithListener is NowOrSync with an explicit listener.
func (s *SafeTime) NowOrSyncWithListener(l listener.Set) *Task {
	l = s.resolveListener(l)

	ticks := s.opts.Ticks.Now()
	if s.cacheRepo.HasValidCache(ticks) {
		if ms, ok := s.cacheRepo.Now(ticks); ok {
			l.OnSuccessful(ntp.TimeSample{CorrectedMSAtResponse: ms, ResponseTicks: ticks})
			return nil
		}
	}
	return s.SyncWithListener(l)
}

// Now returns the cached sample extrapolated to the current tick reading,
// or ErrNoValidCache if nothing usable is stored.
func (s *SafeTime) Now() (int64, error) {
	ticks := s.opts.Ticks.Now()
	if !s.cacheRepo.HasValidCache(ticks) {
		return 0, ErrNoValidCache
	}
	ms, ok := s.cacheRepo.Now(ticks)
	if !ok {
		return 0, ErrNoValidCache
	}
	return ms, nil
}

// NowOrElse returns the extrapolated cached time, or the value from
// defaultSupplier when the cache is invalid.
func (s *SafeTime) NowOrElse(defaultSupplier func() int64) int64 {
	if ms, err := s.Now(); err == nil {
		return ms
	}
	return defaultSupplier()
}

// NowOrDefault returns the extrapolated cached time, or the raw
// (untrusted) wall clock when the cache is invalid.
func (s *SafeTime) NowOrDefault() int64 {
	return s.NowOrElse(clock.WallNowMS)
}

// Cancel stops the most recently started sync task. Idempotent; a no-op
// if no task has ever been started.
func (s *SafeTime) Cancel() {
	s.mu.Lock()
	task := s.active
	s.mu.Unlock()
	if task != nil {
		task.Cancel()
	}
}

// GetTime performs a synchronous, uncached single-shot exchange against
// host: transport, then validation, then offset calculation. No caching.
func (s *SafeTime) GetTime(ctx context.Context, host string) (ntp.TimeSample, error) {
	return s.attemptFn(ctx, host)
}
