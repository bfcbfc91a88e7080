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

// Package stats tracks the running distribution of validated offsets
// across syncs, independent of any single cached sample.
package stats

import (
	"sync"

	"github.com/eclesh/welford"
)

// OffsetStats accumulates mean/variance/stddev over every offset a sync has
// ever produced, for diagnostics and alerting. It is safe for concurrent
// use.
type OffsetStats struct {
	mu sync.Mutex
	w  *welford.Stats
}

// NewOffsetStats returns an empty OffsetStats.
func NewOffsetStats() *OffsetStats {
	return &OffsetStats{w: welford.New()}
}

// Add records one more offset observation, in milliseconds.
func (s *OffsetStats) Add(offsetMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Add(float64(offsetMS))
}

// Count returns the number of observations recorded so far.
func (s *OffsetStats) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.w.Count())
}

// Mean returns the running mean offset in milliseconds. Zero when no
// observations have been recorded.
func (s *OffsetStats) Mean() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Mean()
}

// Stddev returns the running standard deviation of the offset in
// milliseconds.
func (s *OffsetStats) Stddev() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Stddev()
}
