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

package cache

import (
	"sync"

	"github.com/facebook/safetime/ntp"
)

// Repository wraps an injected Store and decides cache validity relative to
// the current tick reading. It serializes all reads and writes so
// concurrent callers never observe a torn record.
type Repository struct {
	mu    sync.Mutex
	store Store
}

// NewRepository returns a Repository backed by store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Set stores sample unconditionally, overwriting any prior content.
func (r *Repository) Set(sample ntp.TimeSample) error {
	rec := ToRecord(sample)
	b, err := rec.Marshal()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Save(b)
	return nil
}

// HasValidCache reports whether a usable sample is stored. A store whose
// recorded response_ticks is greater than currentTicks indicates a reboot
// reset the tick counter since the sample was written; in that case the
// cache is corrupt, is cleared, and false is returned.
func (r *Repository) HasValidCache(currentTicks int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, ok := r.store.Load()
	if !ok {
		return false
	}

	rec, err := Unmarshal(payload)
	if err != nil {
		r.store.Clear()
		return false
	}

	if rec.ResponseTimestamp > currentTicks {
		r.store.Clear()
		return false
	}

	return true
}

// Now returns the cached sample extrapolated to currentTicks. The caller
// must have already confirmed HasValidCache(currentTicks) is true; calling
// Now on an empty or invalid cache returns (0, false).
func (r *Repository) Now(currentTicks int64) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, ok := r.store.Load()
	if !ok {
		return 0, false
	}

	rec, err := Unmarshal(payload)
	if err != nil {
		return 0, false
	}

	if rec.ResponseTimestamp > currentTicks {
		return 0, false
	}

	return rec.Timestamp + (currentTicks - rec.ResponseTimestamp), true
}

// Clear erases the stored sample.
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Clear()
}
