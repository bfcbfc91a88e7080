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
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/safetime/ntp"
)

// jsonCounters holds the atomic state behind a JSONListener.
type jsonCounters struct {
	syncsSucceeded int64
	syncsFailed    int64
	responsesOK    int64
	responsesFail  int64
	retryLoops     int64
	lastOffsetMS   int64
}

func (c *jsonCounters) toMap() map[string]int64 {
	return map[string]int64{
		"syncs_succeeded": atomic.LoadInt64(&c.syncsSucceeded),
		"syncs_failed":    atomic.LoadInt64(&c.syncsFailed),
		"responses_ok":    atomic.LoadInt64(&c.responsesOK),
		"responses_fail":  atomic.LoadInt64(&c.responsesFail),
		"retry_loops":     atomic.LoadInt64(&c.retryLoops),
		"last_offset_ms":  atomic.LoadInt64(&c.lastOffsetMS),
	}
}

// JSONListener reports sync progress via atomically-updated counters,
// servable over HTTP as a JSON document.
type JSONListener struct {
	jsonCounters
}

// NewJSONListener returns a JSONListener with all counters at zero.
func NewJSONListener() *JSONListener {
	return &JSONListener{}
}

// Handler returns an http.Handler that serves the current counter snapshot
// as JSON.
func (s *JSONListener) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		js, err := json.Marshal(s.toMap())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(js); err != nil {
			log.Errorf("safetime: failed to reply to stats request: %v", err)
		}
	})
}

func (s *JSONListener) OnSuccessful(sample ntp.TimeSample) {
	atomic.AddInt64(&s.syncsSucceeded, 1)
	atomic.StoreInt64(&s.lastOffsetMS, sample.OffsetMS)
}

func (s *JSONListener) OnFailed(error) {
	atomic.AddInt64(&s.syncsFailed, 1)
}

func (s *JSONListener) OnNTPResponseSuccessful(_ ntp.TimeSample, _ string, _, _ int) {
	atomic.AddInt64(&s.responsesOK, 1)
}

func (s *JSONListener) OnNTPResponseFailed(_ string, _, _ int, _ error) {
	atomic.AddInt64(&s.responsesFail, 1)
}

func (s *JSONListener) NextRetryLoopIn(_ int, _ time.Duration) {
	atomic.AddInt64(&s.retryLoops, 1)
}

var _ Set = (*JSONListener)(nil)
