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
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/safetime/ntp"
)

type recording struct {
	NoOp
	successful []ntp.TimeSample
	failed     []error
}

func (r *recording) OnSuccessful(sample ntp.TimeSample) {
	r.successful = append(r.successful, sample)
}

func (r *recording) OnFailed(err error) {
	r.failed = append(r.failed, err)
}

func TestNoOpSatisfiesSet(t *testing.T) {
	var s Set = NoOp{}
	s.OnSuccessful(ntp.TimeSample{})
	s.OnFailed(errors.New("boom"))
}

func TestEmbeddingNoOpOverridesOnlyChosenCallbacks(t *testing.T) {
	r := &recording{}
	var s Set = r

	s.OnSuccessful(ntp.TimeSample{OffsetMS: 7})
	s.OnFailed(errors.New("fail"))
	s.NextRetryLoopIn(1, 0) // inherited no-op, must not panic

	require.Len(t, r.successful, 1)
	require.Equal(t, int64(7), r.successful[0].OffsetMS)
	require.Len(t, r.failed, 1)
}

func TestJSONListenerHandlerReportsCounters(t *testing.T) {
	l := NewJSONListener()
	l.OnSuccessful(ntp.TimeSample{OffsetMS: 42})
	l.OnNTPResponseFailed("host", 0, 0, errors.New("x"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	l.Handler().ServeHTTP(rec, req)

	var got map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, int64(1), got["syncs_succeeded"])
	require.Equal(t, int64(1), got["responses_fail"])
	require.Equal(t, int64(42), got["last_offset_ms"])
}

func TestPrometheusListenerRegistersCollectors(t *testing.T) {
	p := NewPrometheusListener()
	p.OnSuccessful(ntp.TimeSample{OffsetMS: 10})
	p.OnNTPResponseSuccessful(ntp.TimeSample{}, "host", 0, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	p.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "safetime_syncs_succeeded_total")
}
