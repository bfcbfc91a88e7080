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

// Package cache persists the last validated TimeSample so that now() can
// extrapolate without a fresh network round-trip on every call.
package cache

import (
	"encoding/json"

	"github.com/facebook/safetime/ntp"
)

// Record is the wire form of a cached sample. Field names are fixed for
// interop with previously stored data and must not be renamed.
type Record struct {
	TimeOffset        int64 `json:"time_offset"`
	Timestamp         int64 `json:"timestamp"`
	ResponseTimestamp int64 `json:"response_timestamp"`
}

// ToRecord converts a TimeSample to its persisted form. The Raw field is
// dropped; it is never round-tripped through the cache.
func ToRecord(s ntp.TimeSample) Record {
	return Record{
		TimeOffset:        s.OffsetMS,
		Timestamp:         s.CorrectedMSAtResponse,
		ResponseTimestamp: s.ResponseTicks,
	}
}

// ToTimeSample converts a persisted Record back into a TimeSample. Raw is
// always nil since the original response is not preserved.
func (r Record) ToTimeSample() ntp.TimeSample {
	return ntp.TimeSample{
		OffsetMS:              r.TimeOffset,
		CorrectedMSAtResponse: r.Timestamp,
		ResponseTicks:         r.ResponseTimestamp,
	}
}

// Marshal serializes r to the stable JSON wire form.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes b into a Record. Unknown fields are ignored; missing
// fields default to zero (encoding/json's native behavior already provides
// this). Malformed JSON returns a zero Record and a non-nil error; callers
// treat that as an empty cache, never a fatal condition.
func Unmarshal(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
