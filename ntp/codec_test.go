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

package ntp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRejectsShortPayload(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseDerivesFields(t *testing.T) {
	b, err := ntpResponse.Bytes()
	require.NoError(t, err)

	got, err := Parse(b)
	require.NoError(t, err)

	require.Equal(t, uint8(0), got.LI)
	require.Equal(t, uint8(4), got.VN)
	require.Equal(t, uint8(4), got.Mode)
	require.Equal(t, uint8(1), got.Stratum)
	require.Equal(t, int32(0), got.RootDelay)
	require.Equal(t, uint32(10), got.RootDispersion)
	require.NotZero(t, got.TransmitMS)
}

func TestKissCodeOnlyWhenStratumZero(t *testing.T) {
	p := &ParsedNTP{Stratum: 1, RefID: 0x44454e59}
	require.Equal(t, "", p.KissCode())

	p.Stratum = 0
	require.Equal(t, "DENY", p.KissCode())
}

func TestKissCodeEmptyWhenNotPrintable(t *testing.T) {
	p := &ParsedNTP{Stratum: 0, RefID: 0xFFFFFFFF}
	require.Equal(t, "", p.KissCode())
}

func TestNTP64RoundTripThroughWallClock(t *testing.T) {
	// Both conversions round down, so a round trip may come back up to
	// 1ms short; hence the delta of 1.
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	wantMS := now.UnixMilli()

	sec, frac := unixMSToNTP64(wantMS)
	gotMS := ntp64ToUnixMS(sec, frac)

	require.InDelta(t, wantMS, gotMS, 1)
}

func TestNTP64ZeroTimestampIsUnset(t *testing.T) {
	require.Equal(t, int64(0), ntp64ToUnixMS(0, 0))
}

func TestWallTimeToNTP64MatchesUnixMSToNTP64(t *testing.T) {
	now := time.Now()
	wantSec, wantFrac := unixMSToNTP64(now.UnixMilli())
	gotSec, gotFrac := WallTimeToNTP64(now)

	require.Equal(t, wantSec, gotSec)
	require.Equal(t, wantFrac, gotFrac)
}
