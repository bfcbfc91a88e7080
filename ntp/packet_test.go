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

	"github.com/stretchr/testify/require"
)

var (
	// Packet response as seen from an ntpdate run, same fixture values
	// used across the NTP client test corpus.
	ntpResponse = &Packet{
		Settings:       36,
		Stratum:        1,
		Poll:           3,
		Precision:      -32,
		RootDelay:      0,
		RootDispersion: 10,
		ReferenceID:    1178738720,
		RefTimeSec:     3794209800,
		RefTimeFrac:    0,
		OrigTimeSec:    3794210679,
		OrigTimeFrac:   2718216404,
		RxTimeSec:      3794210679,
		RxTimeFrac:     2718375472,
		TxTimeSec:      3794210679,
		TxTimeFrac:     2719753478,
	}
	ntpResponseBytes = []byte{36, 1, 3, 224, 0, 0, 0, 0, 0, 0, 0, 10, 70, 66, 32, 32, 226, 39, 12, 8, 0, 0, 0, 0, 226, 39, 15, 119, 162, 4, 176, 212, 226, 39, 15, 119, 162, 7, 30, 48, 226, 39, 15, 119, 162, 28, 37, 6}
)

func TestPacketBytesRoundTrip(t *testing.T) {
	b, err := ntpResponse.Bytes()
	require.NoError(t, err)
	require.Equal(t, ntpResponseBytes, b)

	got, err := BytesToPacket(b)
	require.NoError(t, err)
	require.Equal(t, ntpResponse, got)
}

func TestBytesToPacketTooShort(t *testing.T) {
	_, err := BytesToPacket([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPacketFields(t *testing.T) {
	require.Equal(t, uint8(0), ntpResponse.li())
	require.Equal(t, uint8(4), ntpResponse.vn())
	require.Equal(t, uint8(4), ntpResponse.mode())
}

func TestNewRequestPacketIsModeClient(t *testing.T) {
	p := NewRequestPacket(1_000_000)
	require.Equal(t, uint8(3), p.mode())
	require.Equal(t, uint8(3), p.vn())
	require.Equal(t, uint8(0), p.li())
	require.NotZero(t, p.TxTimeSec)
}

func TestRequestSize(t *testing.T) {
	b, err := NewRequestPacket(0).Bytes()
	require.NoError(t, err)
	require.Len(t, b, PacketSizeBytes)
}
