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

package offset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/safetime/ntp"
)

func TestCalculateHappyPathScenario(t *testing.T) {
	p := &ntp.ParsedNTP{
		OriginateMS: 1_000_000,
		ReceiveMS:   1_000_050,
		TransmitMS:  1_000_060,
	}
	c := New()
	sample := c.Calculate(p, 1_000_020, 0, 0)

	require.Equal(t, int64(45), sample.OffsetMS)
	require.Equal(t, int64(1_000_065), sample.CorrectedMSAtResponse)
	require.Same(t, p, sample.Raw)
}

func TestCalculateAgreementYieldsZeroOffset(t *testing.T) {
	p := &ntp.ParsedNTP{
		OriginateMS: 5_000,
		ReceiveMS:   5_000,
		TransmitMS:  5_100,
	}
	c := New()
	sample := c.Calculate(p, 5_100, 0, 0)

	require.Equal(t, int64(0), sample.OffsetMS)
	require.Equal(t, int64(5_100), sample.CorrectedMSAtResponse)
}

func TestCalculateUsesTickDeltaForT3(t *testing.T) {
	p := &ntp.ParsedNTP{
		OriginateMS: 0,
		ReceiveMS:   0,
		TransmitMS:  0,
	}
	c := New()
	// t3 = reqWallMS + (respTicks - reqTicks) = 1000 + (20-10) = 1010.
	sample := c.Calculate(p, 1000, 10, 20)

	// offset = (0 + (0-1010))/2
	require.Equal(t, int64(-505), sample.OffsetMS)
	require.Equal(t, int64(505), sample.CorrectedMSAtResponse)
}
