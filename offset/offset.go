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

// Package offset applies the standard NTP four-timestamp clock-offset
// formula to a validated response.
package offset

import "github.com/facebook/safetime/ntp"

// Calculator derives a TimeSample from a parsed, validated response and the
// local tick pair recorded around the exchange.
type Calculator struct{}

// New returns a Calculator. It carries no state; offset arithmetic depends
// only on its arguments.
func New() *Calculator {
	return &Calculator{}
}

// Calculate computes offset_ms = ((t1-t0)+(t2-t3))/2 and
// corrected_ms_at_response = t3+offset_ms, where t0 is the request's
// originate timestamp, t1/t2 are the server's receive/transmit timestamps,
// and t3 is the local wall-clock reading at reception derived from
// reqWallMS and the elapsed tick delta.
func (c *Calculator) Calculate(p *ntp.ParsedNTP, reqWallMS, reqTicks, respTicks int64) ntp.TimeSample {
	t0 := p.OriginateMS
	t1 := p.ReceiveMS
	t2 := p.TransmitMS
	t3 := reqWallMS + (respTicks - reqTicks)

	offsetMS := ((t1 - t0) + (t2 - t3)) / 2
	correctedMS := t3 + offsetMS

	return ntp.TimeSample{
		OffsetMS:              offsetMS,
		CorrectedMSAtResponse: correctedMS,
		ResponseTicks:         respTicks,
		Raw:                   p,
	}
}
