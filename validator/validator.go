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

package validator

import (
	"github.com/facebook/safetime/clock"
	"github.com/facebook/safetime/ntp"
)

func defaultWallNow() int64 {
	return clock.WallNowMS()
}

// freshnessWindowMS bounds how long ago the request's origin timestamp may
// have been stamped; guards against a suspended goroutine resuming after a
// long gap and trusting a stale exchange.
const freshnessWindowMS = 10_000

// Options carries the thresholds a response is checked against. RootDelayMax
// and RootDispersionMax compare against the packet's raw RFC-1305
// fixed-point integers, not seconds.
type Options struct {
	RootDelayMax             int32
	RootDispersionMax        uint32
	ServerResponseDelayMaxMS int64
}

// Validator enforces the seven defensive rules of section 4.3 against a
// parsed response and its associated tick pair.
type Validator struct {
	Options Options

	// WallNow supplies the current wall-clock reading in ms, used for the
	// freshness check. Defaults to clock.WallNowMS when nil.
	WallNow func() int64
}

// New returns a Validator configured with opts.
func New(opts Options) *Validator {
	return &Validator{Options: opts}
}

// Validate rejects p with an *Error unless all seven rules in section 4.3
// hold. reqWallMS and reqTicks are the local readings taken immediately
// before the request was sent; respTicks is the reading taken immediately
// after the response arrived.
func (v *Validator) Validate(p *ntp.ParsedNTP, reqWallMS, reqTicks, respTicks int64) error {
	if int64(p.RootDelay) > int64(v.Options.RootDelayMax) {
		return &Error{Field: FieldRootDelay, Actual: int64(p.RootDelay), Expected: int64(v.Options.RootDelayMax)}
	}
	if int64(p.RootDispersion) > int64(v.Options.RootDispersionMax) {
		return &Error{Field: FieldRootDispersion, Actual: int64(p.RootDispersion), Expected: int64(v.Options.RootDispersionMax)}
	}
	if p.Mode != 4 && p.Mode != 5 {
		return &Error{Field: FieldMode, Actual: int64(p.Mode), Expected: 4}
	}
	if p.Stratum < 1 || p.Stratum > 15 {
		return &Error{Field: FieldStratum, Actual: int64(p.Stratum), Expected: 15}
	}
	if p.LI == 3 {
		return &Error{Field: FieldLeapIndicator, Actual: int64(p.LI), Expected: 2}
	}

	t0 := p.OriginateMS
	t1 := p.ReceiveMS
	t2 := p.TransmitMS
	t3 := reqWallMS + (respTicks - reqTicks)

	delay := (t3 - t0) - (t2 - t1)
	if delay < 0 {
		delay = -delay
	}
	if delay >= v.Options.ServerResponseDelayMaxMS {
		return &Error{Field: FieldServerResponseDelay, Actual: delay, Expected: v.Options.ServerResponseDelayMaxMS}
	}

	wallNow := v.WallNow
	if wallNow == nil {
		wallNow = defaultWallNow
	}
	age := t0 - wallNow()
	if age < 0 {
		age = -age
	}
	if age >= freshnessWindowMS {
		return &Error{Field: FieldRequestAge, Actual: age, Expected: freshnessWindowMS}
	}

	return nil
}
