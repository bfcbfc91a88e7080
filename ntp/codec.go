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

// Package ntp implements the client-mode (mode 3 request / mode 4
// response) NTP wire protocol: building requests, parsing responses, and
// exchanging them with a remote server over UDP. It does no validation of
// response sanity beyond structural decoding; see package validator for
// that.
package ntp

import "time"

// ntpUnixEpochDeltaSec is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpUnixEpochDeltaSec = 2208988800

// ParsedNTP is the typed, derived form of a decoded NTP response.
type ParsedNTP struct {
	LI             uint8
	VN             uint8
	Mode           uint8
	Stratum        uint8
	Poll           int8
	Precision      int8
	RootDelay      int32  // raw RFC-1305 s15.16 fixed-point integer (not seconds)
	RootDispersion uint32 // raw RFC-1305 u16.16 fixed-point integer (not seconds)
	RefID          uint32

	ReferenceMS int64
	OriginateMS int64
	ReceiveMS   int64
	TransmitMS  int64
}

// KissCode decodes RefID as an ASCII kiss-of-death code when Stratum is 0.
// It returns "" when the bytes aren't printable or Stratum isn't 0; it is
// purely a diagnostic aid and has no bearing on validation.
func (p *ParsedNTP) KissCode() string {
	if p.Stratum != 0 {
		return ""
	}
	b := [4]byte{byte(p.RefID >> 24), byte(p.RefID >> 16), byte(p.RefID >> 8), byte(p.RefID)}
	for _, ch := range b {
		if ch < 32 || ch > 126 {
			return ""
		}
	}
	return string(b[:])
}

// Parse decodes a raw UDP response body into a ParsedNTP. It rejects any
// payload shorter than PacketSizeBytes with ErrMalformedResponse.
func Parse(raw []byte) (*ParsedNTP, error) {
	pkt, err := BytesToPacket(raw)
	if err != nil {
		return nil, err
	}
	return &ParsedNTP{
		LI:             pkt.li(),
		VN:             pkt.vn(),
		Mode:           pkt.mode(),
		Stratum:        pkt.Stratum,
		Poll:           pkt.Poll,
		Precision:      pkt.Precision,
		RootDelay:      int32(pkt.RootDelay),
		RootDispersion: pkt.RootDispersion,
		RefID:          pkt.ReferenceID,
		ReferenceMS:    ntp64ToUnixMS(pkt.RefTimeSec, pkt.RefTimeFrac),
		OriginateMS:    ntp64ToUnixMS(pkt.OrigTimeSec, pkt.OrigTimeFrac),
		ReceiveMS:      ntp64ToUnixMS(pkt.RxTimeSec, pkt.RxTimeFrac),
		TransmitMS:     ntp64ToUnixMS(pkt.TxTimeSec, pkt.TxTimeFrac),
	}, nil
}

// ntp64ToUnixMS converts an NTP 64-bit (seconds, fraction) timestamp pair
// into milliseconds since the Unix epoch. An all-zero timestamp means
// "unset" and converts to 0 rather than the (negative) 1970 epoch delta.
func ntp64ToUnixMS(seconds, fraction uint32) int64 {
	if seconds == 0 && fraction == 0 {
		return 0
	}
	return (int64(seconds)-ntpUnixEpochDeltaSec)*1000 + (int64(fraction)*1000)>>32
}

// unixMSToNTP64 converts milliseconds since the Unix epoch into an NTP
// 64-bit (seconds, fraction) timestamp pair.
func unixMSToNTP64(ms int64) (seconds, fraction uint32) {
	wholeSec := ms / 1000
	remainderMS := ms % 1000
	seconds = uint32(wholeSec + ntpUnixEpochDeltaSec)
	fraction = uint32((uint64(remainderMS) << 32) / 1000)
	return seconds, fraction
}

// WallTimeToNTP64 is a convenience wrapper around unixMSToNTP64 for
// callers that have a time.Time rather than a millisecond timestamp.
func WallTimeToNTP64(t time.Time) (seconds, fraction uint32) {
	return unixMSToNTP64(t.UnixMilli())
}

// TimeSample is a validated (offset, corrected-wall-ms-at-reception,
// tick-reading-at-reception) triple produced by a successful NTP
// exchange, or loaded back from a persisted cache (in which case Raw is
// nil).
type TimeSample struct {
	OffsetMS              int64
	CorrectedMSAtResponse int64
	ResponseTicks         int64
	Raw                   *ParsedNTP
}
