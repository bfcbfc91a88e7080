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
	"bytes"
	"encoding/binary"
	"fmt"
)

// PacketSizeBytes is the size of an NTPv3/NTPv4 client/server packet, with
// no extension fields and no MAC.
const PacketSizeBytes = 48

// Packet is the wire representation of an NTP header.
/*
http://seriot.ch/ntp.php
https://tools.ietf.org/html/rfc5905
   0                   1                   2                   3
   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
0 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |LI | VN  |Mode |    Stratum     |     Poll      |  Precision   |
4 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Delay                            |
8 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Dispersion                       |
12+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                          Reference ID                         |
16+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                     Reference Timestamp (64)                  |
24+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                       Origin Timestamp (64)                   |
32+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Receive Timestamp (64)                   |
40+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                     Transmit Timestamp (64)                   |
48+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

Settings byte, client request example:
00 011 011 (0x1B)
|  |   +-- client mode (3)
|  + ----- version (3)
+ -------- leap indicator, 0 no warning
*/
type Packet struct {
	Settings       uint8 // leap indicator (2) + version (3) + mode (3)
	Stratum        uint8
	Poll           int8
	Precision      int8
	RootDelay      uint32
	RootDispersion uint32
	ReferenceID    uint32
	RefTimeSec     uint32
	RefTimeFrac    uint32
	OrigTimeSec    uint32
	OrigTimeFrac   uint32
	RxTimeSec      uint32
	RxTimeFrac     uint32
	TxTimeSec      uint32
	TxTimeFrac     uint32
}

const (
	modeClient = 3

	settingsLIShift  = 6
	settingsVNShift  = 3
	settingsVNMask   = 0x7
	settingsModeMask = 0x7
)

// li returns the leap indicator field (0..3).
func (p *Packet) li() uint8 {
	return p.Settings >> settingsLIShift
}

// vn returns the protocol version field (0..7).
func (p *Packet) vn() uint8 {
	return (p.Settings >> settingsVNShift) & settingsVNMask
}

// mode returns the mode field (0..7).
func (p *Packet) mode() uint8 {
	return p.Settings & settingsModeMask
}

// Bytes converts Packet to its 48-byte wire form.
func (p *Packet) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, p); err != nil {
		return nil, fmt.Errorf("encoding ntp packet: %w", err)
	}
	return buf.Bytes(), nil
}

// BytesToPacket decodes a 48-byte wire form into a Packet.
func BytesToPacket(b []byte) (*Packet, error) {
	if len(b) < PacketSizeBytes {
		return &Packet{}, fmt.Errorf("%w: got %d bytes, want at least %d", ErrMalformedResponse, len(b), PacketSizeBytes)
	}
	packet := &Packet{}
	reader := bytes.NewReader(b[:PacketSizeBytes])
	if err := binary.Read(reader, binary.BigEndian, packet); err != nil {
		return &Packet{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return packet, nil
}

// NewRequestPacket builds a mode-3 client request. The transmit timestamp
// is filled with the local wall-clock time converted to NTP64 format,
// which helps correlate requests and responses but is not required for
// correctness: the transport pairs request/response by the UDP exchange
// itself, not by echoing the timestamp.
func NewRequestPacket(requestWallMS int64) *Packet {
	sec, frac := unixMSToNTP64(requestWallMS)
	return &Packet{
		Settings:   uint8(3)<<settingsVNShift | modeClient,
		TxTimeSec:  sec,
		TxTimeFrac: frac,
	}
}
