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
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/facebook/safetime/clock"
)

// DefaultPort is the standard NTP UDP port.
const DefaultPort = 123

// Exchange is the raw result of a single request/response round trip: the
// response payload plus the local tick readings taken immediately before
// the request was sent and immediately after the response arrived.
type Exchange struct {
	Response      []byte
	RequestTicks  int64
	ResponseTicks int64
	RequestWallMS int64
}

// Transport sends one request to one host over UDP with a bounded
// timeout. It does not retry and does not validate the response; see
// package retry for host rotation and package validator for sanity
// checks.
type Transport struct {
	// ConnectionTimeout is the read/write deadline for the round trip,
	// set once the socket is dialed; name resolution and the dial are not
	// bounded by it. Defaults to 5s when zero.
	ConnectionTimeout time.Duration

	// Port is the remote UDP port. Defaults to DefaultPort when zero.
	Port int

	// TTL sets the outgoing IP TTL on the UDP socket when non-zero.
	TTL int

	// Ticks supplies local tick readings for the request/response pair.
	Ticks clock.TickSource

	// Dialer overrides the default UDP dialer, primarily for tests and
	// for sandboxed runtimes that want to enforce their own network
	// policy before a socket is opened.
	Dialer func(network, address string) (net.Conn, error)
}

// NewTransport returns a Transport with default timeout and port.
func NewTransport(ticks clock.TickSource) *Transport {
	return &Transport{
		ConnectionTimeout: 5 * time.Second,
		Port:              DefaultPort,
		Ticks:             ticks,
		Dialer:            net.Dial,
	}
}

// Fetch resolves host, opens a UDP socket, exchanges a single mode-3
// request for a response, and returns the raw bytes plus tick readings.
func (t *Transport) Fetch(host string) (*Exchange, error) {
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	resolved, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %q: %v", ErrUnresolvedHost, host, err)
	}

	dial := t.Dialer
	if dial == nil {
		dial = net.Dial
	}
	conn, err := dial("udp", resolved.String())
	if err != nil {
		return nil, classifyDialErr(err)
	}
	defer conn.Close()

	if t.TTL > 0 {
		if udpConn, ok := conn.(*net.UDPConn); ok {
			if err := ipv4.NewConn(udpConn).SetTTL(t.TTL); err != nil {
				return nil, fmt.Errorf("%w: setting ttl: %v", ErrIO, err)
			}
		}
	}

	timeout := t.ConnectionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: setting deadline: %v", ErrIO, err)
	}

	requestWallMS := clock.WallNowMS()
	requestTicks := t.Ticks.Now()

	reqBytes, err := NewRequestPacket(requestWallMS).Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrIO, err)
	}
	if _, err := conn.Write(reqBytes); err != nil {
		return nil, classifyIOErr(err)
	}

	buf := make([]byte, PacketSizeBytes)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, classifyIOErr(err)
	}
	responseTicks := t.Ticks.Now()

	return &Exchange{
		Response:      buf[:n],
		RequestTicks:  requestTicks,
		ResponseTicks: responseTicks,
		RequestWallMS: requestWallMS,
	}, nil
}

// classifyDialErr maps a dial failure onto the error taxonomy: a denied
// network syscall becomes ErrSecurity, everything else is ErrIO.
func classifyDialErr(err error) error {
	if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return fmt.Errorf("%w: %v", ErrSecurity, err)
	}
	return fmt.Errorf("%w: dialing: %v", ErrIO, err)
}

// classifyIOErr maps a post-dial socket failure onto the error taxonomy:
// a deadline exceeded becomes ErrTimeout, a denied syscall becomes
// ErrSecurity, everything else is ErrIO.
func classifyIOErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return fmt.Errorf("%w: %v", ErrSecurity, err)
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
