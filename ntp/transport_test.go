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
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facebook/safetime/clock"
)

// startEchoServer replies to every request with a fixed NTP response
// packet and returns the port it's listening on.
func startEchoServer(t *testing.T, response []byte) (port int, stop func()) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 100)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			select {
			case <-done:
				return
			default:
			}
			if err != nil {
				return
			}
			_ = n
			_, _ = conn.WriteToUDP(response, addr)
		}
	}()

	_, portStr, err := net.SplitHostPort(conn.LocalAddr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(portStr)
	require.NoError(t, err)

	return port, func() {
		close(done)
		conn.Close()
	}
}

func TestTransportFetchHappyPath(t *testing.T) {
	respBytes, err := ntpResponse.Bytes()
	require.NoError(t, err)

	port, stop := startEchoServer(t, respBytes)
	defer stop()

	tr := NewTransport(clock.NewMonotonic())
	tr.Port = port
	tr.ConnectionTimeout = time.Second

	ex, err := tr.Fetch("127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, respBytes, ex.Response)
	require.GreaterOrEqual(t, ex.ResponseTicks, ex.RequestTicks)
	require.NotZero(t, ex.RequestWallMS)
}

func TestTransportFetchUnresolvedHost(t *testing.T) {
	tr := NewTransport(clock.NewMonotonic())
	_, err := tr.Fetch("this.host.does.not.resolve.invalid")
	require.ErrorIs(t, err, ErrUnresolvedHost)
}

func TestTransportFetchTimeout(t *testing.T) {
	// Nothing listening on this port; the kernel accepts the connect() for
	// a connected UDP socket, but no response ever arrives. On loopback the
	// kernel usually reports the closed port as a read error (ICMP port
	// unreachable); otherwise the 50ms deadline fires. Either way Fetch
	// fails, which is all this test asserts.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(conn.LocalAddr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	tr := NewTransport(clock.NewMonotonic())
	tr.Port = port
	tr.ConnectionTimeout = 50 * time.Millisecond

	_, err = tr.Fetch("127.0.0.1")
	require.Error(t, err)
}

func TestTransportFetchDefaultsAppliedWhenZero(t *testing.T) {
	respBytes, err := ntpResponse.Bytes()
	require.NoError(t, err)

	port, stop := startEchoServer(t, respBytes)
	defer stop()

	tr := &Transport{Ticks: clock.NewMonotonic()}
	tr.Port = port

	_, err = tr.Fetch("127.0.0.1")
	require.NoError(t, err)
}
