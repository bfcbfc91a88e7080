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

import "errors"

var (
	// ErrMalformedResponse is returned when a response is shorter than
	// PacketSizeBytes or otherwise fails to decode.
	ErrMalformedResponse = errors.New("ntp: malformed response")

	// ErrUnresolvedHost is returned when the configured host could not be
	// resolved to an address.
	ErrUnresolvedHost = errors.New("ntp: unresolved host")

	// ErrTimeout is returned when the round trip exceeded the configured
	// connection timeout.
	ErrTimeout = errors.New("ntp: timeout")

	// ErrIO is returned for any other socket-level failure (dial, write,
	// read, or TTL configuration).
	ErrIO = errors.New("ntp: io error")

	// ErrSecurity is returned when the configured Dialer refuses to open a
	// connection, e.g. because the runtime denies network access.
	ErrSecurity = errors.New("ntp: network access denied")
)
