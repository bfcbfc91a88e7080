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

package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facebook/safetime/listener"
	"github.com/facebook/safetime/ntp"
)

type recordingListener struct {
	listener.NoOp
	mu               sync.Mutex
	successful       []ntp.TimeSample
	failed           []error
	responsesOK      int
	responseFailHost []string
	cycleDelays      []int
}

func (r *recordingListener) OnSuccessful(sample ntp.TimeSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successful = append(r.successful, sample)
}

func (r *recordingListener) OnFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func (r *recordingListener) OnNTPResponseSuccessful(ntp.TimeSample, string, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responsesOK++
}

func (r *recordingListener) OnNTPResponseFailed(host string, _ int, _ int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responseFailHost = append(r.responseFailHost, host)
}

func (r *recordingListener) NextRetryLoopIn(cycle int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycleDelays = append(r.cycleDelays, cycle)
}

func TestControllerHappyPath(t *testing.T) {
	rl := &recordingListener{}
	want := ntp.TimeSample{OffsetMS: 45, CorrectedMSAtResponse: 1_000_065}

	c := &Controller{
		Options:  Options{Hosts: []string{"a"}},
		Listener: rl,
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			return want, nil
		},
	}

	err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rl.successful, 1)
	require.Equal(t, want, rl.successful[0])
	require.Equal(t, 1, rl.responsesOK)
}

func TestControllerHostRotation(t *testing.T) {
	rl := &recordingListener{}
	attempted := []string{}

	c := &Controller{
		Options:  Options{Hosts: []string{"a", "b", "c"}},
		Listener: rl,
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			attempted = append(attempted, host)
			if host == "c" {
				return ntp.TimeSample{}, nil
			}
			return ntp.TimeSample{}, errors.New("timeout")
		},
	}

	err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, attempted)
	require.Equal(t, []string{"a", "b"}, rl.responseFailHost)
	require.Len(t, rl.successful, 1)
}

func TestControllerRetryBudgetExhaustion(t *testing.T) {
	rl := &recordingListener{}
	attempts := 0

	c := &Controller{
		Options: Options{
			Hosts:           []string{"a", "b"},
			MaxRetryPerHost: 1,
			MaxRetryLoop:    2,
		},
		Listener: rl,
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			attempts++
			return ntp.TimeSample{}, errors.New("always fails")
		},
	}

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrSyncFailure)

	// N=2 hosts, R=1, L=2 -> N*(R+1)*(L+1) = 12
	require.Equal(t, 12, attempts)
	require.Len(t, rl.responseFailHost, 12)
	require.Len(t, rl.failed, 1)
	require.Empty(t, rl.successful)
}

func TestControllerCycleDelayEvents(t *testing.T) {
	rl := &recordingListener{}

	c := &Controller{
		Options: Options{
			Hosts:                 []string{"a"},
			MaxRetryPerHost:       0,
			MaxRetryLoop:          2,
			DelayBetweenRetryLoop: time.Millisecond,
		},
		Listener: rl,
		sleep: func(ctx context.Context, d time.Duration) error { return nil },
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			return ntp.TimeSample{}, errors.New("fail")
		},
	}

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrSyncFailure)
	require.Equal(t, []int{1, 2}, rl.cycleDelays)
}

func TestControllerCycleDelaySuppressedWhenZero(t *testing.T) {
	rl := &recordingListener{}

	c := &Controller{
		Options: Options{
			Hosts:        []string{"a"},
			MaxRetryLoop: 1,
		},
		Listener: rl,
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			return ntp.TimeSample{}, errors.New("fail")
		},
	}

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrSyncFailure)
	require.Empty(t, rl.cycleDelays)
}

func TestControllerCancellationIsSilent(t *testing.T) {
	rl := &recordingListener{}
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		Options: Options{Hosts: []string{"a"}, MaxRetryLoop: 5},
		Listener: rl,
		Attempt: func(ctx context.Context, host string) (ntp.TimeSample, error) {
			cancel()
			return ntp.TimeSample{}, errors.New("fail")
		},
	}

	err := c.Run(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	require.Empty(t, rl.failed)
	require.Empty(t, rl.successful)
}
