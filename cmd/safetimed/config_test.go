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

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safetimed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hosts:
  - time1.example.com
  - time2.example.com
interval: 30m
max_retry_per_host: 2
cache_path: /var/lib/safetimed/cache.ini
`), 0644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"time1.example.com", "time2.example.com"}, cfg.Hosts)
	require.Equal(t, 30*time.Minute, cfg.Interval)
	require.Equal(t, 2, cfg.MaxRetryPerHost)
	require.Equal(t, "/var/lib/safetimed/cache.ini", cfg.CachePath)

	// defaults fill unset fields
	require.Equal(t, 5*time.Second, cfg.ConnectionTimeout)
	require.Equal(t, int32(100), cfg.RootDelayMax)
	require.Equal(t, 21040, cfg.MonitoringPort)
}

func TestReadConfigRejectsEmptyHosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safetimed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: 1h\n"), 0644))

	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigValidateInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts = []string{"a"}
	cfg.Interval = 0
	require.Error(t, cfg.Validate())
}
