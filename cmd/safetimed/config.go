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
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config carries the daemon settings read from the YAML config file.
type Config struct {
	Hosts                  []string      `yaml:"hosts"`
	Interval               time.Duration `yaml:"interval"`
	ConnectionTimeout      time.Duration `yaml:"connection_timeout"`
	MaxRetryPerHost        int           `yaml:"max_retry_per_host"`
	MaxRetryLoop           int           `yaml:"max_retry_loop"`
	DelayBetweenRetryLoop  time.Duration `yaml:"delay_between_retry_loop"`
	RootDelayMax           int32         `yaml:"root_delay_max"`
	RootDispersionMax      uint32        `yaml:"root_dispersion_max"`
	ServerResponseDelayMax time.Duration `yaml:"server_response_delay_max"`
	CachePath              string        `yaml:"cache_path"`
	MonitoringPort         int           `yaml:"monitoring_port"`
}

// DefaultConfig returns the settings used when the config file leaves a
// field unset.
func DefaultConfig() *Config {
	return &Config{
		Interval:               time.Hour,
		ConnectionTimeout:      5 * time.Second,
		RootDelayMax:           100,
		RootDispersionMax:      100,
		ServerResponseDelayMax: time.Second,
		MonitoringPort:         21040,
	}
}

// ReadConfig parses the daemon config from path, filling unset fields with
// defaults.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config from %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the config the safetime builder can't: the
// daemon needs hosts to poll and a sane polling interval.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("config must list at least one host")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	return nil
}
