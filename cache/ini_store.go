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

package cache

import (
	"os"

	"github.com/go-ini/ini"
)

// iniSection and iniKey name the single section/key this store uses to
// hold the JSON cache payload inside the on-disk ini file.
const (
	iniSection = "safetime"
	iniKey     = "record"
)

// INIStore is a Store that persists the cache record as a single key in an
// ini-format file on disk, for demo deployments that want a human-readable
// cache file rather than an opaque key/value backend.
type INIStore struct {
	path string
}

// NewINIStore returns a Store backed by the ini file at path. The file is
// created on first Save if it does not already exist.
func NewINIStore(path string) *INIStore {
	return &INIStore{path: path}
}

func (s *INIStore) Load() ([]byte, bool) {
	cfg, err := ini.Load(s.path)
	if err != nil {
		return nil, false
	}
	val := cfg.Section(iniSection).Key(iniKey).String()
	if val == "" {
		return nil, false
	}
	return []byte(val), true
}

func (s *INIStore) Save(payload []byte) {
	cfg := ini.Empty()
	if existing, err := ini.Load(s.path); err == nil {
		cfg = existing
	}
	cfg.Section(iniSection).Key(iniKey).SetValue(string(payload))
	_ = cfg.SaveTo(s.path)
}

func (s *INIStore) Clear() {
	_ = os.Remove(s.path)
}
