// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config holds the tool's settings. The YAML file is optional; every
// field has a usable default and flags override the file.
type config struct {
	// CacheDir is the root of the on-disk metadata cache.
	CacheDir string `yaml:"cache_dir"`
}

// loadConfig reads the YAML config at path, or returns defaults when
// path is empty. A named file that does not exist is an error.
func loadConfig(path string) (*config, error) {
	result := &config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, result); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if result.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving default cache directory: %w", err)
		}
		result.CacheDir = filepath.Join(base, "anvil", "metacache")
	}
	return result, nil
}
