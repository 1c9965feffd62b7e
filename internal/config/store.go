// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Store loads and serves mgit's configuration, satisfying the "Config
// store contract" of the specification: list provider names, fetch a
// named provider config, resolve the default provider, and read arbitrary
// global settings.
type Store struct {
	v      *viper.Viper
	global *GlobalConfig
}

// DefaultConfigPath returns the conventional config file location,
// honoring XDG_CONFIG_HOME when set.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mgit", "config.yaml")
}

// Load reads the config file at path (or DefaultConfigPath if path is
// empty), expands ${VAR} references in it from the environment, decodes it
// by its yaml keys, and validates the result. Other MGIT_* environment
// variables are visible only through GetGlobalSetting.
// A missing file is not an error: Load falls back to DefaultGlobalConfig
// so `mgit` is usable with only environment variables set.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MGIT")
	v.AutomaticEnv()

	global := DefaultGlobalConfig()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, newConfigValidationError(path, err)
			}
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, newConfigValidationError(path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), global); err != nil {
			return nil, newConfigValidationError(path, err)
		}
	}

	for name, pc := range global.Providers {
		pc.Name = name
	}

	if err := global.Validate(); err != nil {
		return nil, err
	}

	return &Store{v: v, global: global}, nil
}

// NewStoreFromConfig wraps an already-built, already-valid GlobalConfig
// (used by tests).
func NewStoreFromConfig(cfg *GlobalConfig) *Store {
	return &Store{v: viper.New(), global: cfg}
}

// Global returns the fully decoded configuration.
func (s *Store) Global() *GlobalConfig {
	return s.global
}

// ListProviderNames returns configured provider names in stable, sorted
// order.
func (s *Store) ListProviderNames() []string {
	names := make([]string, 0, len(s.global.Providers))
	for name := range s.global.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProviderConfig returns the named provider config, or false if it does
// not exist.
func (s *Store) GetProviderConfig(name string) (*ProviderConfig, bool) {
	pc, ok := s.global.Providers[name]
	return pc, ok
}

// GetDefaultProviderName returns the configured default provider name, or
// "" if none is set.
func (s *Store) GetDefaultProviderName() string {
	return s.global.DefaultProvider
}

// GetGlobalSetting reads an arbitrary global setting by dotted key,
// falling back to the decoded GlobalConfig's well-known fields first.
func (s *Store) GetGlobalSetting(key string) (string, bool) {
	switch key {
	case "default_provider":
		return s.global.DefaultProvider, s.global.DefaultProvider != ""
	case "log_level":
		return s.global.LogLevel, s.global.LogLevel != ""
	}
	if !s.v.IsSet(key) {
		return "", false
	}
	return fmt.Sprintf("%v", s.v.Get(key)), true
}
