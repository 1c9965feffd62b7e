// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package config implements mgit's layered configuration: a YAML file
// overlaid with environment variables (via viper) and validated with
// struct tags (via go-playground/validator).
package config

import "github.com/go-playground/validator/v10"

// ProviderConfig is a named credential bundle for one hosting account
// (spec GLOSSARY: "Provider config"). Grounded on the shape of the
// teacher's pkg/git/provider.ProviderConfig, trimmed to the fields mgit's
// three provider adapters actually need, plus Workspace for Bitbucket.
type ProviderConfig struct {
	Name      string `yaml:"-" validate:"required"`
	Type      string `yaml:"type" validate:"required,oneof=github azuredevops bitbucket"`
	BaseURL   string `yaml:"url" validate:"required,url"`
	Username  string `yaml:"user"`
	Token     string `yaml:"token" validate:"required"`
	Workspace string `yaml:"workspace"`
}

// LoggingConfig controls the optional rotating JSON file sink.
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// GlobalConfig is mgit's fully decoded configuration file.
type GlobalConfig struct {
	DefaultProvider    string                     `yaml:"default_provider"`
	DefaultConcurrency int                        `yaml:"default_concurrency"`
	LogLevel           string                     `yaml:"log_level"`
	Logging            LoggingConfig              `yaml:"logging"`
	Providers          map[string]*ProviderConfig `yaml:"providers"`
}

// DefaultGlobalConfig returns a minimal, valid configuration suitable for
// tests and for bootstrapping before a config file is loaded.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DefaultConcurrency: 4,
		LogLevel:           "info",
		Providers:          map[string]*ProviderConfig{},
	}
}

var validate = validator.New()

// Validate checks every provider config's struct tags and that
// DefaultProvider, if set, names a configured provider.
func (c *GlobalConfig) Validate() error {
	for name, pc := range c.Providers {
		pc.Name = name
		if err := validate.Struct(pc); err != nil {
			return newConfigValidationError(name, err)
		}
	}
	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			return newUnknownDefaultProviderError(c.DefaultProvider)
		}
	}
	return nil
}
