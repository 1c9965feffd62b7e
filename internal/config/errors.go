// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	mgiterrors "github.com/mgit-io/mgit/internal/errors"
)

func newConfigValidationError(providerName string, cause error) *mgiterrors.StandardError {
	return mgiterrors.NewConfigurationError("invalid provider config", cause).
		WithContext("provider_config", providerName)
}

func newUnknownDefaultProviderError(name string) *mgiterrors.StandardError {
	return mgiterrors.NewConfigurationError("default_provider names no configured provider", nil).
		WithContext("default_provider", name)
}
