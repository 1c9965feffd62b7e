// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package app

import (
	"github.com/mgit-io/mgit/internal/config"
	"github.com/mgit-io/mgit/internal/logger"
)

// NewTestAppContext returns an AppContext with default config and a
// console-only logger, for use in tests.
func NewTestAppContext() *AppContext {
	return &AppContext{
		Logger: logger.New("test", logger.LevelInfo, logger.FileConfig{}),
		Config: config.NewStoreFromConfig(config.DefaultGlobalConfig()),
	}
}
