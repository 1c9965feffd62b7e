// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package app provides application bootstrapping: the explicit dependency
// context threaded through the CLI, and graceful-shutdown signal handling.
// It deliberately carries no package-level singleton — every dependency is
// constructed once in main and passed down.
package app

import (
	"github.com/mgit-io/mgit/internal/config"
	"github.com/mgit-io/mgit/internal/logger"
)

// AppContext holds application-wide dependencies, built once at startup and
// passed explicitly to every command.
type AppContext struct {
	Logger *logger.Logger
	Config *config.Store
}
