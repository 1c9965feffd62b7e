// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mgit-io/mgit/internal/app"
)

// version is set by ldflags during release builds.
var version = "dev"

func main() {
	runner := app.NewRunner(version)

	if err := runner.Run(func(ctx context.Context) error {
		return newRootCmd(runner.Version()).ExecuteContext(ctx)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
