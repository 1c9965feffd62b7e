// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgit-io/mgit/internal/app"
	"github.com/mgit-io/mgit/internal/config"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/metrics"
)

// globalFlags holds the root command's persistent flag values, read once in
// PersistentPreRunE to build the shared AppContext.
type globalFlags struct {
	configPath  string
	logLevel    string
	metricsAddr string
}

func newRootCmd(version string) *cobra.Command {
	var flags globalFlags
	var ctx *app.AppContext
	var rec *metrics.Recorder

	cmd := &cobra.Command{
		Use:           "mgit",
		Short:         "Bulk multi-provider git repository sync",
		Long:          "mgit resolves repository queries across GitHub, Azure DevOps, and Bitbucket, then clones or updates them in bulk.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := logger.Level(flags.logLevel)
			if flags.logLevel == "" {
				level = logger.Level(store.Global().LogLevel)
			}
			log := logger.New("mgit", level, logger.FileConfig{
				Enabled:    store.Global().Logging.Enabled,
				Path:       store.Global().Logging.FilePath,
				MaxSizeMB:  store.Global().Logging.MaxSizeMB,
				MaxBackups: store.Global().Logging.MaxBackups,
				MaxAgeDays: store.Global().Logging.MaxAgeDays,
			})

			rec = metrics.New()
			if flags.metricsAddr != "" {
				serveMetrics(log, flags.metricsAddr, rec)
			}

			ctx = &app.AppContext{Logger: log, Config: store}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (default: $XDG_CONFIG_HOME/mgit/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: config's log_level)")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")

	appCtx := func() *app.AppContext { return ctx }
	recorder := func() *metrics.Recorder { return rec }

	cmd.AddCommand(newSyncCmd(appCtx, recorder))
	cmd.AddCommand(newListCmd(appCtx))
	cmd.AddCommand(newCloneAllCmd(appCtx, recorder))
	cmd.AddCommand(newPullAllCmd(appCtx, recorder))
	cmd.AddCommand(newConfigCmd(appCtx))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
