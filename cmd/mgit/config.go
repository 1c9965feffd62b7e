// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgit-io/mgit/internal/app"
)

func newConfigCmd(appCtx func() *app.AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate mgit's configuration file",
	}

	cmd.AddCommand(newConfigValidateCmd(appCtx))
	cmd.AddCommand(newConfigProvidersCmd(appCtx))
	return cmd
}

func newConfigValidateCmd(appCtx func() *app.AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the loaded configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			// PersistentPreRunE already loaded and validated the config;
			// reaching here means it is valid.
			fmt.Println("configuration is valid")
			return nil
		},
	}
}

func newConfigProvidersCmd(appCtx func() *app.AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured provider names and types",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := appCtx()
			for _, name := range ctx.Config.ListProviderNames() {
				pc, _ := ctx.Config.GetProviderConfig(name)
				fmt.Printf("%-20s %s\n", name, pc.Type)
			}
			if ctx.Config.GetDefaultProviderName() != "" {
				fmt.Printf("\ndefault: %s\n", ctx.Config.GetDefaultProviderName())
			}
			return nil
		},
	}
}
