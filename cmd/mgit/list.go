// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mgit-io/mgit/internal/app"
	"github.com/mgit-io/mgit/internal/resolver"
)

type listFlags struct {
	provider string
	url      string
}

// newListCmd builds `mgit list <query>`, a read-only resolve-and-print over
// C6 for inspecting what a sync would touch.
func newListCmd(appCtx func() *app.AppContext) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "Resolve a query and print the matching repositories without touching the filesystem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := "*/*/*"
			if len(args) == 1 {
				query = args[0]
			}
			return runList(cmd, appCtx(), query, flags)
		},
	}

	cmd.Flags().StringVar(&flags.provider, "provider", "", "restrict to a single configured provider")
	cmd.Flags().StringVar(&flags.url, "url", "", "query only the provider config named after this clone URL's host type (github, azuredevops, bitbucket)")

	return cmd
}

func runList(cmd *cobra.Command, ctx *app.AppContext, query string, flags listFlags) error {
	res := buildResolver(ctx)

	result, err := res.Resolve(cmd.Context(), query, resolver.Options{
		SingleProviderName: flags.provider,
		SingleURL:          flags.url,
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Provider", "Name", "Clone URL", "Default Branch", "Private")

	for _, repo := range result.Repositories {
		if err := table.Append(
			repo.ProviderConfigName(),
			repo.Name,
			repo.CloneURL,
			repo.DefaultBranch,
			fmt.Sprintf("%t", repo.IsPrivate),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("\n%d repositories", len(result.Repositories))
	if result.DuplicatesRemoved > 0 {
		fmt.Printf(" (%d duplicates merged)", result.DuplicatesRemoved)
	}
	fmt.Println()

	for name, ferr := range result.FailedProviders {
		fmt.Fprintf(os.Stderr, "warning: provider %q failed: %v\n", name, ferr)
	}

	return nil
}
