// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/mgit-io/mgit/internal/app"
	"github.com/mgit-io/mgit/internal/engine"
	"github.com/mgit-io/mgit/internal/metrics"
	"github.com/mgit-io/mgit/internal/syncop"
)

type syncFlags struct {
	targetRoot  string
	concurrency int
	force       bool
	dryRun      bool
	flat        bool
	provider    string
	url         string
	yes         bool
}

// newSyncCmd builds `mgit sync <query>`, the primary entry point to C10.
func newSyncCmd(appCtx func() *app.AppContext, rec func() *metrics.Recorder) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync [query] [path]",
		Short: "Resolve and clone/update repositories matching an org/project/repo query",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := "*/*/*"
			if len(args) >= 1 {
				query = args[0]
			}
			runFlags := flags
			if len(args) == 2 {
				runFlags.targetRoot = args[1]
			}
			return runSync(cmd.Context(), appCtx(), rec(), query, runFlags)
		},
	}

	cmd.Flags().StringVarP(&flags.targetRoot, "target", "t", ".", "directory to clone/update repositories under (a [path] argument overrides it)")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "p", 4, "number of repositories to process in parallel")
	cmd.Flags().BoolVar(&flags.force, "force", false, "discard and re-clone any repository with local changes")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the plan without touching the filesystem")
	cmd.Flags().BoolVar(&flags.flat, "flat", false, "lay out all repositories directly under target, resolving name collisions")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "restrict to a single configured provider")
	cmd.Flags().StringVar(&flags.url, "url", "", "query only the provider config named after this clone URL's host type (github, azuredevops, bitbucket)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "skip the force-reclone confirmation prompt")

	return cmd
}

func newCloneAllCmd(appCtx func() *app.AppContext, rec func() *metrics.Recorder) *cobra.Command {
	cmd := newSyncCmd(appCtx, rec)
	cmd.Use = "clone-all [query] [path]"
	cmd.Short = "Deprecated alias for `mgit sync`; runs sync unchanged, pulling existing clean repositories"
	cmd.Hidden = true
	return cmd
}

func newPullAllCmd(appCtx func() *app.AppContext, rec func() *metrics.Recorder) *cobra.Command {
	cmd := newSyncCmd(appCtx, rec)
	cmd.Use = "pull-all [query] [path]"
	cmd.Short = "Deprecated alias for `mgit sync`; runs sync unchanged, pulling existing clean repositories"
	cmd.Hidden = true
	return cmd
}

func runSync(ctx context.Context, appCtx *app.AppContext, rec *metrics.Recorder, query string, flags syncFlags) error {
	orch, err := buildOrchestrator(appCtx)
	if err != nil {
		return err
	}

	opts := syncop.Options{
		Query:               query,
		TargetRoot:          flags.targetRoot,
		Concurrency:         flags.concurrency,
		Force:               flags.force,
		DryRun:              flags.dryRun,
		LayoutFlat:          flags.flat,
		SingleProviderName:  flags.provider,
		SingleURL:           flags.url,
		DefaultProviderName: appCtx.Config.GetDefaultProviderName(),
		Print:               func(line string) { fmt.Println(line) },
		Confirm:             confirmForce(flags.yes),
	}

	summary, err := orch.Run(ctx, opts)
	if err != nil {
		return err
	}

	printOutcomes(summary.Outcomes)
	recordSyncMetrics(rec, summary)

	if summary.ExitCode != 0 {
		return fmt.Errorf("sync completed with failures")
	}
	return nil
}

func confirmForce(skip bool) func([]syncop.PlannedAction) bool {
	return func(planned []syncop.PlannedAction) bool {
		if skip {
			return true
		}
		n := 0
		for _, p := range planned {
			if p.Action == syncop.ActionForceReclone {
				n++
			}
		}
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("force re-clone will discard local changes in %d repositories, continue", n),
			IsConfirm: true,
		}
		_, err := prompt.Run()
		return err == nil
	}
}

func printOutcomes(outcomes []engine.OperationOutcome) {
	for _, o := range outcomes {
		switch o.Outcome {
		case engine.OutcomeSuccess:
			color.Green("  %-10s %s", o.Outcome, o.Path)
		case engine.OutcomeFailed:
			color.Red("  %-10s %s: %v", o.Outcome, o.Path, o.Err)
		default:
			color.Yellow("  %-10s %s (%s)", o.Outcome, o.Path, o.Reason)
		}
	}
}

func recordSyncMetrics(rec *metrics.Recorder, summary *syncop.Summary) {
	rec.ObserveResolvedRepositories(len(summary.Planned))
	for _, o := range summary.Outcomes {
		rec.ObserveEngineOutcome(string(o.Outcome))
	}
}
