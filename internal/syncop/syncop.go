// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package syncop implements the sync orchestrator specified as C10: the
// resolve → snapshot → plan → confirm → execute → summarize flow tying C2,
// C6, C8, and C9 together. Grounded on the teacher's cmd/git-synclone/all.go
// top-level command flow, rebuilt around this module's resolver/engine
// split.
package syncop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/engine"
	"github.com/mgit-io/mgit/internal/gitexec"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/pathutil"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/resolver"
)

// Action is the planned treatment for one resolved repository.
type Action string

const (
	ActionClone        Action = "clone"
	ActionPull         Action = "pull"
	ActionForceReclone Action = "force_reclone"
	ActionSkipDirty    Action = "skip_dirty"
	ActionSkipNonGit   Action = "skip_non_git"
)

// LocalRepoState is the on-disk snapshot for one resolved repository,
// gathered before planning.
type LocalRepoState struct {
	Path      string
	Exists    bool
	IsGitRepo bool
	Dirty     bool
	RemoteURL string
}

// PlannedAction pairs a resolved repository with its planned treatment.
type PlannedAction struct {
	Repository provider.Repository
	Path       string
	Action     Action
}

// Options configures one sync run.
type Options struct {
	Query               string
	TargetRoot          string
	Concurrency         int
	Force               bool
	DryRun              bool
	LayoutFlat          bool
	SingleProviderName  string
	SingleURL           string
	DefaultProviderName string

	// Confirm is invoked once, only when Force is set and at least one
	// directory would be removed, to obtain out-of-band user consent.
	// A nil Confirm is treated as "always decline".
	Confirm func(planned []PlannedAction) bool

	// Print, when set, receives human-readable progress/preview lines
	// (the "no repositories found" message, the dry-run preview table,
	// and the final summary). Rendering detail is left to the caller.
	Print func(string)
}

// Summary is the final report of a sync run.
type Summary struct {
	Planned  []PlannedAction
	Outcomes []engine.OperationOutcome
	ExitCode int
}

// Orchestrator ties C6 (resolver), C8 (git executor), and C9 (engine)
// together into the flow spec.md §4.C10 describes.
type Orchestrator struct {
	resolver *resolver.Resolver
	exec     *gitexec.Executor
	engine   *engine.Engine
	log      *logger.Logger
}

// New constructs an Orchestrator.
func New(res *resolver.Resolver, exec *gitexec.Executor, eng *engine.Engine, log *logger.Logger) *Orchestrator {
	return &Orchestrator{resolver: res, exec: exec, engine: eng, log: log}
}

// Run executes the full resolve→analyze→plan→confirm→execute→summarize
// flow and returns the exit code the CLI should use: 0 iff every outcome
// is Success or a benign skip, 1 if any Failed outcome occurred.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	targetRoot, err := normalizeTargetRoot(opts.TargetRoot)
	if err != nil {
		return nil, err
	}

	result, err := o.resolver.Resolve(ctx, opts.Query, resolver.Options{
		SingleProviderName: opts.SingleProviderName,
		SingleURL:          opts.SingleURL,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Repositories) == 0 {
		o.print(opts, "no repositories found")
		return &Summary{ExitCode: 0}, nil
	}

	states, err := o.snapshotLocalState(ctx, result.Repositories, targetRoot, opts.LayoutFlat, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	planned := buildPlan(result.Repositories, states, opts.Force)

	if opts.DryRun {
		o.printPreview(opts, planned)
		return &Summary{Planned: planned, ExitCode: 0}, nil
	}

	requiresConfirm := opts.Force && anyForceReclone(planned)
	if requiresConfirm {
		confirmed := opts.Confirm != nil && opts.Confirm(planned)
		if !confirmed {
			return nil, mgiterrors.NewUserCancelledError()
		}
	}

	mode := engine.UpdatePull
	if opts.Force {
		mode = engine.UpdateForce
	}

	repos := make([]provider.Repository, len(planned))
	for i, p := range planned {
		repos[i] = p.Repository
	}

	outcomes, err := o.engine.Process(ctx, repos, engine.Options{
		TargetRoot:      targetRoot,
		Concurrency:     opts.Concurrency,
		UpdateMode:      mode,
		ConfirmedForce:  requiresConfirm,
		LayoutFlat:      opts.LayoutFlat,
		DefaultProvider: opts.DefaultProviderName,
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{Planned: planned, Outcomes: outcomes, ExitCode: exitCodeFor(outcomes)}
	o.printSummary(opts, summary)
	return summary, nil
}

func normalizeTargetRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	if root == "~" || len(root) > 1 && root[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve target root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create target root: %w", err)
	}
	return abs, nil
}

func (o *Orchestrator) snapshotLocalState(ctx context.Context, repos []provider.Repository, targetRoot string, flat bool, concurrency int) ([]LocalRepoState, error) {
	width := concurrency
	if width <= 0 {
		width = 4
	}

	states := make([]LocalRepoState, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(width)

	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			segments := pathutil.BuildRepoPath(repo.CloneURL, flat)
			path := filepath.Join(append([]string{targetRoot}, segments...)...)

			info, err := os.Stat(path)
			exists := err == nil && info.IsDir()
			state := LocalRepoState{Path: path, Exists: exists}

			if exists {
				state.IsGitRepo = isGitDir(path)
				if state.IsGitRepo {
					status, _ := o.exec.StatusPorcelain(gctx, path)
					state.Dirty = status != ""
					remote, _ := o.exec.RemoteURL(gctx, path)
					state.RemoteURL = remote
				}
			}

			states[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

func isGitDir(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// buildPlan implements spec.md §4.C10 step 6's action table.
func buildPlan(repos []provider.Repository, states []LocalRepoState, force bool) []PlannedAction {
	planned := make([]PlannedAction, len(repos))
	for i, repo := range repos {
		state := states[i]
		planned[i] = PlannedAction{Repository: repo, Path: state.Path}

		switch {
		case force:
			planned[i].Action = ActionForceReclone
		case state.Exists && state.IsGitRepo && state.Dirty:
			planned[i].Action = ActionSkipDirty
		case !state.Exists:
			planned[i].Action = ActionClone
		case state.Exists && state.IsGitRepo:
			planned[i].Action = ActionPull
		default:
			planned[i].Action = ActionSkipNonGit
		}
	}
	return planned
}

func anyForceReclone(planned []PlannedAction) bool {
	for _, p := range planned {
		if p.Action == ActionForceReclone {
			if _, err := os.Stat(p.Path); err == nil {
				return true
			}
		}
	}
	return false
}

// exitCodeFor is 0 iff every outcome is Success or a benign skip.
func exitCodeFor(outcomes []engine.OperationOutcome) int {
	for _, o := range outcomes {
		if o.Outcome == engine.OutcomeFailed {
			return 1
		}
	}
	return 0
}

func (o *Orchestrator) print(opts Options, line string) {
	if opts.Print != nil {
		opts.Print(line)
	}
}

func (o *Orchestrator) printPreview(opts Options, planned []PlannedAction) {
	if opts.Print == nil {
		return
	}
	byAction := map[Action]int{}
	for _, p := range planned {
		byAction[p.Action]++
	}
	for _, action := range []Action{ActionClone, ActionPull, ActionForceReclone, ActionSkipDirty, ActionSkipNonGit} {
		if n := byAction[action]; n > 0 {
			opts.Print(fmt.Sprintf("%s: %d", action, n))
		}
	}
}

func (o *Orchestrator) printSummary(opts Options, summary *Summary) {
	if opts.Print == nil {
		return
	}
	byOutcome := map[engine.Outcome]int{}
	for _, out := range summary.Outcomes {
		byOutcome[out.Outcome]++
	}
	for outcome, n := range byOutcome {
		opts.Print(fmt.Sprintf("%s: %d", outcome, n))
	}
}
