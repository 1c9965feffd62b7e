// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package engine implements the bounded-concurrency bulk clone/pull state
// machine specified as C9. Grounded on the teacher's
// internal/workerpool.Pool shape, rebuilt around golang.org/x/sync/errgroup
// with SetLimit for the per-repo semaphore, per spec.md §9's redesign note
// preferring errgroup over a hand-rolled worker pool for bounded fan-out.
package engine

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/mgit-io/mgit/internal/gitexec"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/pathutil"
	"github.com/mgit-io/mgit/internal/provider"
)

// UpdateMode selects how the engine treats a repository that already has a
// directory on disk.
type UpdateMode string

const (
	// UpdateSkip leaves existing directories alone (legacy clone-all
	// default).
	UpdateSkip UpdateMode = "skip"
	// UpdatePull clones missing repos and pulls existing clean ones (the
	// sync default).
	UpdatePull UpdateMode = "pull"
	// UpdateForce removes existing directories (once confirmed) and
	// re-clones.
	UpdateForce UpdateMode = "force"
)

// Outcome is the terminal state of one repository's processing.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFailed       Outcome = "failed"
	OutcomeSkipDisabled Outcome = "skip_disabled"
	OutcomeSkipNonGit   Outcome = "skip_non_git"
	OutcomeSkipExists   Outcome = "skip_exists"
	OutcomeSkipDirty    Outcome = "skip_dirty"
)

// OperationOutcome is one repository's final result.
type OperationOutcome struct {
	Repository provider.Repository
	Path       string
	Outcome    Outcome
	Reason     string
	Err        error
}

// ProviderResolver returns the live GitProvider for a stamped config name,
// used to mint the authenticated clone URL the spec requires (the
// repository's own provenance, never the engine's "default" choice).
type ProviderResolver interface {
	Get(name string) (provider.GitProvider, error)
}

// Event is a progress notification the engine emits as it works.
type Event struct {
	RepoName string
	State    string
	Outcome  *OperationOutcome
}

// Options configures one Process call.
type Options struct {
	TargetRoot      string
	Concurrency     int
	UpdateMode      UpdateMode
	ConfirmedForce  bool
	LayoutFlat      bool
	DefaultProvider string
	OnEvent         func(Event)
}

// Engine runs the bulk clone/pull state machine over a resolved repository
// set.
type Engine struct {
	exec      *gitexec.Executor
	providers ProviderResolver
	log       *logger.Logger
}

// New constructs an Engine.
func New(exec *gitexec.Executor, providers ProviderResolver, log *logger.Logger) *Engine {
	return &Engine{exec: exec, providers: providers, log: log}
}

// Process runs the pre-flight path resolution, then fans out one task per
// repository bounded by opts.Concurrency (default 4), returning outcomes
// in input order.
func (e *Engine) Process(ctx context.Context, repos []provider.Repository, opts Options) ([]OperationOutcome, error) {
	paths, err := e.resolvePaths(repos, opts.LayoutFlat)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	forceDowngrades := map[string]string{}
	if opts.UpdateMode == UpdateForce && !opts.ConfirmedForce {
		for i, repo := range repos {
			target := filepath.Join(opts.TargetRoot, paths[i])
			if dirExists(target) {
				forceDowngrades[repo.CloneURL] = "force re-clone requires confirmation"
			}
		}
	}

	outcomes := make([]OperationOutcome, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, repo := range repos {
		i, repo := i, repo
		target := filepath.Join(opts.TargetRoot, paths[i])

		g.Go(func() error {
			e.emit(opts, Event{RepoName: repo.Name, State: "started"})

			mode := opts.UpdateMode
			if reason, downgraded := forceDowngrades[repo.CloneURL]; downgraded {
				outcomes[i] = OperationOutcome{Repository: repo, Path: target, Outcome: OutcomeSkipExists, Reason: reason}
				e.emit(opts, Event{RepoName: repo.Name, State: "finished", Outcome: &outcomes[i]})
				return nil
			}

			outcomes[i] = e.processOne(gctx, repo, target, mode, opts)
			e.emit(opts, Event{RepoName: repo.Name, State: "finished", Outcome: &outcomes[i]})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// resolvePaths builds each repo's target path via C2. Hierarchical layout
// (host/org/.../repo) already disambiguates by construction, so it's used
// directly; flat layout collapses every repo to its bare name, so that
// case runs the collision resolver over the full set.
func (e *Engine) resolvePaths(repos []provider.Repository, flat bool) ([]string, error) {
	if !flat {
		paths := make([]string, len(repos))
		for i, repo := range repos {
			paths[i] = filepath.Join(pathutil.BuildRepoPath(repo.CloneURL, false)...)
		}
		return paths, nil
	}

	items := make([]pathutil.CollisionInput, len(repos))
	for i, repo := range repos {
		segments := pathutil.BuildRepoPath(repo.CloneURL, true)
		items[i] = pathutil.CollisionInput{CloneURL: repo.CloneURL, FallbackName: filepath.Join(segments...)}
	}
	resolved, err := pathutil.ResolveCollisions(items)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(repos))
	for i, repo := range repos {
		paths[i] = resolved[repo.CloneURL]
	}
	return paths, nil
}

// processOne runs the per-repo state machine described in spec.md §4.C9.
func (e *Engine) processOne(ctx context.Context, repo provider.Repository, target string, mode UpdateMode, opts Options) OperationOutcome {
	base := OperationOutcome{Repository: repo, Path: target}

	if repo.IsDisabled {
		base.Outcome = OutcomeSkipDisabled
		return base
	}

	cloneURL, err := e.authenticatedCloneURL(repo, opts.DefaultProvider)
	if err != nil {
		base.Outcome = OutcomeFailed
		base.Err = err
		return base
	}

	if !dirExists(target) {
		if err := e.exec.Clone(ctx, cloneURL, filepath.Dir(target), filepath.Base(target)); err != nil {
			base.Outcome = OutcomeFailed
			base.Err = err
			return base
		}
		base.Outcome = OutcomeSuccess
		return base
	}

	if !isGitRepo(target) {
		base.Outcome = OutcomeSkipNonGit
		return base
	}

	if e.exec.IsEmpty(ctx, target) {
		base.Outcome = OutcomeSkipExists
		base.Reason = "repository has no commits yet"
		return base
	}

	switch mode {
	case UpdateSkip:
		base.Outcome = OutcomeSkipExists
		return base

	case UpdatePull:
		status, err := e.exec.StatusPorcelain(ctx, target)
		if err != nil {
			base.Outcome = OutcomeFailed
			base.Err = err
			return base
		}
		if status != "" {
			base.Outcome = OutcomeSkipDirty
			return base
		}
		if err := e.exec.Pull(ctx, target); err != nil {
			base.Outcome = OutcomeFailed
			base.Err = err
			return base
		}
		base.Outcome = OutcomeSuccess
		return base

	case UpdateForce:
		if err := os.RemoveAll(target); err != nil {
			base.Outcome = OutcomeFailed
			base.Err = err
			return base
		}
		if err := e.exec.Clone(ctx, cloneURL, filepath.Dir(target), filepath.Base(target)); err != nil {
			base.Outcome = OutcomeFailed
			base.Err = err
			return base
		}
		base.Outcome = OutcomeSuccess
		return base

	default:
		base.Outcome = OutcomeSkipExists
		return base
	}
}

// authenticatedCloneURL honors the repo's stamped provenance first,
// falling back to the engine's configured default provider with a warning
// if the stamped config is missing or fails to construct.
func (e *Engine) authenticatedCloneURL(repo provider.Repository, defaultProviderName string) (string, error) {
	name := repo.ProviderConfigName()
	if name == "" {
		name = defaultProviderName
	}

	inst, err := e.providers.Get(name)
	if err != nil && name != defaultProviderName && defaultProviderName != "" {
		e.log.Warn("provider config stamped on repository is unavailable, falling back to default",
			"repository", repo.Name, "stamped_provider", name, "default_provider", defaultProviderName)
		inst, err = e.providers.Get(defaultProviderName)
	}
	if err != nil {
		return "", err
	}

	return inst.GetAuthenticatedCloneURL(repo)
}

func (e *Engine) emit(opts Options, ev Event) {
	if opts.OnEvent != nil {
		opts.OnEvent(ev)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}
