// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package gitexec wraps git subprocess invocations with credential
// scrubbing, per-call timeouts, and transient-error retry, per spec.md
// §4.C8. Grounded on the teacher's internal/git SecureGitExecutor
// (exec.CommandContext + git -C invocation shape), generalized to the
// clone/pull/status/branch/remote-url/is-empty operation set C8 specifies
// and wired to C7's classifier and backoff for retry.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/ratelimit"
)

const (
	defaultCloneTimeout = 300 * time.Second
	defaultPullTimeout  = 120 * time.Second
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
)

// Config tunes retry/timeout behavior. Zero value is DefaultConfig.
type Config struct {
	CloneTimeout time.Duration
	PullTimeout  time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	BackoffBase  float64
}

// DefaultConfig matches spec.md §4.C7/§4.C8's defaults.
func DefaultConfig() Config {
	return Config{
		CloneTimeout: defaultCloneTimeout,
		PullTimeout:  defaultPullTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		BackoffBase:  2.0,
	}
}

// Executor runs git subprocesses against working directories.
type Executor struct {
	cfg     Config
	log     *logger.Logger
	gitPath string
}

// New constructs an Executor, resolving the git binary on PATH.
func New(log *logger.Logger, cfg Config) (*Executor, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git command not found: %w", err)
	}
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Executor{cfg: cfg, log: log, gitPath: gitPath}, nil
}

// Clone clones url into dstParent/dirName, retrying transient failures.
func (e *Executor) Clone(ctx context.Context, url, dstParent, dirName string) error {
	target := filepath.Join(dstParent, dirName)
	_, err := e.runRetrying(ctx, e.cfg.CloneTimeout, "", "clone", url, target)
	if err != nil {
		return mgiterrors.NewGitCloneError(target, err)
	}
	return nil
}

// Pull runs git pull in dir, retrying transient failures.
func (e *Executor) Pull(ctx context.Context, dir string) error {
	_, err := e.runRetrying(ctx, e.cfg.PullTimeout, dir, "pull")
	if err != nil {
		return mgiterrors.NewGitPullError(dir, err)
	}
	return nil
}

// StatusPorcelain returns `git status --porcelain`'s output. A repo is
// dirty iff the returned text is non-empty.
func (e *Executor) StatusPorcelain(ctx context.Context, dir string) (string, error) {
	out, err := e.run(ctx, e.cfg.PullTimeout, dir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return out, nil
}

// CurrentBranch returns the checked-out branch name, or "" if detached or
// unresolvable (e.g. an empty repository).
func (e *Executor) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := e.run(ctx, e.cfg.PullTimeout, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", nil //nolint:nilerr // no resolvable HEAD is not an executor error
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", nil
	}
	return branch, nil
}

// RemoteURL returns the configured "origin" remote URL, or "" if unset.
func (e *Executor) RemoteURL(ctx context.Context, dir string) (string, error) {
	out, err := e.run(ctx, e.cfg.PullTimeout, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", nil //nolint:nilerr // no remote configured is not an executor error
	}
	return strings.TrimSpace(out), nil
}

// IsEmpty reports whether dir has no commits yet: true if .git is absent,
// or if .git is present but `git rev-parse HEAD` fails.
func (e *Executor) IsEmpty(ctx context.Context, dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return true
	}
	_, err := e.run(ctx, e.cfg.PullTimeout, dir, "rev-parse", "HEAD")
	return err != nil
}

// run executes one git invocation without retry, with credential-scrubbed
// stdout/stderr in any returned error.
func (e *Executor) run(ctx context.Context, timeout time.Duration, dir string, args ...string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gitArgs := args
	if dir != "" {
		gitArgs = append([]string{"-C", dir}, args...)
	}

	cmd := exec.CommandContext(callCtx, e.gitPath, gitArgs...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	scrubbedArgs := logger.ScrubCredentials(strings.Join(gitArgs, " "))
	if callCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("git %s timed out after %s (exit 124)", scrubbedArgs, timeout)
	}
	if err != nil {
		scrubbedStderr := logger.ScrubCredentials(stderr.String())
		return "", fmt.Errorf("git %s failed: %w: %s", scrubbedArgs, err, strings.TrimSpace(scrubbedStderr))
	}
	return stdout.String(), nil
}

// runRetrying retries run() while ratelimit.ClassifyGitError deems the
// failure transient, up to cfg.MaxRetries attempts.
func (e *Executor) runRetrying(ctx context.Context, timeout time.Duration, dir string, args ...string) (string, error) {
	var lastErr error
	delay := e.cfg.InitialDelay

	attempts := e.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		out, err := e.run(ctx, timeout, dir, args...)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ratelimit.IsEmptyRepoMessage(err.Error()) {
			return out, err
		}
		if ratelimit.ClassifyGitError(err.Error()) == ratelimit.ClassificationPermanent {
			return "", err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay = time.Duration(float64(delay) * e.cfg.BackoffBase)
	}

	return "", lastErr
}
