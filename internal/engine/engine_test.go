// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-io/mgit/internal/gitexec"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
)

type fakeProviderResolver struct {
	providers map[string]provider.GitProvider
}

func (f *fakeProviderResolver) Get(name string) (provider.GitProvider, error) {
	p, ok := f.providers[name]
	if !ok {
		return nil, assertNotFoundErr{name}
	}
	return p, nil
}

type assertNotFoundErr struct{ name string }

func (e assertNotFoundErr) Error() string { return "no such provider: " + e.name }

type passthroughProvider struct{}

func (passthroughProvider) Name() string             { return "fake" }
func (passthroughProvider) DefaultAPIVersion() string { return "v1" }
func (passthroughProvider) ValidateConfig() error     { return nil }
func (passthroughProvider) Authenticate(context.Context) error   { return nil }
func (passthroughProvider) TestConnection(context.Context) error { return nil }
func (passthroughProvider) ListOrganizations(context.Context) ([]provider.Organization, error) {
	return nil, nil
}
func (passthroughProvider) SupportsProjects() bool { return false }
func (passthroughProvider) ListProjects(context.Context, string) ([]provider.Project, error) {
	return nil, nil
}
func (passthroughProvider) ListRepositories(context.Context, string, string, provider.ListFilters) iter.Seq2[provider.Repository, error] {
	return func(yield func(provider.Repository, error) bool) {}
}
func (passthroughProvider) GetRepository(context.Context, string, string, string) (*provider.Repository, error) {
	return nil, nil
}
func (passthroughProvider) GetAuthenticatedCloneURL(repo provider.Repository) (string, error) {
	return repo.CloneURL, nil
}
func (passthroughProvider) Close() error { return nil }

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	log := logger.New("test", logger.LevelError, logger.FileConfig{})
	execr, err := gitexec.New(log, gitexec.DefaultConfig())
	require.NoError(t, err)
	resolver := &fakeProviderResolver{providers: map[string]provider.GitProvider{"gh": passthroughProvider{}}}
	return New(execr, resolver, log), t.TempDir()
}

func TestProcess_SkipDisabled(t *testing.T) {
	e, root := newTestEngine(t)
	repos := []provider.Repository{{
		Name: "widgets", CloneURL: "https://github.com/acme/widgets.git",
		IsDisabled: true, Metadata: map[string]string{"provider_config_name": "gh"},
	}}

	outcomes, err := e.Process(context.Background(), repos, Options{TargetRoot: root, UpdateMode: UpdatePull, DefaultProvider: "gh"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeSkipDisabled, outcomes[0].Outcome)
}

func TestProcess_SkipNonGitDirectory(t *testing.T) {
	e, root := newTestEngine(t)
	target := filepath.Join(root, "github.com", "acme", "widgets")
	require.NoError(t, os.MkdirAll(target, 0o755))

	repos := []provider.Repository{{
		Name: "widgets", CloneURL: "https://github.com/acme/widgets.git",
		Metadata: map[string]string{"provider_config_name": "gh"},
	}}

	outcomes, err := e.Process(context.Background(), repos, Options{TargetRoot: root, UpdateMode: UpdatePull, DefaultProvider: "gh"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipNonGit, outcomes[0].Outcome)
}

func TestProcess_ForceWithoutConfirmationDowngradesToSkip(t *testing.T) {
	e, root := newTestEngine(t)
	target := filepath.Join(root, "github.com", "acme", "widgets")
	require.NoError(t, os.MkdirAll(filepath.Join(target, ".git"), 0o755))

	repos := []provider.Repository{{
		Name: "widgets", CloneURL: "https://github.com/acme/widgets.git",
		Metadata: map[string]string{"provider_config_name": "gh"},
	}}

	outcomes, err := e.Process(context.Background(), repos, Options{TargetRoot: root, UpdateMode: UpdateForce, ConfirmedForce: false, DefaultProvider: "gh"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipExists, outcomes[0].Outcome)
	assert.Contains(t, outcomes[0].Reason, "confirmation")
}
