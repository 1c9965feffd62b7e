// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
)

type fakeProvider struct {
	orgs      []provider.Organization
	repos     map[string][]provider.Repository // keyed by org
	authErr   error
	supports  bool
}

func (f *fakeProvider) Name() string              { return "fake" }
func (f *fakeProvider) DefaultAPIVersion() string  { return "v1" }
func (f *fakeProvider) ValidateConfig() error      { return nil }
func (f *fakeProvider) Authenticate(context.Context) error { return f.authErr }
func (f *fakeProvider) TestConnection(context.Context) error { return f.authErr }
func (f *fakeProvider) ListOrganizations(context.Context) ([]provider.Organization, error) {
	return f.orgs, nil
}
func (f *fakeProvider) SupportsProjects() bool { return f.supports }
func (f *fakeProvider) ListProjects(context.Context, string) ([]provider.Project, error) {
	return nil, nil
}
func (f *fakeProvider) ListRepositories(_ context.Context, org, _ string, _ provider.ListFilters) iter.Seq2[provider.Repository, error] {
	return func(yield func(provider.Repository, error) bool) {
		for _, r := range f.repos[org] {
			if !yield(r, nil) {
				return
			}
		}
	}
}
func (f *fakeProvider) GetRepository(context.Context, string, string, string) (*provider.Repository, error) {
	return nil, nil
}
func (f *fakeProvider) GetAuthenticatedCloneURL(repo provider.Repository) (string, error) {
	return repo.CloneURL, nil
}
func (f *fakeProvider) Close() error { return nil }

type fakeRegistry struct {
	providers map[string]provider.GitProvider
}

func (r *fakeRegistry) ListProviderNames() []string {
	var names []string
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

func (r *fakeRegistry) Get(name string) (provider.GitProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, mgiterrors.NewConfigurationError("no such provider", nil)
	}
	return p, nil
}

type fakeDefaults struct {
	name string
}

func (d fakeDefaults) GetDefaultProviderName() string { return d.name }

func newTestLogger() *logger.Logger {
	return logger.New("test", logger.LevelError, logger.FileConfig{})
}

func TestResolve_DefaultProviderNoWildcard(t *testing.T) {
	p := &fakeProvider{
		orgs: []provider.Organization{{Name: "acme"}},
		repos: map[string][]provider.Repository{
			"acme": {{Name: "widgets", CloneURL: "https://github.com/acme/widgets.git"}},
		},
	}
	reg := &fakeRegistry{providers: map[string]provider.GitProvider{"gh": p}}
	r := New(reg, fakeDefaults{name: "gh"}, newTestLogger())

	result, err := r.Resolve(context.Background(), "acme/core/widgets", Options{})
	require.NoError(t, err)
	require.Len(t, result.Repositories, 1)
	assert.Equal(t, "widgets", result.Repositories[0].Name)
	assert.Equal(t, "gh", result.Repositories[0].ProviderConfigName())
}

func TestResolve_WildcardFanOutMergesAndDedupes(t *testing.T) {
	p1 := &fakeProvider{
		orgs: []provider.Organization{{Name: "acme"}},
		repos: map[string][]provider.Repository{
			"acme": {{Name: "widgets", CloneURL: "https://github.com/acme/widgets.git"}},
		},
	}
	p2 := &fakeProvider{
		orgs: []provider.Organization{{Name: "acme"}},
		repos: map[string][]provider.Repository{
			"acme": {
				{Name: "widgets", CloneURL: "https://github.com/acme/widgets"}, // dup once ".git" is trimmed from the clone URL
				{Name: "gadgets", CloneURL: "https://github.com/acme/gadgets.git"},
			},
		},
	}
	reg := &fakeRegistry{providers: map[string]provider.GitProvider{"gh1": p1, "gh2": p2}}
	r := New(reg, fakeDefaults{}, newTestLogger())

	result, err := r.Resolve(context.Background(), "*/*/*", Options{})
	require.NoError(t, err)
	assert.Len(t, result.Repositories, 2)
	assert.Equal(t, 1, result.DuplicatesRemoved)
}

func TestResolve_ProviderFailureRecordedNotFatal(t *testing.T) {
	healthy := &fakeProvider{orgs: []provider.Organization{{Name: "acme"}}}
	broken := &fakeProvider{authErr: mgiterrors.NewAuthenticationError("broken", nil)}
	reg := &fakeRegistry{providers: map[string]provider.GitProvider{"ok": healthy, "broken": broken}}
	r := New(reg, fakeDefaults{}, newTestLogger())

	result, err := r.Resolve(context.Background(), "*/*/*", Options{})
	require.NoError(t, err)
	assert.Contains(t, result.FailedProviders, "broken")
}

func TestResolve_ConfigurationErrorPropagatesFailFast(t *testing.T) {
	reg := &fakeRegistry{providers: map[string]provider.GitProvider{}}
	r := New(reg, fakeDefaults{}, newTestLogger())

	_, err := r.Resolve(context.Background(), "*/*/*", Options{SingleProviderName: "missing"})
	assert.Error(t, err)
}
