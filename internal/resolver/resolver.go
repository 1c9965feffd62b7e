// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package resolver fans a query out across every configured provider (or a
// single selected one) and merges the results into a deduplicated
// repository set. Grounded on the teacher's internal/synclone/discovery
// package's concurrent-fan-out shape, rebuilt around C1's query patterns
// and C3's narrow GitProvider interface, using golang.org/x/sync/errgroup
// for the bounded-concurrency fan-out per spec.md §9's redesign note.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/query"
)

// Result is the outcome of a resolve call.
type Result struct {
	Repositories      []provider.Repository
	FailedProviders   map[string]error
	DuplicatesRemoved int
}

// Options selects the resolution strategy, mirroring spec.md §4.C6's
// strategy-selection order: single_url, then single_provider, then
// wildcard fan-out, then the default provider.
type Options struct {
	SingleProviderName string
	SingleURL          string
}

// Registry is the subset of provider.Registry the resolver needs.
type Registry interface {
	ListProviderNames() []string
	Get(name string) (provider.GitProvider, error)
}

// DefaultProviderNamer supplies the config store's declared default
// provider name, or "" if none is set.
type DefaultProviderNamer interface {
	GetDefaultProviderName() string
}

// Resolver resolves query patterns against a provider registry.
type Resolver struct {
	registry Registry
	defaults DefaultProviderNamer
	log      *logger.Logger
}

// New constructs a Resolver.
func New(registry Registry, defaults DefaultProviderNamer, log *logger.Logger) *Resolver {
	return &Resolver{registry: registry, defaults: defaults, log: log}
}

// Resolve implements the C6 strategy selection, fan-out, and merge.
func (r *Resolver) Resolve(ctx context.Context, q string, opts Options) (*Result, error) {
	pattern, err := query.Parse(q)
	if err != nil {
		return nil, err
	}

	names, single, err := r.selectProviders(pattern, opts)
	if err != nil {
		return nil, err
	}
	if single != nil {
		return r.merge([]providerBatch{*single}), nil
	}

	width := len(names)
	if width > 4 {
		width = 4
	}

	batches := make([]providerBatch, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(width)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			batches[i] = r.queryProvider(gctx, name, pattern)
			if batches[i].configErr != nil {
				return batches[i].configErr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.merge(batches), nil
}

// providerBatch is one provider's contribution to a fan-out, before merge.
type providerBatch struct {
	providerName string
	repos        []provider.Repository
	err          error
	configErr    error
}

func (r *Resolver) selectProviders(pattern *query.Pattern, opts Options) ([]string, *providerBatch, error) {
	if opts.SingleURL != "" {
		name, err := providerNameFromURL(opts.SingleURL)
		if err != nil {
			return nil, nil, err
		}
		batch := r.queryProviderDirect(context.Background(), name, pattern)
		return nil, &batch, nil
	}
	if opts.SingleProviderName != "" {
		return []string{opts.SingleProviderName}, nil, nil
	}
	if pattern.IsWildcard() {
		return r.registry.ListProviderNames(), nil, nil
	}

	name := r.defaults.GetDefaultProviderName()
	if name == "" {
		return nil, nil, mgiterrors.NewConfigurationError("no default provider configured", nil)
	}
	return []string{name}, nil, nil
}

// providerNameFromURL maps a clone URL's host to a provider type tag
// ("github", "azuredevops" or "bitbucket") for the --url path; the resolver
// then looks that tag up as a provider config name, so only a config named
// after its type is found. A host matching none of the three is rejected,
// since there is no config name to select without an explicit --provider
// flag.
func providerNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", mgiterrors.NewConfigurationError("unparsable --url value", err)
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "github"):
		return "github", nil
	case strings.Contains(host, "azure") || strings.Contains(host, "visualstudio"):
		return "azuredevops", nil
	case strings.Contains(host, "bitbucket"):
		return "bitbucket", nil
	default:
		return "", mgiterrors.NewConfigurationError("cannot infer provider from url host; pass --provider explicitly", nil).
			WithContext("host", host)
	}
}

func (r *Resolver) queryProvider(ctx context.Context, name string, pattern *query.Pattern) providerBatch {
	batch := r.queryProviderDirect(ctx, name, pattern)
	var stdErr *mgiterrors.StandardError
	if batch.err != nil && errors.As(batch.err, &stdErr) && stdErr.Kind == mgiterrors.KindConfiguration {
		batch.configErr = batch.err
	}
	return batch
}

func (r *Resolver) queryProviderDirect(ctx context.Context, name string, pattern *query.Pattern) providerBatch {
	inst, err := r.registry.Get(name)
	if err != nil {
		return providerBatch{providerName: name, err: err}
	}

	if err := inst.Authenticate(ctx); err != nil {
		return providerBatch{providerName: name, err: err}
	}

	var repos []provider.Repository
	orgs, err := inst.ListOrganizations(ctx)
	if err != nil {
		return providerBatch{providerName: name, err: err}
	}

	for _, org := range orgs {
		if !query.Matches(org.Name, pattern.Org, pattern.CaseSensitive) {
			continue
		}

		projectScopes := []string{""}
		if inst.SupportsProjects() {
			projects, err := inst.ListProjects(ctx, org.Name)
			if err != nil {
				return providerBatch{providerName: name, err: err}
			}
			projectScopes = nil
			for _, proj := range projects {
				if query.Matches(proj.Name, pattern.Project, pattern.CaseSensitive) {
					projectScopes = append(projectScopes, proj.Name)
				}
			}
		}

		for _, projectName := range projectScopes {
			for repo, err := range inst.ListRepositories(ctx, org.Name, projectName, provider.ListFilters{}) {
				if err != nil {
					return providerBatch{providerName: name, err: err}
				}
				if !query.Matches(repo.Name, pattern.Repo, pattern.CaseSensitive) {
					continue
				}
				if repo.Metadata == nil {
					repo.Metadata = map[string]string{}
				}
				repo.Metadata["provider_config_name"] = name
				repos = append(repos, repo)
			}
		}
	}

	return providerBatch{providerName: name, repos: repos}
}

// merge dedups by clone_url (ignoring a trailing ".git"), then by (host,
// org, repo name), first occurrence winning; failed (non-configuration-error) batches are
// recorded in FailedProviders rather than dropped silently.
func (r *Resolver) merge(batches []providerBatch) *Result {
	result := &Result{FailedProviders: map[string]error{}}
	seenByURL := map[string]bool{}
	seenBySecondary := map[string]bool{}

	for _, batch := range batches {
		if batch.err != nil {
			result.FailedProviders[batch.providerName] = batch.err
			continue
		}
		for _, repo := range batch.repos {
			urlKey := strings.TrimSuffix(repo.CloneURL, ".git")
			if seenByURL[urlKey] {
				result.DuplicatesRemoved++
				continue
			}

			secondaryKey := secondaryDedupKey(repo)
			if secondaryKey != "" && seenBySecondary[secondaryKey] {
				result.DuplicatesRemoved++
				continue
			}

			seenByURL[urlKey] = true
			if secondaryKey != "" {
				seenBySecondary[secondaryKey] = true
			}
			result.Repositories = append(result.Repositories, repo)
		}
	}

	return result
}

func secondaryDedupKey(repo provider.Repository) string {
	u, err := url.Parse(strings.TrimSuffix(repo.CloneURL, ".git"))
	if err != nil {
		return ""
	}
	org := ""
	if segments := strings.Split(strings.Trim(u.Path, "/"), "/"); len(segments) > 0 {
		org = segments[0]
	}
	return fmt.Sprintf("%s|%s|%s", strings.ToLower(u.Hostname()), strings.ToLower(org), strings.ToLower(repo.Name))
}
