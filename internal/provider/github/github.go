// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package github implements the GitHub GitProvider adapter on
// google/go-github, following the oauth2.StaticTokenSource client
// construction pattern used throughout the teacher's cmd/repo-config
// package (client_factory.go).
package github

import (
	"context"
	"fmt"
	"iter"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	mgitconfig "github.com/mgit-io/mgit/internal/config"
	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/ratelimit"
)

const defaultAPIVersion = "2022-11-28"

// Provider is the GitHub GitProvider adapter. Two-tier (org/repo);
// SupportsProjects is always false.
type Provider struct {
	name   string
	cfg    *mgitconfig.ProviderConfig
	log    *logger.Logger
	client *gh.Client
	gate   *ratelimit.Gate
}

// New constructs a GitHub provider for the given named config.
func New(name string, cfg *mgitconfig.ProviderConfig, log *logger.Logger) (provider.GitProvider, error) {
	p := &Provider{name: name, cfg: cfg, log: log, gate: ratelimit.NewGate(name)}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" && !strings.Contains(cfg.BaseURL, "api.github.com") {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, mgiterrors.NewConfigurationError("invalid GitHub base URL", err).
				WithContext("provider_config", name)
		}
	}
	p.client = client

	return p, nil
}

func (p *Provider) Name() string              { return string(provider.TypeGitHub) }
func (p *Provider) DefaultAPIVersion() string { return defaultAPIVersion }
func (p *Provider) SupportsProjects() bool    { return false }

func (p *Provider) ValidateConfig() error {
	if p.cfg.Token == "" {
		return mgiterrors.NewConfigurationError("github provider requires a token", nil).
			WithContext("provider_config", p.name)
	}
	return nil
}

func (p *Provider) Authenticate(ctx context.Context) error {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return err
	}
	_, resp, err := p.client.Users.Get(ctx, "")
	if resp != nil {
		p.gate.ObserveHeaders(resp.Response.Header)
	}
	if err != nil {
		return mgiterrors.NewAuthenticationError(p.name, err)
	}
	return nil
}

func (p *Provider) TestConnection(ctx context.Context) error {
	return p.Authenticate(ctx)
}

func (p *Provider) ListOrganizations(ctx context.Context) ([]provider.Organization, error) {
	var orgs []provider.Organization
	opts := &gh.ListOptions{PerPage: 100}
	for {
		if err := p.gate.BeforeCall(ctx); err != nil {
			return nil, err
		}
		page, resp, err := p.client.Organizations.List(ctx, "", opts)
		if resp != nil {
			p.gate.ObserveHeaders(resp.Response.Header)
		}
		if err != nil {
			return nil, mgiterrors.NewProviderAPIError(p.name, err)
		}
		for _, o := range page {
			orgs = append(orgs, provider.Organization{Name: o.GetLogin()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return orgs, nil
}

func (p *Provider) ListProjects(_ context.Context, _ string) ([]provider.Project, error) {
	return nil, nil
}

// ListRepositories streams every repository of org, paginating internally.
func (p *Provider) ListRepositories(ctx context.Context, org, _ string, filters provider.ListFilters) iter.Seq2[provider.Repository, error] {
	return func(yield func(provider.Repository, error) bool) {
		opts := &gh.RepositoryListByOrgOptions{ListOptions: gh.ListOptions{PerPage: 100}}
		emitted := 0

		for {
			if err := p.gate.BeforeCall(ctx); err != nil {
				yield(provider.Repository{}, err)
				return
			}
			repos, resp, err := p.client.Repositories.ListByOrg(ctx, org, opts)
			if resp != nil {
				p.gate.ObserveHeaders(resp.Response.Header)
			}
			if err != nil {
				yield(provider.Repository{}, mgiterrors.NewProviderAPIError(p.name, err))
				return
			}

			for _, r := range repos {
				if filters.Limit > 0 && emitted >= filters.Limit {
					return
				}
				repo := toRepository(r, p.name)
				if !yield(repo, nil) {
					return
				}
				emitted++
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

func (p *Provider) GetRepository(ctx context.Context, org, _, repoName string) (*provider.Repository, error) {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return nil, err
	}
	r, resp, err := p.client.Repositories.Get(ctx, org, repoName)
	if resp != nil {
		p.gate.ObserveHeaders(resp.Response.Header)
	}
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, nil
		}
		return nil, mgiterrors.NewProviderAPIError(p.name, err)
	}
	repo := toRepository(r, p.name)
	return &repo, nil
}

func (p *Provider) GetAuthenticatedCloneURL(repo provider.Repository) (string, error) {
	user := p.cfg.Username
	if user == "" {
		user = "x-access-token"
	}
	return embedCredentials(repo.CloneURL, user, p.cfg.Token)
}

func (p *Provider) Close() error {
	return nil
}

func toRepository(r *gh.Repository, providerName string) provider.Repository {
	return provider.Repository{
		Name:          r.GetName(),
		CloneURL:      r.GetCloneURL(),
		SSHURL:        r.GetSSHURL(),
		IsDisabled:    r.GetDisabled() || r.GetArchived(),
		IsPrivate:     r.GetPrivate(),
		DefaultBranch: r.GetDefaultBranch(),
		Description:   r.GetDescription(),
		Provider:      provider.TypeGitHub,
		Metadata:      map[string]string{"provider_config_name": providerName},
	}
}

func embedCredentials(rawURL, user, token string) (string, error) {
	if !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("github: clone url is not https: %s", rawURL)
	}
	return strings.Replace(rawURL, "https://", fmt.Sprintf("https://%s:%s@", user, token), 1), nil
}
