// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package azuredevops implements the Azure DevOps GitProvider adapter on
// microsoft/azure-devops-go-api, following the
// azuredevops.NewPatConnection + core.NewClient/git.NewClient pattern found
// in the broader retrieval pack's multi-gitter Azure DevOps adapter.
package azuredevops

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	mgitconfig "github.com/mgit-io/mgit/internal/config"
	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/ratelimit"
)

const defaultAPIVersion = "7.1"

// Provider is the Azure DevOps GitProvider adapter. Three-tier
// (org/project/repo); SupportsProjects is always true.
type Provider struct {
	name       string
	cfg        *mgitconfig.ProviderConfig
	log        *logger.Logger
	gate       *ratelimit.Gate
	connection *azuredevops.Connection
	coreClient core.Client
	gitClient  git.Client
}

// New constructs an Azure DevOps provider for the given named config. cfg.
// BaseURL is the organization URL, e.g. https://dev.azure.com/myorg.
func New(name string, cfg *mgitconfig.ProviderConfig, log *logger.Logger) (provider.GitProvider, error) {
	p := &Provider{name: name, cfg: cfg, log: log, gate: ratelimit.NewGate(name)}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	p.connection = azuredevops.NewPatConnection(cfg.BaseURL, cfg.Token)
	return p, nil
}

func (p *Provider) Name() string              { return string(provider.TypeAzureDevOps) }
func (p *Provider) DefaultAPIVersion() string { return defaultAPIVersion }
func (p *Provider) SupportsProjects() bool    { return true }

func (p *Provider) ValidateConfig() error {
	if p.cfg.Token == "" {
		return mgiterrors.NewConfigurationError("azuredevops provider requires a PAT token", nil).
			WithContext("provider_config", p.name)
	}
	if p.cfg.BaseURL == "" {
		return mgiterrors.NewConfigurationError("azuredevops provider requires an organization URL", nil).
			WithContext("provider_config", p.name)
	}
	return nil
}

func (p *Provider) ensureClients(ctx context.Context) error {
	if p.coreClient != nil && p.gitClient != nil {
		return nil
	}
	var err error
	p.coreClient, err = core.NewClient(ctx, p.connection)
	if err != nil {
		return mgiterrors.NewConnectionError(p.cfg.BaseURL, err)
	}
	p.gitClient, err = git.NewClient(ctx, p.connection)
	if err != nil {
		return mgiterrors.NewConnectionError(p.cfg.BaseURL, err)
	}
	return nil
}

func (p *Provider) Authenticate(ctx context.Context) error {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return err
	}
	if err := p.ensureClients(ctx); err != nil {
		return err
	}
	top := 1
	_, err := p.coreClient.GetProjects(ctx, core.GetProjectsArgs{Top: &top})
	if err != nil {
		return mgiterrors.NewAuthenticationError(p.name, err)
	}
	return nil
}

func (p *Provider) TestConnection(ctx context.Context) error {
	return p.Authenticate(ctx)
}

// ListOrganizations returns a single pseudo-organization: Azure DevOps
// connections are already scoped to one organization by BaseURL.
func (p *Provider) ListOrganizations(ctx context.Context) ([]provider.Organization, error) {
	if err := p.ensureClients(ctx); err != nil {
		return nil, err
	}
	return []provider.Organization{{Name: orgNameFromURL(p.cfg.BaseURL)}}, nil
}

func (p *Provider) ListProjects(ctx context.Context, _ string) ([]provider.Project, error) {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return nil, err
	}
	if err := p.ensureClients(ctx); err != nil {
		return nil, err
	}

	resp, err := p.coreClient.GetProjects(ctx, core.GetProjectsArgs{})
	if err != nil {
		return nil, mgiterrors.NewProviderAPIError(p.name, err)
	}

	orgName := orgNameFromURL(p.cfg.BaseURL)
	var projects []provider.Project
	if resp != nil {
		for _, proj := range resp.Value {
			projects = append(projects, provider.Project{Name: *proj.Name, OrgName: orgName})
		}
	}
	return projects, nil
}

// ListRepositories streams repositories of the given project. Azure DevOps
// returns one page per project (no further pagination in this API), so the
// iterator simply ranges the response slice.
func (p *Provider) ListRepositories(ctx context.Context, _, project string, filters provider.ListFilters) iter.Seq2[provider.Repository, error] {
	return func(yield func(provider.Repository, error) bool) {
		if err := p.gate.BeforeCall(ctx); err != nil {
			yield(provider.Repository{}, err)
			return
		}
		if err := p.ensureClients(ctx); err != nil {
			yield(provider.Repository{}, err)
			return
		}

		repos, err := p.gitClient.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &project})
		if err != nil {
			yield(provider.Repository{}, mgiterrors.NewProviderAPIError(p.name, err))
			return
		}
		if repos == nil {
			return
		}

		emitted := 0
		for _, r := range *repos {
			if filters.Limit > 0 && emitted >= filters.Limit {
				return
			}
			if !yield(toRepository(&r, p.name), nil) {
				return
			}
			emitted++
		}
	}
}

func (p *Provider) GetRepository(ctx context.Context, _, project, repoName string) (*provider.Repository, error) {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return nil, err
	}
	if err := p.ensureClients(ctx); err != nil {
		return nil, err
	}

	r, err := p.gitClient.GetRepository(ctx, git.GetRepositoryArgs{Project: &project, RepositoryId: &repoName})
	if err != nil {
		return nil, nil //nolint:nilerr // spec: absent repository is not an error
	}
	repo := toRepository(r, p.name)
	return &repo, nil
}

func (p *Provider) GetAuthenticatedCloneURL(repo provider.Repository) (string, error) {
	if !strings.HasPrefix(repo.CloneURL, "https://") {
		return "", fmt.Errorf("azuredevops: clone url is not https: %s", repo.CloneURL)
	}
	return strings.Replace(repo.CloneURL, "https://", fmt.Sprintf("https://PersonalAccessToken:%s@", p.cfg.Token), 1), nil
}

func (p *Provider) Close() error {
	return nil
}

func toRepository(r *git.GitRepository, providerName string) provider.Repository {
	repo := provider.Repository{
		Provider: provider.TypeAzureDevOps,
		Metadata: map[string]string{"provider_config_name": providerName},
	}
	if r.Name != nil {
		repo.Name = *r.Name
	}
	if r.RemoteUrl != nil {
		repo.CloneURL = *r.RemoteUrl
	}
	if r.SshUrl != nil {
		repo.SSHURL = *r.SshUrl
	}
	if r.IsDisabled != nil {
		repo.IsDisabled = *r.IsDisabled
	}
	if r.DefaultBranch != nil {
		repo.DefaultBranch = *r.DefaultBranch
	}
	if r.Project != nil && r.Project.Visibility != nil {
		repo.IsPrivate = string(*r.Project.Visibility) != "public"
	}
	return repo
}

func orgNameFromURL(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
