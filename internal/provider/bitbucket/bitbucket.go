// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package bitbucket implements the Bitbucket Cloud GitProvider adapter
// directly against the REST API (api.bitbucket.org/2.0) with net/http and
// gjson. No third-party Bitbucket client library appears anywhere in the
// retrieval pack — see DESIGN.md for why this is a legitimate stdlib-plus-
// gjson case rather than a missed dependency.
package bitbucket

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	mgitconfig "github.com/mgit-io/mgit/internal/config"
	mgiterrors "github.com/mgit-io/mgit/internal/errors"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/ratelimit"
)

const (
	defaultAPIVersion = "2.0"
	defaultBaseURL    = "https://api.bitbucket.org/2.0"
)

// Provider is the Bitbucket Cloud GitProvider adapter. Two-tier
// (workspace/repo); SupportsProjects is always false.
type Provider struct {
	name       string
	cfg        *mgitconfig.ProviderConfig
	log        *logger.Logger
	gate       *ratelimit.Gate
	httpClient *http.Client
	baseURL    string
}

// New constructs a Bitbucket provider for the given named config. cfg.
// Username is the Bitbucket account username and cfg.Token is an app
// password (Bitbucket has no personal-access-token-only flow for the REST
// API's basic auth scheme).
func New(name string, cfg *mgitconfig.ProviderConfig, log *logger.Logger) (provider.GitProvider, error) {
	p := &Provider{
		name:       name,
		cfg:        cfg,
		log:        log,
		gate:       ratelimit.NewGate(name),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	if cfg.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Name() string              { return string(provider.TypeBitbucket) }
func (p *Provider) DefaultAPIVersion() string { return defaultAPIVersion }
func (p *Provider) SupportsProjects() bool    { return false }

func (p *Provider) ValidateConfig() error {
	if p.cfg.Username == "" {
		return mgiterrors.NewConfigurationError("bitbucket provider requires a username", nil).
			WithContext("provider_config", p.name)
	}
	if p.cfg.Token == "" {
		return mgiterrors.NewConfigurationError("bitbucket provider requires an app password", nil).
			WithContext("provider_config", p.name)
	}
	return nil
}

func (p *Provider) Authenticate(ctx context.Context) error {
	_, err := p.do(ctx, "GET", "/user", nil)
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
	next := "/workspaces?pagelen=100"
	for next != "" {
		body, err := p.do(ctx, "GET", next, nil)
		if err != nil {
			return nil, mgiterrors.NewProviderAPIError(p.name, err)
		}
		res := gjson.ParseBytes(body)
		for _, v := range res.Get("values").Array() {
			orgs = append(orgs, provider.Organization{Name: v.Get("slug").String()})
		}
		next = relativePath(res.Get("next").String())
	}
	return orgs, nil
}

func (p *Provider) ListProjects(_ context.Context, _ string) ([]provider.Project, error) {
	return nil, nil
}

// ListRepositories streams every repository of the workspace named org,
// paginating internally via Bitbucket's "next" cursor links.
func (p *Provider) ListRepositories(ctx context.Context, org, _ string, filters provider.ListFilters) iter.Seq2[provider.Repository, error] {
	return func(yield func(provider.Repository, error) bool) {
		next := fmt.Sprintf("/repositories/%s?pagelen=100", url.PathEscape(org))
		emitted := 0

		for next != "" {
			if err := p.gate.BeforeCall(ctx); err != nil {
				yield(provider.Repository{}, err)
				return
			}
			body, err := p.do(ctx, "GET", next, nil)
			if err != nil {
				yield(provider.Repository{}, mgiterrors.NewProviderAPIError(p.name, err))
				return
			}
			res := gjson.ParseBytes(body)
			for _, v := range res.Get("values").Array() {
				if filters.Limit > 0 && emitted >= filters.Limit {
					return
				}
				if !yield(toRepository(v, p.name), nil) {
					return
				}
				emitted++
			}
			next = relativePath(res.Get("next").String())
		}
	}
}

func (p *Provider) GetRepository(ctx context.Context, org, _, repoName string) (*provider.Repository, error) {
	path := fmt.Sprintf("/repositories/%s/%s", url.PathEscape(org), url.PathEscape(repoName))
	body, err := p.do(ctx, "GET", path, nil)
	if err != nil {
		if httpErr, ok := err.(*httpStatusError); ok && httpErr.status == http.StatusNotFound {
			return nil, nil
		}
		return nil, mgiterrors.NewProviderAPIError(p.name, err)
	}
	repo := toRepository(gjson.ParseBytes(body), p.name)
	return &repo, nil
}

func (p *Provider) GetAuthenticatedCloneURL(repo provider.Repository) (string, error) {
	if !strings.HasPrefix(repo.CloneURL, "https://") {
		return "", fmt.Errorf("bitbucket: clone url is not https: %s", repo.CloneURL)
	}
	return strings.Replace(repo.CloneURL, "https://", fmt.Sprintf("https://%s:%s@", p.cfg.Username, p.cfg.Token), 1), nil
}

func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// httpStatusError carries the HTTP status so callers can special-case 404
// without parsing error message text.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("bitbucket: unexpected status %d: %s", e.status, e.body)
}

// do issues an authenticated request against the Bitbucket REST API, rate
// gated, and returns the raw response body.
func (p *Provider) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	if err := p.gate.BeforeCall(ctx); err != nil {
		return nil, err
	}

	target := path
	if !strings.HasPrefix(target, "http") {
		target = p.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.cfg.Username, p.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	p.gate.ObserveHeaders(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

func toRepository(v gjson.Result, providerName string) provider.Repository {
	repo := provider.Repository{
		Name:          v.Get("slug").String(),
		IsPrivate:     v.Get("is_private").Bool(),
		Description:   v.Get("description").String(),
		DefaultBranch: v.Get("mainbranch.name").String(),
		Provider:      provider.TypeBitbucket,
		Metadata:      map[string]string{"provider_config_name": providerName},
	}
	for _, clone := range v.Get("links.clone").Array() {
		switch clone.Get("name").String() {
		case "https":
			repo.CloneURL = clone.Get("href").String()
		case "ssh":
			repo.SSHURL = clone.Get("href").String()
		}
	}
	return repo
}

// relativePath extracts the path+query portion of a Bitbucket pagination
// link, minus the "/2.0" API prefix already in baseURL, so the next do()
// call can reuse it directly.
func relativePath(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/"+defaultAPIVersion)
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}
