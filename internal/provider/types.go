// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package provider defines the uniform GitProvider contract every hosting
// adapter (github, azuredevops, bitbucket) implements, plus the registry and
// factory that turn named configs into live provider instances. Grounded on
// the teacher's pkg/git/provider package, narrowed to the operations
// spec.md §4.C3 actually names (dropping webhook/event/health-check
// surfaces the teacher's RepositoryManager composite interface carried).
package provider

// Repository is a discovered repository, read-only after creation.
type Repository struct {
	Name          string
	CloneURL      string
	SSHURL        string
	IsDisabled    bool
	IsPrivate     bool
	DefaultBranch string
	Description   string
	Provider      Type
	Metadata      map[string]string
}

// ProviderConfigName returns the provenance stamp set by the resolver
// (metadata["provider_config_name"]), or "" if unset.
func (r Repository) ProviderConfigName() string {
	return r.Metadata["provider_config_name"]
}

// Organization is an account/tenant-level grouping handle.
type Organization struct {
	Name string
}

// Project is a sub-organization grouping handle, meaningful only for
// providers where SupportsProjects() is true.
type Project struct {
	Name    string
	OrgName string
}

// Type is a hosting platform family tag.
type Type string

const (
	TypeAzureDevOps Type = "azuredevops"
	TypeGitHub      Type = "github"
	TypeBitbucket   Type = "bitbucket"
)

// ListFilters bounds a ListRepositories call.
type ListFilters struct {
	Limit int
}
