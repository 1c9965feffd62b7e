// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"iter"
)

// GitProvider is the narrow, uniform contract every hosting adapter
// implements. Listing is a pull-based iterator (iter.Seq2) rather than a
// materialized slice: callers can stop early, and a provider MAY yield a
// final non-nil error after some items without invalidating the ones
// already produced (partial success).
type GitProvider interface {
	// Name identifies the provider family for logs and provenance stamps,
	// e.g. "github". Identity is this name plus DefaultAPIVersion.
	Name() string
	DefaultAPIVersion() string

	ValidateConfig() error
	Authenticate(ctx context.Context) error
	TestConnection(ctx context.Context) error

	ListOrganizations(ctx context.Context) ([]Organization, error)
	SupportsProjects() bool
	ListProjects(ctx context.Context, org string) ([]Project, error)

	// ListRepositories streams repositories under org (and project, when
	// SupportsProjects() is true), honoring filters.Limit if nonzero.
	ListRepositories(ctx context.Context, org, project string, filters ListFilters) iter.Seq2[Repository, error]

	// GetRepository returns nil, nil if the repository does not exist.
	// Only genuine faults (auth, network) are returned as errors.
	GetRepository(ctx context.Context, org, project, repo string) (*Repository, error)

	GetAuthenticatedCloneURL(repo Repository) (string, error)

	Close() error
}

// CountRepositories drains seq, counting successfully yielded repositories.
// A free function over the interface rather than a GitProvider method,
// per spec.md §9's guidance to move default utilities off the narrow
// interface.
func CountRepositories(seq iter.Seq2[Repository, error]) (int, error) {
	count := 0
	var firstErr error
	for _, err := range seq {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	return count, firstErr
}
