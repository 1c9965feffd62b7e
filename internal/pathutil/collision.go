// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package pathutil

import (
	"net/url"
	"strconv"
	"strings"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
)

// CollisionInput is the minimal shape the collision resolver needs from a
// discovered repository.
type CollisionInput struct {
	CloneURL     string
	FallbackName string
}

// ResolveCollisions maps each clone URL to a unique, filesystem-safe
// directory name for flat layout. Singleton base-name groups keep the base
// name; colliding groups try "<base>_<org>", then
// "<base>_<simpleHost>_<org>", then a numeric suffix as a last resort.
// A clone URL that cannot be parsed into host/org fails the whole
// resolution with a CollisionResolutionError rather than silently
// colliding, per spec.
func ResolveCollisions(items []CollisionInput) (map[string]string, error) {
	groups := make(map[string][]CollisionInput)
	order := make(map[string]int, len(items))
	for i, item := range items {
		base := extractRepoName(item.CloneURL)
		if base == "" {
			base = item.FallbackName
		}
		groups[base] = append(groups[base], item)
		order[item.CloneURL] = i
	}

	resolved := make(map[string]string, len(items))
	for base, group := range groups {
		if len(group) == 1 {
			resolved[group[0].CloneURL] = base
			continue
		}
		if err := resolveGroup(base, group, order, resolved); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func resolveGroup(base string, group []CollisionInput, order map[string]int, resolved map[string]string) error {
	orgBuckets := make(map[string][]CollisionInput)
	orgBucketOrder := make([]string, 0, len(group))

	for _, item := range group {
		host, org, ok := repoComponents(item.CloneURL)
		if !ok {
			return mgiterrors.NewCollisionResolutionError(base).
				WithContext("clone_url", item.CloneURL)
		}
		candidate := base + "_" + org
		if _, seen := orgBuckets[candidate]; !seen {
			orgBucketOrder = append(orgBucketOrder, candidate)
		}
		orgBuckets[candidate] = append(orgBuckets[candidate], item)
		_ = host
	}

	for _, candidate := range orgBucketOrder {
		bucket := orgBuckets[candidate]
		if len(bucket) == 1 {
			resolved[bucket[0].CloneURL] = candidate
			continue
		}
		if err := resolveWithProvider(base, bucket, resolved); err != nil {
			return err
		}
	}
	return nil
}

func resolveWithProvider(base string, group []CollisionInput, resolved map[string]string) error {
	used := make(map[string]bool)

	for _, item := range group {
		host, org, ok := repoComponents(item.CloneURL)
		if !ok {
			return mgiterrors.NewCollisionResolutionError(base).
				WithContext("clone_url", item.CloneURL)
		}

		candidate := base + "_" + simplifyHost(host) + "_" + org
		final := candidate
		for counter := 2; used[final]; counter++ {
			final = candidate + "_" + strconv.Itoa(counter)
		}
		used[final] = true
		resolved[item.CloneURL] = final
	}
	return nil
}

// repoComponents returns (host, firstPathSegment) for a clone URL.
func repoComponents(cloneURL string) (host, org string, ok bool) {
	parsed, err := url.Parse(cloneURL)
	if err != nil || parsed.Hostname() == "" {
		return "", "", false
	}
	rawPath := strings.TrimPrefix(parsed.Path, "/")
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		decoded = rawPath
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == "" || strings.HasPrefix(seg, "_") {
			continue
		}
		if strings.EqualFold(seg, "DefaultCollection") {
			continue
		}
		return parsed.Hostname(), seg, true
	}
	return "", "", false
}

// extractRepoName returns the final, ".git"-stripped path segment of a
// clone URL, or "" if it cannot be parsed.
func extractRepoName(cloneURL string) string {
	parsed, err := url.Parse(cloneURL)
	if err != nil {
		return ""
	}
	rawPath := strings.Trim(parsed.Path, "/")
	if rawPath == "" {
		return ""
	}
	segments := strings.Split(rawPath, "/")
	name := segments[len(segments)-1]
	name = strings.TrimSuffix(name, ".git")
	return name
}

func simplifyHost(host string) string {
	lower := strings.ToLower(host)
	switch {
	case strings.Contains(lower, "github"):
		return "github"
	case strings.Contains(lower, "azure"), strings.Contains(lower, "visualstudio"):
		return "azure"
	case strings.Contains(lower, "bitbucket"):
		return "bitbucket"
	case strings.Contains(lower, "gitlab"):
		return "gitlab"
	default:
		parts := strings.SplitN(host, ".", 2)
		return parts[0]
	}
}

