// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package query parses and matches the org/project/repo query pattern used
// by `mgit sync` and `mgit list`, including its glob-with-prefix-fallback
// matching semantics. Grounded on
// original_source/mgit/utils/pattern_matching.py.
package query

import (
	"path"
	"strings"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
)

// allowedChars is the character class a valid query may contain.
const allowedChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789*?/-_."

// Pattern is a parsed three-segment query: org/project/repo, any segment of
// which may be a glob. Project is retained even for providers without a
// project tier so callers can transport it.
type Pattern struct {
	Raw           string
	Org           string
	Project       string
	Repo          string
	CaseSensitive bool
}

// Validate reports the first reason query is not acceptable input, or nil.
func Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return mgiterrors.NewValidationError("query must not be empty", "query")
	}
	for _, r := range query {
		if !strings.ContainsRune(allowedChars, r) {
			return mgiterrors.NewValidationError("query contains disallowed characters", "query").
				WithContext("value", query)
		}
	}
	if strings.Count(query, "/") > 2 {
		return mgiterrors.NewValidationError("query has too many segments (max org/project/repo)", "query").
			WithContext("value", query)
	}
	return nil
}

// Parse splits query on "/", padding missing trailing segments with "*".
func Parse(query string) (*Pattern, error) {
	if err := Validate(query); err != nil {
		return nil, err
	}

	segments := strings.Split(query, "/")
	for len(segments) < 3 {
		segments = append(segments, "*")
	}

	p := &Pattern{
		Raw:     query,
		Org:     segments[0],
		Project: segments[1],
		Repo:    segments[2],
	}
	if !p.CaseSensitive {
		p.Org = strings.ToLower(p.Org)
		p.Project = strings.ToLower(p.Project)
		p.Repo = strings.ToLower(p.Repo)
	}
	return p, nil
}

// IsWildcard reports whether any segment of the pattern contains a glob
// character.
func (p *Pattern) IsWildcard() bool {
	return hasWildcard(p.Org) || hasWildcard(p.Project) || hasWildcard(p.Repo)
}

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Matches reports whether text matches glob, case-insensitively unless
// caseSensitive is true. A glob with no wildcard characters additionally
// falls back to a prefix match ("myorg" matches "myorg.visualstudio.com"),
// but only when the literal match fails and only when glob itself has no
// wildcards — a wildcard glob never gets the fallback, so "f?o" does not
// match "fooo".
func Matches(text, glob string, caseSensitive bool) bool {
	t, g := text, glob
	if !caseSensitive {
		t = strings.ToLower(t)
		g = strings.ToLower(g)
	}

	if ok, err := path.Match(g, t); err == nil && ok {
		return true
	}

	if !hasWildcard(g) {
		if ok, err := path.Match(g+"*", t); err == nil && ok {
			return true
		}
	}

	return false
}
