// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PadsMissingSegments(t *testing.T) {
	p, err := Parse("steveant")
	require.NoError(t, err)
	assert.Equal(t, "steveant", p.Org)
	assert.Equal(t, "*", p.Project)
	assert.Equal(t, "*", p.Repo)
}

func TestParse_RejectsTooManySegments(t *testing.T) {
	_, err := Parse("a/b/c/d")
	assert.Error(t, err)
}

func TestParse_RejectsDisallowedChars(t *testing.T) {
	_, err := Parse("org/<script>/repo")
	assert.Error(t, err)
}

func TestMatches_PlainGlob(t *testing.T) {
	assert.True(t, Matches("demo", "demo", false))
	assert.True(t, Matches("demo", "d*", false))
	assert.False(t, Matches("demo", "x*", false))
}

func TestMatches_PrefixFallbackOnlyWithoutWildcards(t *testing.T) {
	assert.True(t, Matches("myorg.visualstudio.com", "myorg", false))
	// "foo" has no wildcard and does not literally equal "foobar", so the
	// fallback tries "foo*" against "foobar" and succeeds.
	assert.True(t, Matches("foobar", "foo", false))
	// "bar" has no wildcard and is not a prefix of "foobar" at all.
	assert.False(t, Matches("foobar", "bar", false))
}

func TestMatches_CaseInsensitiveByDefault(t *testing.T) {
	assert.True(t, Matches("MyOrg", "myorg", false))
	assert.False(t, Matches("MyOrg", "myorg", true))
}
