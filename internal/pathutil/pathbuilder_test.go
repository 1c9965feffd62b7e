// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRepoPath_Hierarchical(t *testing.T) {
	segs := BuildRepoPath("https://github.com/steveant/puray.git", false)
	assert.Equal(t, []string{"github.com", "steveant", "puray"}, segs)
}

func TestBuildRepoPath_StripsAzureDefaultCollectionAndUnderscoreSegments(t *testing.T) {
	segs := BuildRepoPath("https://myorg.visualstudio.com/DefaultCollection/myproj/_git/myrepo", false)
	assert.Equal(t, []string{"myorg.visualstudio.com", "myproj", "myrepo"}, segs)
}

func TestBuildRepoPath_Flat(t *testing.T) {
	segs := BuildRepoPath("https://github.com/steveant/puray.git", true)
	assert.Equal(t, []string{"puray"}, segs)
}

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "unnamed", SanitizeSegment(""))
	assert.Equal(t, "CON_", SanitizeSegment("CON"))
	assert.Equal(t, "a-b", SanitizeSegment("a/b"))
	assert.Equal(t, "no-trailing-dots", SanitizeSegment("no-trailing-dots..."))
}

func TestBuildRepoPath_FallbackOnUnparsableURL(t *testing.T) {
	segs := BuildRepoPath("::::not-a-url<>", false)
	assert.Len(t, segs, 1)
	assert.False(t, strings.ContainsAny(segs[0], "<>"))
}
