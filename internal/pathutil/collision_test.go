// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCollisions_NoCollision(t *testing.T) {
	resolved, err := ResolveCollisions([]CollisionInput{
		{CloneURL: "https://github.com/steveant/puray.git"},
		{CloneURL: "https://github.com/steveant/notes.git"},
	})
	require.NoError(t, err)
	assert.Equal(t, "puray", resolved["https://github.com/steveant/puray.git"])
	assert.Equal(t, "notes", resolved["https://github.com/steveant/notes.git"])
}

func TestResolveCollisions_OrgSuffixResolves(t *testing.T) {
	resolved, err := ResolveCollisions([]CollisionInput{
		{CloneURL: "https://github.com/org-a/auth.git"},
		{CloneURL: "https://github.com/org-b/auth.git"},
	})
	require.NoError(t, err)
	assert.Equal(t, "auth_org-a", resolved["https://github.com/org-a/auth.git"])
	assert.Equal(t, "auth_org-b", resolved["https://github.com/org-b/auth.git"])
}

func TestResolveCollisions_SameOrgDifferentHostFallsBackToSimpleHost(t *testing.T) {
	resolved, err := ResolveCollisions([]CollisionInput{
		{CloneURL: "https://github.com/acme/auth.git"},
		{CloneURL: "https://dev.azure.com/acme/_git/auth"},
	})
	require.NoError(t, err)

	names := map[string]bool{
		resolved["https://github.com/acme/auth.git"]:    true,
		resolved["https://dev.azure.com/acme/_git/auth"]: true,
	}
	assert.Len(t, names, 2)
	assert.Contains(t, resolved["https://github.com/acme/auth.git"], "auth_github_acme")
	assert.Contains(t, resolved["https://dev.azure.com/acme/_git/auth"], "auth_azure_acme")
}

func TestResolveCollisions_UnparsableURLFails(t *testing.T) {
	_, err := ResolveCollisions([]CollisionInput{
		{CloneURL: "::::bad", FallbackName: "auth"},
		{CloneURL: "https://github.com/acme/auth.git"},
	})
	assert.Error(t, err)
}
