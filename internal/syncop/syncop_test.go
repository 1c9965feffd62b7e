// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncop

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-io/mgit/internal/engine"
	"github.com/mgit-io/mgit/internal/provider"
)

func TestBuildPlan(t *testing.T) {
	repos := []provider.Repository{
		{Name: "missing", CloneURL: "https://github.com/acme/missing.git"},
		{Name: "clean", CloneURL: "https://github.com/acme/clean.git"},
		{Name: "dirty", CloneURL: "https://github.com/acme/dirty.git"},
		{Name: "nongit", CloneURL: "https://github.com/acme/nongit.git"},
	}
	states := []LocalRepoState{
		{Exists: false},
		{Exists: true, IsGitRepo: true, Dirty: false},
		{Exists: true, IsGitRepo: true, Dirty: true},
		{Exists: true, IsGitRepo: false},
	}

	planned := buildPlan(repos, states, false)
	require.Len(t, planned, 4)
	assert.Equal(t, ActionClone, planned[0].Action)
	assert.Equal(t, ActionPull, planned[1].Action)
	assert.Equal(t, ActionSkipDirty, planned[2].Action)
	assert.Equal(t, ActionSkipNonGit, planned[3].Action)
}

func TestBuildPlan_ForceOverridesEverything(t *testing.T) {
	repos := []provider.Repository{{Name: "r", CloneURL: "https://github.com/acme/r.git"}}
	states := []LocalRepoState{{Exists: true, IsGitRepo: true, Dirty: true}}

	planned := buildPlan(repos, states, true)
	assert.Equal(t, ActionForceReclone, planned[0].Action)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor([]engine.OperationOutcome{{Outcome: engine.OutcomeSuccess}, {Outcome: engine.OutcomeSkipExists}}))
	assert.Equal(t, 1, exitCodeFor([]engine.OperationOutcome{{Outcome: engine.OutcomeSuccess}, {Outcome: engine.OutcomeFailed}}))
}

func TestNormalizeTargetRoot_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	abs, err := normalizeTargetRoot("~/mgit-target")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "mgit-target"), abs)
}
