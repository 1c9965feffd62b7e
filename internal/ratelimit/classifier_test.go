// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGitError(t *testing.T) {
	assert.Equal(t, ClassificationRetry, ClassifyGitError("Connection reset by peer"))
	assert.Equal(t, ClassificationPermanent, ClassifyGitError("repository 'foo' not found"))
	assert.Equal(t, ClassificationPermanent, ClassifyGitError("Authentication failed for 'https://...'"))
	assert.Equal(t, ClassificationRetry, ClassifyGitError("fatal: the remote end hung up unexpectedly"))
}

func TestIsEmptyRepoMessage(t *testing.T) {
	assert.True(t, IsEmptyRepoMessage("warning: You appear to have cloned an empty repository.\nfatal: your current branch does not have any commits yet"))
	assert.False(t, IsEmptyRepoMessage("fatal: repository not found"))
}
