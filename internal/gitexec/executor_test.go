// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitexec

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-io/mgit/internal/logger"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	log := logger.New("test", logger.LevelError, logger.FileConfig{})
	e, err := New(log, DefaultConfig())
	require.NoError(t, err)
	return e
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "-C", dir, "init")
	require.NoError(t, cmd.Run())
	return dir
}

func TestIsEmpty_NoGitDir(t *testing.T) {
	e := newTestExecutor(t)
	dir := t.TempDir()
	assert.True(t, e.IsEmpty(context.Background(), dir))
}

func TestIsEmpty_NoCommitsYet(t *testing.T) {
	e := newTestExecutor(t)
	dir := initRepo(t)
	assert.True(t, e.IsEmpty(context.Background(), dir))
}

func TestStatusPorcelain_DirtyAfterUntrackedFile(t *testing.T) {
	e := newTestExecutor(t)
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644))

	out, err := e.StatusPorcelain(context.Background(), dir)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRemoteURL_UnsetReturnsEmpty(t *testing.T) {
	e := newTestExecutor(t)
	dir := initRepo(t)

	url, err := e.RemoteURL(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, url)
}
