package repository

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

func newTestCLI(dir string) GitRepository {
	return NewGitCLI(CommandOptions{
		Dir:            dir,
		CommandTimeout: 30 * time.Second,
		NetworkTimeout: 30 * time.Second,
		AuthorName:     "Test User",
		AuthorEmail:    "test@example.com",
	})
}

func TestGitCLI_Workflow(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir, _ := setupTestRepo(t)
	cli := newTestCLI(dir)

	t.Run("Should report the git version", func(t *testing.T) {
		out, err := cli.Version(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, "git version")
	})
	t.Run("Should report a clean tree as empty status", func(t *testing.T) {
		out, err := cli.Status(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("Should list untracked files individually and commit them", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "b.md"), []byte("b"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("changed"), 0644))
		out, err := cli.Status(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, "?? docs/a.md")
		assert.Contains(t, out, "?? docs/b.md")
		assert.Contains(t, out, " M test.txt")

		require.NoError(t, cli.AddAll(ctx))
		require.NoError(t, cli.Commit(ctx, "Auto-update: 2 new, 1 modified file(s)"))
		out, err = cli.Status(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("Should classify an empty commit as nothing to commit", func(t *testing.T) {
		err := cli.Commit(ctx, "empty")
		require.Error(t, err)
		assert.Equal(t, ClassNothingToCommit, ClassOf(err))
	})
	t.Run("Should return empty for an unset config key", func(t *testing.T) {
		value, err := cli.ConfigValue(ctx, "autopush.test.unset")
		require.NoError(t, err)
		assert.Empty(t, value)
	})
	t.Run("Should treat aborting without a rebase as a no-op", func(t *testing.T) {
		assert.NoError(t, cli.AbortRebase(ctx))
	})
}

func TestGitCLI_Timeout(t *testing.T) {
	requireGit(t)
	dir, _ := setupTestRepo(t)
	cli := NewGitCLI(CommandOptions{Dir: dir, CommandTimeout: time.Nanosecond})
	_, err := cli.Status(context.Background())
	require.Error(t, err)
	assert.Equal(t, ClassTimeout, ClassOf(err))
}

func TestGitCLI_ZeroTimeout(t *testing.T) {
	requireGit(t)
	dir, _ := setupTestRepo(t)
	t.Run("Should run commands bounded only by the context", func(t *testing.T) {
		cli := NewGitCLI(CommandOptions{Dir: dir})
		out, err := cli.Version(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out, "git version")
	})
}
