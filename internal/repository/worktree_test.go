package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/autopush/internal/domain"
)

func setupTestRepo(t *testing.T) (string, *git.Repository) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "test.txt"), []byte("test content"), 0644)
	require.NoError(t, err)
	_, err = wt.Add("test.txt")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return dir, repo
}

func TestNewWorkingTree(t *testing.T) {
	fs := afero.NewOsFs()
	t.Run("Should open a working tree root", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		tree, err := NewWorkingTree(fs, dir)
		require.NoError(t, err)
		assert.Equal(t, dir, tree.Root())
	})
	t.Run("Should reject a subdirectory of a working tree", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		sub := filepath.Join(dir, "nested")
		require.NoError(t, os.Mkdir(sub, 0755))
		_, err := NewWorkingTree(fs, sub)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotARepository))
	})
	t.Run("Should reject a plain directory", func(t *testing.T) {
		_, err := NewWorkingTree(fs, t.TempDir())
		assert.True(t, errors.Is(err, domain.ErrNotARepository))
	})
	t.Run("Should reject a missing path", func(t *testing.T) {
		_, err := NewWorkingTree(fs, filepath.Join(t.TempDir(), "missing"))
		assert.True(t, errors.Is(err, domain.ErrNotARepository))
	})
	t.Run("Should reject a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := NewWorkingTree(fs, file)
		assert.True(t, errors.Is(err, domain.ErrNotARepository))
	})
	t.Run("Should reject a bare repository", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, true)
		require.NoError(t, err)
		_, err = NewWorkingTree(fs, dir)
		assert.True(t, errors.Is(err, domain.ErrNotARepository))
	})
}

func TestWorkingTree_CurrentBranch(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return the checked-out branch", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		head, err := repo.Head()
		require.NoError(t, err)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		branch, err := tree.CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, head.Name().Short(), branch)
	})
	t.Run("Should return the unborn branch of an empty repository", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		branch, err := tree.CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "master", branch)
	})
	t.Run("Should refuse to name a branch when HEAD is detached", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		head, err := repo.Head()
		require.NoError(t, err)
		require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, head.Hash())))
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		branch, err := tree.CurrentBranch(ctx)
		assert.ErrorIs(t, err, ErrDetachedHead)
		assert.Empty(t, branch)
	})
}

func TestWorkingTree_HeadCommit(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return the HEAD hash", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		head, err := repo.Head()
		require.NoError(t, err)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		sha, err := tree.HeadCommit(ctx)
		require.NoError(t, err)
		assert.Equal(t, head.Hash().String(), sha)
	})
	t.Run("Should return empty for an unborn branch", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		sha, err := tree.HeadCommit(ctx)
		require.NoError(t, err)
		assert.Empty(t, sha)
	})
}

func TestWorkingTree_EnsureRemote(t *testing.T) {
	ctx := context.Background()
	t.Run("Should add a missing remote", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		changed, err := tree.EnsureRemote(ctx, "origin", "git@github.com:octo/widget.git")
		require.NoError(t, err)
		assert.True(t, changed)
		remote, err := repo.Remote("origin")
		require.NoError(t, err)
		assert.Equal(t, []string{"git@github.com:octo/widget.git"}, remote.Config().URLs)
	})
	t.Run("Should leave a matching remote untouched", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:octo/widget.git"}})
		require.NoError(t, err)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		changed, err := tree.EnsureRemote(ctx, "origin", "git@github.com:octo/widget.git")
		require.NoError(t, err)
		assert.False(t, changed)
	})
	t.Run("Should update a mismatched remote", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		tree, err := NewWorkingTree(afero.NewOsFs(), dir)
		require.NoError(t, err)
		_, err = tree.EnsureRemote(ctx, "origin", "https://github.com/octo/old.git")
		require.NoError(t, err)
		changed, err := tree.EnsureRemote(ctx, "origin", "git@github.com:octo/widget.git")
		require.NoError(t, err)
		assert.True(t, changed)
		reopened, err := git.PlainOpen(dir)
		require.NoError(t, err)
		remote, err := reopened.Remote("origin")
		require.NoError(t, err)
		assert.Equal(t, []string{"git@github.com:octo/widget.git"}, remote.Config().URLs)
	})
}

func TestWorkingTree_RebaseInProgress(t *testing.T) {
	ctx := context.Background()
	dir, _ := setupTestRepo(t)
	tree, err := NewWorkingTree(afero.NewOsFs(), dir)
	require.NoError(t, err)
	inProgress, err := tree.RebaseInProgress(ctx)
	require.NoError(t, err)
	assert.False(t, inProgress)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "rebase-merge"), 0755))
	inProgress, err = tree.RebaseInProgress(ctx)
	require.NoError(t, err)
	assert.True(t, inProgress)
}
