package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"

	"github.com/compozy/autopush/internal/domain"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD names no branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// rebaseMarkers are the directories git keeps under .git while a rebase runs.
var rebaseMarkers = []string{"rebase-merge", "rebase-apply"}

// workingTree is the go-git implementation of the WorkingTree interface.
type workingTree struct {
	fs   afero.Fs
	root string
	repo *git.Repository
}

// NewWorkingTree opens path, which must be the root of a non-bare working tree.
func NewWorkingTree(fs afero.Fs, path string) (WorkingTree, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid path %s: %v", domain.ErrNotARepository, path, err)
	}
	info, err := fs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNotARepository, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrNotARepository, abs)
	}
	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNotARepository, abs, err)
	}
	if _, err := repo.Worktree(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNotARepository, abs, err)
	}
	return &workingTree{fs: fs, root: abs, repo: repo}, nil
}

// Root returns the absolute working tree path.
func (w *workingTree) Root() string {
	return w.root
}

// CurrentBranch returns the checked-out branch, including an unborn one.
func (w *workingTree) CurrentBranch(_ context.Context) (string, error) {
	head, err := w.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", fmt.Errorf("%w at %s", ErrDetachedHead, head.Hash())
}

// HeadCommit returns the SHA of HEAD, or "" on an unborn branch.
func (w *workingTree) HeadCommit(_ context.Context) (string, error) {
	head, err := w.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// EnsureRemote creates the remote or points it at url. It reports whether
// the configuration changed.
func (w *workingTree) EnsureRemote(_ context.Context, name, url string) (bool, error) {
	remote, err := w.repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		if _, err := w.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
			return false, fmt.Errorf("failed to add remote %s: %w", name, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 1 && urls[0] == url {
		return false, nil
	}
	cfg, err := w.repo.Config()
	if err != nil {
		return false, fmt.Errorf("failed to get config: %w", err)
	}
	cfg.Remotes[name].URLs = []string{url}
	if err := w.repo.Storer.SetConfig(cfg); err != nil {
		return false, fmt.Errorf("failed to update remote %s: %w", name, err)
	}
	return true, nil
}

// RebaseInProgress reports whether git left rebase state behind.
func (w *workingTree) RebaseInProgress(_ context.Context) (bool, error) {
	for _, marker := range rebaseMarkers {
		exists, err := afero.DirExists(w.fs, filepath.Join(w.root, git.GitDirName, marker))
		if err != nil {
			return false, fmt.Errorf("failed to check %s: %w", marker, err)
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

// gitOpener is the default Opener backed by go-git and the git CLI.
type gitOpener struct {
	fs afero.Fs
}

// NewOpener creates an Opener that reads working trees from fs.
func NewOpener(fs afero.Fs) Opener {
	return &gitOpener{fs: fs}
}

func (o *gitOpener) Open(_ context.Context, path string) (WorkingTree, error) {
	return NewWorkingTree(o.fs, path)
}

func (o *gitOpener) Command(opts CommandOptions) GitRepository {
	return NewGitCLI(opts)
}
