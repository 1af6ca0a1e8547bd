package repository

import (
	"context"
	"time"
)

// GitRepository defines the git CLI operations the sync workflow issues.
type GitRepository interface {
	Version(ctx context.Context) (string, error)
	ConfigValue(ctx context.Context, key string) (string, error)
	Status(ctx context.Context) (string, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	AheadOfUpstream(ctx context.Context) (int, error)
	PullRebase(ctx context.Context, remote, branch string) (string, error)
	AbortRebase(ctx context.Context) error
	Push(ctx context.Context, remote, branch string) (string, error)
}

// WorkingTree inspects and reconciles repository state without the git CLI.
type WorkingTree interface {
	Root() string
	CurrentBranch(ctx context.Context) (string, error)
	HeadCommit(ctx context.Context) (string, error)
	EnsureRemote(ctx context.Context, name, url string) (bool, error)
	RebaseInProgress(ctx context.Context) (bool, error)
}

// CommandOptions configures a git CLI adapter bound to one working tree.
type CommandOptions struct {
	Dir            string
	Env            map[string]string
	CommandTimeout time.Duration
	NetworkTimeout time.Duration
	AuthorName     string
	AuthorEmail    string
}

// Opener opens working trees and binds git CLI adapters to them.
type Opener interface {
	Open(ctx context.Context, path string) (WorkingTree, error)
	Command(opts CommandOptions) GitRepository
}
