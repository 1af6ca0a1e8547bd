package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
)

// SyncResult tells the push step what the rebase found.
type SyncResult string

const (
	SyncRebased   SyncResult = "rebased"
	SyncFirstPush SyncResult = "first-push"
)

// SynchronizeUseCase rebases local commits onto the upstream branch and
// restores the pre-pull state when that fails.
type SynchronizeUseCase struct {
	GitRepo repository.GitRepository
	Tree    repository.WorkingTree
}

// Execute runs the use case.
func (uc *SynchronizeUseCase) Execute(ctx context.Context, remote, branch string) (SyncResult, error) {
	before, err := uc.Tree.HeadCommit(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to snapshot HEAD: %w", domain.ErrSyncConflict, err)
	}
	_, pullErr := uc.GitRepo.PullRebase(ctx, remote, branch)
	if pullErr == nil {
		return SyncRebased, nil
	}
	switch repository.ClassOf(pullErr) {
	case repository.ClassNoUpstream:
		return SyncFirstPush, nil
	case repository.ClassAuthRequired:
		return "", uc.abort(ctx, domain.ErrPushAuthRequired, pullErr)
	case repository.ClassNetwork, repository.ClassTimeout:
		return "", uc.abort(ctx, domain.ErrNetworkUnreachable, pullErr)
	}
	return "", uc.restore(ctx, before, pullErr)
}

// abort clears any rebase the failed pull started and keeps kind as the
// reported failure. A failed abort is carried in the message.
func (uc *SynchronizeUseCase) abort(ctx context.Context, kind, pullErr error) error {
	if err := uc.GitRepo.AbortRebase(ctx); err != nil {
		return fmt.Errorf("%w: %w (rebase abort failed: %v)", kind, pullErr, err)
	}
	return fmt.Errorf("%w: %w", kind, pullErr)
}

// restore aborts the rebase and checks HEAD is back at the snapshot.
func (uc *SynchronizeUseCase) restore(ctx context.Context, before string, pullErr error) error {
	if err := uc.GitRepo.AbortRebase(ctx); err != nil {
		return fmt.Errorf("%w: %w (rebase abort failed: %v)", domain.ErrSyncConflict, pullErr, err)
	}
	after, err := uc.Tree.HeadCommit(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w (failed to read HEAD after abort: %v)", domain.ErrSyncConflict, pullErr, err)
	}
	if after != before {
		return fmt.Errorf("%w: HEAD moved from %s to %s after abort: %w", domain.ErrSyncConflict, before, after, pullErr)
	}
	return fmt.Errorf("%w: %w", domain.ErrSyncConflict, pullErr)
}
