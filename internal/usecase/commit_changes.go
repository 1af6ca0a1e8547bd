package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
)

// CommitChangesUseCase stages everything and records an auto-update commit.
type CommitChangesUseCase struct {
	GitRepo repository.GitRepository
	Clock   func() time.Time
}

// Execute returns the commit message, or "" when git found nothing to commit.
func (uc *CommitChangesUseCase) Execute(ctx context.Context, changes domain.ChangeSet) (string, error) {
	if err := uc.GitRepo.AddAll(ctx); err != nil {
		return "", fmt.Errorf("%w: failed to stage changes: %w", domain.ErrCommitFailed, err)
	}
	now := time.Now
	if uc.Clock != nil {
		now = uc.Clock
	}
	message := changes.CommitMessage(now())
	if err := uc.GitRepo.Commit(ctx, message); err != nil {
		if repository.ClassOf(err) == repository.ClassNothingToCommit {
			return "", nil
		}
		return "", fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
	}
	return message, nil
}
