package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
)

// PushBranchUseCase publishes the branch and sets upstream tracking.
type PushBranchUseCase struct {
	GitRepo repository.GitRepository
}

// Execute runs the use case.
func (uc *PushBranchUseCase) Execute(ctx context.Context, remote, branch string) error {
	_, err := uc.GitRepo.Push(ctx, remote, branch)
	if err == nil {
		return nil
	}
	switch repository.ClassOf(err) {
	case repository.ClassAuthRequired:
		return fmt.Errorf("%w: %w", domain.ErrPushAuthRequired, err)
	case repository.ClassNetwork, repository.ClassTimeout:
		return fmt.Errorf("%w: %w", domain.ErrNetworkUnreachable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrPushFailed, err)
	}
}
