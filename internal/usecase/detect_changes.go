package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
)

// DetectChangesUseCase reads the working tree status.
type DetectChangesUseCase struct {
	GitRepo repository.GitRepository
}

// Execute runs the use case.
func (uc *DetectChangesUseCase) Execute(ctx context.Context) (domain.ChangeSet, error) {
	out, err := uc.GitRepo.Status(ctx)
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("failed to read working tree status: %w", err)
	}
	return domain.ParsePorcelain(out), nil
}

// PendingCommits returns how many local commits the tracked upstream lacks.
// A branch without upstream reports zero.
func (uc *DetectChangesUseCase) PendingCommits(ctx context.Context) int {
	n, err := uc.GitRepo.AheadOfUpstream(ctx)
	if err != nil {
		return 0
	}
	return n
}
