package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/autopush/internal/domain"
)

// ErrNoRepositories is returned when a batch has nothing to run.
var ErrNoRepositories = errors.New("no enabled repositories configured")

// Runner runs one sync request.
type Runner interface {
	Run(ctx context.Context, req SyncRequest) domain.RunOutcome
}

// BatchEntry is one repository of a batch run.
type BatchEntry struct {
	Name    string
	Request SyncRequest
}

// BatchResult pairs an entry name with its outcome.
type BatchResult struct {
	Name    string
	Outcome domain.RunOutcome
}

// BatchReport aggregates the outcomes of a batch run.
type BatchReport struct {
	Results []BatchResult
	Skipped []string
}

// Succeeded counts the runs that need no attention.
func (r BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Success() {
			n++
		}
	}
	return n
}

// Total counts every entry, including those skipped after cancellation.
func (r BatchReport) Total() int {
	return len(r.Results) + len(r.Skipped)
}

// ExitCode is zero only when every repository succeeded.
func (r BatchReport) ExitCode() int {
	if r.Succeeded() == r.Total() {
		return 0
	}
	return 1
}

// Summary renders one line per repository and the completion count.
func (r BatchReport) Summary() string {
	var b strings.Builder
	for _, res := range r.Results {
		mark := "ok"
		if !res.Outcome.Success() {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "%-4s %s: %s", mark, res.Name, res.Outcome.Status)
		if res.Outcome.Kind != domain.KindNone {
			fmt.Fprintf(&b, " (%s at %s)", res.Outcome.Kind, res.Outcome.Stage)
		}
		b.WriteString("\n")
	}
	for _, name := range r.Skipped {
		fmt.Fprintf(&b, "SKIP %s: cancelled\n", name)
	}
	fmt.Fprintf(&b, "Completed: %d/%d repositories", r.Succeeded(), r.Total())
	return b.String()
}

// BatchOrchestrator runs the sync workflow for several repositories in order.
type BatchOrchestrator struct {
	runner Runner
}

// NewBatchOrchestrator creates a new batch orchestrator.
func NewBatchOrchestrator(runner Runner) *BatchOrchestrator {
	return &BatchOrchestrator{runner: runner}
}

// Execute runs each entry sequentially. Entries left when ctx is cancelled
// are reported as skipped.
func (b *BatchOrchestrator) Execute(ctx context.Context, entries []BatchEntry) (BatchReport, error) {
	if len(entries) == 0 {
		return BatchReport{}, ErrNoRepositories
	}
	report := BatchReport{Results: make([]BatchResult, 0, len(entries))}
	for i, entry := range entries {
		if ctx.Err() != nil {
			for _, rest := range entries[i:] {
				report.Skipped = append(report.Skipped, rest.Name)
			}
			return report, fmt.Errorf("batch interrupted: %w", ctx.Err())
		}
		outcome := b.runner.Run(ctx, entry.Request)
		report.Results = append(report.Results, BatchResult{Name: entry.Name, Outcome: outcome})
	}
	return report, nil
}
