package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
	"github.com/compozy/autopush/internal/service"
	"github.com/compozy/autopush/internal/usecase"
)

// SyncOptions tunes a single run.
type SyncOptions struct {
	RemoteName     string
	Branch         string
	LogPath        string
	SSHKeyPath     string
	AuthorName     string
	AuthorEmail    string
	CommandTimeout time.Duration
	NetworkTimeout time.Duration
	PushPending    bool // push local commits ahead of upstream even when the tree is clean
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.RemoteName == "" {
		o.RemoteName = domain.DefaultRemoteName
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	if o.NetworkTimeout <= 0 {
		o.NetworkTimeout = DefaultNetworkTimeout
	}
	return o
}

// SyncRequest names the working tree and the remote it is published to.
type SyncRequest struct {
	RepositoryPath string
	RemoteURL      string
	Options        SyncOptions
}

// LoggerFactory creates the logger a run writes its record to.
type LoggerFactory interface {
	Path(name string) string
	New(path string, fields ...zap.Field) (*zap.Logger, func() error, error)
}

// SyncOrchestrator runs detect, commit, rebase and push for one repository.
type SyncOrchestrator struct {
	fsRepo  repository.FileSystemRepository
	opener  repository.Opener
	prober  service.ConnectivityProber
	checker service.PermissionChecker
	logs    LoggerFactory
	clock   func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	fsRepo repository.FileSystemRepository,
	opener repository.Opener,
	prober service.ConnectivityProber,
	checker service.PermissionChecker,
	logs LoggerFactory,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		fsRepo:  fsRepo,
		opener:  opener,
		prober:  prober,
		checker: checker,
		logs:    logs,
		clock:   time.Now,
	}
}

// syncRun carries the state of one Run call between steps.
type syncRun struct {
	req     SyncRequest
	opts    SyncOptions
	link    domain.RemoteLink
	tree    repository.WorkingTree
	git     repository.GitRepository
	auth    service.AuthStrategy
	log     *zap.Logger
	outcome domain.RunOutcome
}

func (r *syncRun) enter(stage domain.Stage) {
	r.outcome.Stage = stage
}

func (r *syncRun) stop(status domain.OutcomeStatus, kind domain.FailureKind, err error) {
	r.outcome.Status = status
	r.outcome.Kind = kind
	r.outcome.Err = err
}

func (r *syncRun) fail(err error, fallback domain.FailureKind) {
	r.stop(domain.OutcomeFailed, domain.KindOf(err, fallback), err)
}

// Run executes the workflow and always returns a classified outcome.
func (o *SyncOrchestrator) Run(ctx context.Context, req SyncRequest) (outcome domain.RunOutcome) {
	run := &syncRun{
		req:  req,
		opts: req.Options.withDefaults(),
		log:  zap.NewNop(),
		outcome: domain.RunOutcome{
			RunID:      uuid.NewString(),
			Repository: req.RepositoryPath,
			Stage:      domain.StageValidation,
			StartedAt:  o.clock(),
		},
	}
	flush := func() error { return nil }
	defer func() {
		if r := recover(); r != nil {
			o.recoverPanic(run, r)
		}
		run.outcome.FinishedAt = o.clock()
		o.logOutcome(run)
		_ = flush()
		outcome = run.outcome
	}()
	var err error
	if flush, err = o.openLog(run); err != nil {
		run.fail(fmt.Errorf("%w: failed to open run log: %w", domain.ErrInternal, err), domain.KindInternal)
		return
	}
	if !o.validate(ctx, run) || !o.precheckAuth(ctx, run) {
		return
	}
	changes, proceed := o.detectChanges(ctx, run)
	if !proceed {
		return
	}
	if !changes.IsEmpty() && !o.commit(ctx, run, changes) {
		return
	}
	if !o.checkConnectivity(ctx, run) || !o.synchronize(ctx, run) {
		return
	}
	o.push(ctx, run)
	return
}

// openLog names the log after the remote when no path is configured.
func (o *SyncOrchestrator) openLog(run *syncRun) (func() error, error) {
	path := run.opts.LogPath
	if path == "" {
		name := filepath.Base(filepath.Clean(run.req.RepositoryPath))
		if link, err := domain.ParseRemoteLink(run.opts.RemoteName, run.req.RemoteURL); err == nil {
			name = link.Slug()
		}
		path = o.logs.Path(name)
	}
	logger, flush, err := o.logs.New(path,
		zap.String("run_id", run.outcome.RunID),
		zap.String("repository", run.req.RepositoryPath),
		zap.String("remote", domain.RedactURL(run.req.RemoteURL)),
	)
	if err != nil {
		return func() error { return nil }, err
	}
	run.log = logger
	return flush, nil
}

func (o *SyncOrchestrator) validate(ctx context.Context, run *syncRun) bool {
	run.enter(domain.StageValidation)
	tree, err := o.opener.Open(ctx, run.req.RepositoryPath)
	if err != nil {
		run.fail(err, domain.KindNotARepository)
		return false
	}
	run.tree = tree
	link, err := domain.ParseRemoteLink(run.opts.RemoteName, run.req.RemoteURL)
	if err != nil {
		run.fail(err, domain.KindInvalidRemote)
		return false
	}
	if err := ValidateRemoteName(link.Name); err != nil {
		run.fail(fmt.Errorf("%w: %w", domain.ErrInvalidRemote, err), domain.KindInvalidRemote)
		return false
	}
	run.link = link
	run.auth, err = service.NewAuthStrategy(o.fsRepo, link, service.AuthOptions{SSHKeyPath: run.opts.SSHKeyPath})
	if err != nil {
		run.fail(err, domain.KindInvalidRemote)
		return false
	}
	run.git = o.opener.Command(repository.CommandOptions{
		Dir:            tree.Root(),
		Env:            run.auth.Env(),
		CommandTimeout: run.opts.CommandTimeout,
		NetworkTimeout: run.opts.NetworkTimeout,
		AuthorName:     run.opts.AuthorName,
		AuthorEmail:    run.opts.AuthorEmail,
	})
	if err := o.checkGitVersion(ctx, run); err != nil {
		run.fail(err, domain.KindToolUnavailable)
		return false
	}
	if err := o.abortInterruptedRebase(ctx, run); err != nil {
		run.fail(err, domain.KindSyncConflict)
		return false
	}
	updated, err := tree.EnsureRemote(ctx, link.Name, link.URL)
	if err != nil {
		run.fail(fmt.Errorf("%w: %w", domain.ErrInvalidRemote, err), domain.KindInvalidRemote)
		return false
	}
	if updated {
		run.log.Info("Configured remote", zap.String("name", link.Name), zap.String("url", link.Redacted()))
	}
	branch, err := o.resolveBranch(ctx, run)
	if err != nil {
		run.fail(fmt.Errorf("%w: %w", domain.ErrInvalidRemote, err), domain.KindInvalidRemote)
		return false
	}
	run.outcome.Branch = branch
	run.log.Debug("Repository validated",
		zap.String("root", tree.Root()),
		zap.String("branch", branch),
		zap.String("transport", string(link.Transport)),
		zap.String("auth", run.auth.Name()))
	return true
}

func (o *SyncOrchestrator) checkGitVersion(ctx context.Context, run *syncRun) error {
	out, err := run.git.Version(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrToolUnavailable, err)
	}
	version, err := domain.ParseGitVersion(out)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrToolUnavailable, err)
	}
	ok, err := version.Satisfies(domain.MinimumGitVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrToolUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: git %s does not satisfy %s", domain.ErrToolUnavailable, version, domain.MinimumGitVersion)
	}
	return nil
}

// abortInterruptedRebase clears a rebase left behind by a killed earlier run.
func (o *SyncOrchestrator) abortInterruptedRebase(ctx context.Context, run *syncRun) error {
	inProgress, err := run.tree.RebaseInProgress(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect rebase state: %w", err)
	}
	if !inProgress {
		return nil
	}
	run.log.Warn("Aborting interrupted rebase")
	if err := run.git.AbortRebase(ctx); err != nil {
		return fmt.Errorf("%w: failed to abort interrupted rebase: %w", domain.ErrSyncConflict, err)
	}
	return nil
}

// resolveBranch returns the checked-out branch. A configured branch must name
// it, since pull and push act on the local branch of that name.
func (o *SyncOrchestrator) resolveBranch(ctx context.Context, run *syncRun) (string, error) {
	if run.opts.Branch != "" {
		if err := ValidateBranchName(run.opts.Branch); err != nil {
			return "", err
		}
	}
	current, err := run.tree.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve branch: %w", err)
	}
	if run.opts.Branch != "" && run.opts.Branch != current {
		return "", fmt.Errorf("configured branch %q is not checked out (HEAD is on %q)", run.opts.Branch, current)
	}
	if err := ValidateBranchName(current); err != nil {
		return "", err
	}
	return current, nil
}

func (o *SyncOrchestrator) precheckAuth(ctx context.Context, run *syncRun) bool {
	run.enter(domain.StageAuth)
	if err := run.auth.Precheck(ctx, run.git, run.log); err != nil {
		run.fail(err, domain.KindAuthNotConfigured)
		return false
	}
	return true
}

// detectChanges reports whether the run continues past detection.
func (o *SyncOrchestrator) detectChanges(ctx context.Context, run *syncRun) (domain.ChangeSet, bool) {
	run.enter(domain.StageDetect)
	detect := &usecase.DetectChangesUseCase{GitRepo: run.git}
	changes, err := detect.Execute(ctx)
	if err != nil {
		run.fail(err, domain.KindCommitFailed)
		return changes, false
	}
	run.outcome.Changes = changes
	if !changes.IsEmpty() {
		return changes, true
	}
	if run.opts.PushPending {
		if pending := detect.PendingCommits(ctx); pending > 0 {
			run.log.Info("Working tree clean, pushing pending commits", zap.Int("pending", pending))
			return changes, true
		}
	}
	run.stop(domain.OutcomeNoChanges, domain.KindNone, nil)
	return changes, false
}

func (o *SyncOrchestrator) commit(ctx context.Context, run *syncRun, changes domain.ChangeSet) bool {
	run.enter(domain.StageCommit)
	uc := &usecase.CommitChangesUseCase{GitRepo: run.git, Clock: o.clock}
	message, err := uc.Execute(ctx, changes)
	if err != nil {
		run.fail(err, domain.KindCommitFailed)
		return false
	}
	if message == "" {
		run.log.Info("Nothing to commit after staging")
		run.stop(domain.OutcomeNoChanges, domain.KindNone, nil)
		return false
	}
	run.outcome.CommitMessage = message
	run.log.Info("Committed changes", zap.String("headline", changes.Headline()))
	return true
}

func (o *SyncOrchestrator) checkConnectivity(ctx context.Context, run *syncRun) bool {
	run.enter(domain.StageConnectivity)
	if err := o.prober.Probe(ctx, run.link); err != nil {
		run.stop(domain.OutcomeCommittedNotPushed, domain.KindNetworkUnreachable, err)
		return false
	}
	canPush, err := o.checker.CanPush(ctx, run.link)
	if err != nil {
		run.log.Warn("Push permission check failed, continuing", zap.Error(err))
		return true
	}
	if !canPush {
		run.fail(fmt.Errorf("%w: token cannot push to %s", domain.ErrPushAuthRequired, run.link.Redacted()),
			domain.KindPushAuthRequired)
		return false
	}
	return true
}

func (o *SyncOrchestrator) synchronize(ctx context.Context, run *syncRun) bool {
	run.enter(domain.StageSync)
	uc := &usecase.SynchronizeUseCase{GitRepo: run.git, Tree: run.tree}
	result, err := uc.Execute(ctx, run.link.Name, run.outcome.Branch)
	if err != nil {
		o.stopAfterRemoteError(run, err, domain.KindSyncConflict)
		return false
	}
	if result == usecase.SyncFirstPush {
		run.log.Info("Remote branch not found, pushing as first push")
	}
	return true
}

func (o *SyncOrchestrator) push(ctx context.Context, run *syncRun) {
	run.enter(domain.StagePush)
	uc := &usecase.PushBranchUseCase{GitRepo: run.git}
	if err := uc.Execute(ctx, run.link.Name, run.outcome.Branch); err != nil {
		o.stopAfterRemoteError(run, err, domain.KindPushFailed)
		return
	}
	run.enter(domain.StageDone)
	run.stop(domain.OutcomeCommittedAndPushed, domain.KindNone, nil)
}

// stopAfterRemoteError keeps the local commit and marks network failures as
// deferred rather than failed.
func (o *SyncOrchestrator) stopAfterRemoteError(run *syncRun, err error, fallback domain.FailureKind) {
	kind := domain.KindOf(err, fallback)
	if kind == domain.KindNetworkUnreachable {
		run.stop(domain.OutcomeCommittedNotPushed, kind, err)
		return
	}
	run.stop(domain.OutcomeFailed, kind, err)
}

func (o *SyncOrchestrator) recoverPanic(run *syncRun, r any) {
	run.log.Error("Recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
	if run.git != nil {
		ctx, cancel := context.WithTimeout(context.Background(), RecoveryTimeout)
		defer cancel()
		if err := run.git.AbortRebase(ctx); err != nil {
			run.log.Warn("Failed to abort rebase after panic", zap.Error(err))
		}
	}
	run.stop(domain.OutcomeFailed, domain.KindInternal, fmt.Errorf("%w: panic: %v", domain.ErrInternal, r))
}

func (o *SyncOrchestrator) logOutcome(run *syncRun) {
	out := run.outcome
	if !out.Changes.IsEmpty() {
		run.log.Info("Changed files",
			zap.Int("total", out.Changes.Total()),
			zap.String("summary", out.Changes.Summary(SummaryLimit)))
	}
	fields := []zap.Field{
		zap.String("status", string(out.Status)),
		zap.String("stage", string(out.Stage)),
		zap.String("branch", out.Branch),
		zap.Int("added", out.Changes.Added),
		zap.Int("modified", out.Changes.Modified),
		zap.Int("deleted", out.Changes.Deleted),
		zap.Duration("duration", out.Duration()),
	}
	if out.Committed() {
		fields = append(fields, zap.String("commit", out.Changes.Headline()))
	}
	switch {
	case out.Success():
		run.log.Info("Sync finished", fields...)
	case out.Status == domain.OutcomeCommittedNotPushed:
		fields = append(fields, zap.String("kind", string(out.Kind)), zap.Error(out.Err))
		run.log.Warn("Committed locally, push deferred", fields...)
	default:
		fields = append(fields,
			zap.String("kind", string(out.Kind)),
			zap.String("category", string(out.Kind.Category())),
			zap.Error(out.Err))
		run.log.Error("Sync failed", fields...)
	}
}
