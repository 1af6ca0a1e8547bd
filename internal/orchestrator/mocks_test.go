package orchestrator

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/repository"
)

type mockGitRepository struct {
	mock.Mock
}

func (m *mockGitRepository) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) ConfigValue(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) Status(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) AddAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockGitRepository) Commit(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockGitRepository) AheadOfUpstream(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockGitRepository) PullRebase(ctx context.Context, remote, branch string) (string, error) {
	args := m.Called(ctx, remote, branch)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) AbortRebase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockGitRepository) Push(ctx context.Context, remote, branch string) (string, error) {
	args := m.Called(ctx, remote, branch)
	return args.String(0), args.Error(1)
}

type mockWorkingTree struct {
	mock.Mock
}

func (m *mockWorkingTree) Root() string {
	return m.Called().String(0)
}

func (m *mockWorkingTree) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWorkingTree) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWorkingTree) EnsureRemote(ctx context.Context, name, url string) (bool, error) {
	args := m.Called(ctx, name, url)
	return args.Bool(0), args.Error(1)
}

func (m *mockWorkingTree) RebaseInProgress(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func commandError(class repository.OutputClass, stderr string) error {
	return &repository.CommandError{Args: []string{"test"}, ExitCode: 1, Stderr: stderr, Class: class}
}

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) Open(ctx context.Context, path string) (repository.WorkingTree, error) {
	args := m.Called(ctx, path)
	tree, _ := args.Get(0).(repository.WorkingTree)
	return tree, args.Error(1)
}

func (m *mockOpener) Command(opts repository.CommandOptions) repository.GitRepository {
	return m.Called(opts).Get(0).(repository.GitRepository)
}

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context, link domain.RemoteLink) error {
	return m.Called(ctx, link).Error(0)
}

type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) CanPush(ctx context.Context, link domain.RemoteLink) (bool, error) {
	args := m.Called(ctx, link)
	return args.Bool(0), args.Error(1)
}

// observedLogs is a LoggerFactory that records entries in memory.
type observedLogs struct {
	core  zapcore.Core
	logs  *observer.ObservedLogs
	paths []string
}

func newObservedLogs() *observedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	return &observedLogs{core: core, logs: logs}
}

func (f *observedLogs) Path(name string) string {
	return "/logs/" + name + ".log"
}

func (f *observedLogs) New(path string, fields ...zap.Field) (*zap.Logger, func() error, error) {
	f.paths = append(f.paths, path)
	logger := zap.New(f.core).With(fields...)
	return logger, logger.Sync, nil
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, req SyncRequest) domain.RunOutcome {
	return m.Called(ctx, req).Get(0).(domain.RunOutcome)
}
