package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

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
