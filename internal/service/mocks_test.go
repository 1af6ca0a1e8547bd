package service

import (
	"context"

	"github.com/stretchr/testify/mock"
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
