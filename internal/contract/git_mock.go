package contract

import (
	"context"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock type for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCurrentRef implements the GitClient interface.
func (m *MockGitClient) GetCurrentRef(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRemoteURL implements the GitClient interface.
func (m *MockGitClient) GetRemoteURL(ctx context.Context, repoPath string, remote string) (string, error) {
	ret := m.Called(ctx, repoPath, remote)
	return ret.String(0), ret.Error(1)
}

// GetCommitLog implements the GitClient interface.
func (m *MockGitClient) GetCommitLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ListTags implements the GitClient interface.
func (m *MockGitClient) ListTags(ctx context.Context, repoPath string) ([]schema.Tag, error) {
	ret := m.Called(ctx, repoPath)
	tags, _ := ret.Get(0).([]schema.Tag)
	return tags, ret.Error(1)
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	return m.Called(ctx, repoPath, ref).Error(0)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, url string, dest string) error {
	return m.Called(ctx, url, dest).Error(0)
}
