// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repostats/schema"
)

// GitClient defines the Git operations needed to analyze a repository.
// This allows the core analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Reference Resolution ---

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetCurrentRef returns the checked-out branch name, or the commit hash when HEAD is detached.
	GetCurrentRef(ctx context.Context, repoPath string) (string, error)

	// GetRemoteURL returns the fetch URL of the named remote.
	GetRemoteURL(ctx context.Context, repoPath string, remote string) (string, error)

	// --- History ---

	// GetCommitLog returns the full commit history with per-file numstat,
	// formatted with CommitLogFormat.
	GetCommitLog(ctx context.Context, repoPath string) ([]byte, error)

	// ListTags returns every tag with its creation time.
	ListTags(ctx context.Context, repoPath string) ([]schema.Tag, error)

	// --- Working Tree ---

	// Checkout switches the working tree to the given reference.
	Checkout(ctx context.Context, repoPath string, ref string) error

	// Clone clones a remote repository into dest.
	Clone(ctx context.Context, url string, dest string) error
}

// SLOCCounter counts source lines of the files under a directory.
type SLOCCounter interface {
	Count(ctx context.Context, dir string) ([]schema.SLOCFile, error)
}

// DocLinter checks a directory for the presence of standard documentation.
type DocLinter interface {
	Lint(ctx context.Context, dir string) ([]schema.DocCheck, error)
}

// PlatformClient fetches repository popularity signals from a hosting platform.
type PlatformClient interface {
	GetRepoMetrics(ctx context.Context, ref schema.RepoRef) (schema.PlatformMetrics, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetPlatformStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and storing metrics.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalRepos int) error

	// RecordMetrics stores every key of a result record for a repository
	RecordMetrics(analysisID int64, repoPath string, record *schema.Record) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run ordered by ID
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllMetricRows returns every stored metric row ordered by run, repository and position
	GetAllMetricRows() ([]schema.MetricRowRecord, error)

	// Close closes the underlying connection
	Close() error
}
