package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/repostats/core/classify"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRepo = "/test/repo"

// fakeCommit is one commit of a synthetic git log.
type fakeCommit struct {
	hash   string
	author string
	at     string
	files  []string // "additions\tdeletions\tpath"
}

// commitLog renders commits in the format produced by LocalGitClient.GetCommitLog.
func commitLog(commits ...fakeCommit) []byte {
	var sb strings.Builder
	for _, c := range commits {
		email := strings.ToLower(strings.Fields(c.author)[0]) + "@example.com"
		fields := []string{c.hash, c.author, email, c.at, c.author, email, c.at, "change " + c.hash}
		sb.WriteString(contract.RecordSeparator)
		sb.WriteString(strings.Join(fields, contract.FieldSeparator))
		sb.WriteString(contract.FieldSeparator + "\n")
		for _, f := range c.files {
			sb.WriteString(f + "\n")
		}
	}
	return []byte(sb.String())
}

// tenDayLog has six commits by two contributors over ten days, newest first.
var tenDayLog = commitLog(
	fakeCommit{"c6", "Bob", "2024-01-11T00:00:00Z", []string{"2\t1\tapp.py"}},
	fakeCommit{"c5", "Alice", "2024-01-09T00:00:00Z", []string{"3\t0\tREADME.md"}},
	fakeCommit{"c4", "Bob", "2024-01-06T00:00:00Z", []string{"4\t0\tapp.py"}},
	fakeCommit{"c3", "Alice", "2024-01-04T00:00:00Z", []string{"5\t5\tapp.py"}},
	fakeCommit{"c2", "Bob", "2024-01-02T00:00:00Z", []string{"1\t0\tREADME.md"}},
	fakeCommit{"c1", "Alice", "2024-01-01T00:00:00Z", []string{"10\t0\tapp.py", "2\t0\tREADME.md"}},
)

var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *contract.Config {
	return &contract.Config{
		RepoPaths:         []string{testRepo},
		PeriodSpans:       []schema.PeriodSpan{{Label: "1 week", Duration: 7 * 24 * time.Hour}},
		ContributorColumn: schema.AuthorName,
		DatetimeColumn:    schema.AuthoredDatetime,
		BotNameIndicators: []string{"[bot]"},
		MinCommits:        contract.DefaultMinCommits,
		ComputeTimeseries: true,
		ComputeStability:  true,
		ComputeAbsence:    true,
		Workers:           1,
		Precision:         contract.DefaultPrecision,
		PlatformCacheTTL:  contract.DefaultPlatformCacheTTL,
	}
}

func mockRepo(log []byte) *contract.MockGitClient {
	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, testRepo).Return(log, nil)
	client.On("GetRepoHash", mock.Anything, testRepo).Return("c6", nil)
	client.On("GetRemoteURL", mock.Anything, testRepo, "origin").Return("git@github.com:Org/Demo.git", nil)
	return client
}

func newTestAnalyzer(client contract.GitClient, opts ...Option) *Analyzer {
	base := []Option{
		WithClassifier(classify.New(classify.WithoutCache())),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewAnalyzer(client, append(base, opts...)...)
}

func recordValue(t *testing.T, r *schema.Record, key string) any {
	t.Helper()
	v, ok := r.Get(key)
	require.True(t, ok, "missing key %s", key)
	return v
}

type fakeSLOC struct{ files []schema.SLOCFile }

func (f fakeSLOC) Count(context.Context, string) ([]schema.SLOCFile, error) { return f.files, nil }

type fakeDocs struct{ checks []schema.DocCheck }

func (f fakeDocs) Lint(context.Context, string) ([]schema.DocCheck, error) { return f.checks, nil }

type fakePlatform struct {
	calls   atomic.Int32
	metrics schema.PlatformMetrics
	err     error
}

func (f *fakePlatform) GetRepoMetrics(context.Context, schema.RepoRef) (schema.PlatformMetrics, error) {
	f.calls.Add(1)
	return f.metrics, f.err
}

func TestAnalyze_EndToEnd(t *testing.T) {
	client := mockRepo(tenDayLog)
	res, err := newTestAnalyzer(client).Analyze(context.Background(), testConfig(), testRepo)
	require.NoError(t, err)
	require.Nil(t, res.Insufficient)
	require.NotNil(t, res.Record)
	r := res.Record

	t.Run("metadata", func(t *testing.T) {
		assert.Equal(t, testRepo, recordValue(t, r, "repo_path"))
		assert.Equal(t, "org/demo", recordValue(t, r, "repo_owner_and_name"))
		assert.Equal(t, "c6", recordValue(t, r, "head_commit_hash"))
		assert.Equal(t, "2024-01-01T00:00:00Z", recordValue(t, r, "start_datetime"))
		assert.Equal(t, "2024-01-11T00:00:00Z", recordValue(t, r, "end_datetime"))
		assert.Equal(t, "2024-02-01T12:00:00Z", recordValue(t, r, "processed_at"))
		assert.Equal(t, "[bot]", recordValue(t, r, "bot_name_indicators"))
		assert.Equal(t, 0, recordValue(t, r, "bot_commits_removed_count"))
		assert.Equal(t, 6, recordValue(t, r, "commit_count"))
		assert.Equal(t, 2, recordValue(t, r, "contributor_count"))
		assert.Equal(t, "repo_path", r.Keys()[0], "metadata comes first")
	})

	t.Run("timeseries", func(t *testing.T) {
		assert.Equal(t, 2, recordValue(t, r, "1_week_window_count"))
		assert.InDelta(t, 1.0, recordValue(t, r, "1_week_total_changed_binary_entropy"), 1e-9)
		assert.InDelta(t, 0.0, recordValue(t, r, "1_week_total_changed_binary_variation"), 1e-9)
		assert.InDelta(t, 1.0, recordValue(t, r, "1_week_total_changed_binary_frac"), 1e-9)
		assert.InDelta(t, 0.0, recordValue(t, r, "1_week_markup_changed_binary_frac"), 1e-9)

		// total lines per window: [27, 6]
		mean := 16.5
		assert.InDelta(t, 10.5/mean, recordValue(t, r, "1_week_total_lines_changed_count_variation"), 1e-9)
		// prose lines per window: [3, 3]
		assert.InDelta(t, 1.0, recordValue(t, r, "1_week_prose_lines_changed_count_entropy"), 1e-9)
	})

	t.Run("stability", func(t *testing.T) {
		stable := recordValue(t, r, "1_week_stable_contributors_count").(int)
		transient := recordValue(t, r, "1_week_transient_contributors_count").(int)
		assert.Equal(t, 2, stable+transient)
		assert.Equal(t, 2, stable)
		assert.InDelta(t, 8.5, recordValue(t, r, "1_week_median_contribution_span_days"), 1e-9)
		assert.InDelta(t, 0.85, recordValue(t, r, "1_week_normalized_mean_contribution_span"), 1e-9)
	})

	t.Run("concentration", func(t *testing.T) {
		assert.Equal(t, 1, recordValue(t, r, "total_contributor_absence_factor"))
		assert.InDelta(t, 34.0/132.0, recordValue(t, r, "total_contributor_gini"), 1e-9)
		assert.Equal(t, 0, recordValue(t, r, "data_contributor_absence_factor"))
	})

	t.Run("disabled groups are absent", func(t *testing.T) {
		for _, key := range []string{"tag_count", "total_lines_of_code", "stargazers_count"} {
			_, ok := r.Get(key)
			assert.False(t, ok, key)
		}
	})
	client.AssertExpectations(t)
}

func TestAnalyze_AllMetricGroups(t *testing.T) {
	cfg := testConfig()
	cfg.ComputeTags = true
	cfg.ComputeSLOC = true
	cfg.ComputeDocs = true
	cfg.ComputePlatform = true
	cfg.PeriodSpans = append(cfg.PeriodSpans, schema.PeriodSpan{Label: "4 weeks", Duration: 28 * 24 * time.Hour})

	client := mockRepo(tenDayLog)
	client.On("ListTags", mock.Anything, testRepo).Return([]schema.Tag{
		{Name: "v0.1.0", CreatedAt: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "v0.2.0", CreatedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Name: "lightweight"},
	}, nil)
	platform := &fakePlatform{metrics: schema.PlatformMetrics{PrimaryLanguage: "Python", Stars: 10, Forks: 2, Watchers: 10, OpenIssues: 1}}

	a := newTestAnalyzer(client,
		WithSLOCCounter(fakeSLOC{files: []schema.SLOCFile{{Path: "app.py", Code: 20, Comments: 3}, {Path: "README.md", Code: 5}}}),
		WithDocLinter(fakeDocs{checks: []schema.DocCheck{{Rule: "readme", Present: true}, {Rule: "license", Present: false}}}),
		WithPlatformClient(platform),
	)
	res, err := a.Analyze(context.Background(), cfg, testRepo)
	require.NoError(t, err)
	r := res.Record

	assert.Equal(t, 1, recordValue(t, r, "4_weeks_window_count"))
	assert.Equal(t, 3, recordValue(t, r, "tag_count"))
	assert.Equal(t, 1, recordValue(t, r, "tags_in_range_count"))
	assert.Equal(t, 25, recordValue(t, r, "total_lines_of_code"))
	assert.Equal(t, 20, recordValue(t, r, "programming_lines_of_code"))
	assert.Equal(t, 5, recordValue(t, r, "prose_lines_of_code"))
	assert.Equal(t, 3, recordValue(t, r, "total_lines_of_comments"))
	assert.Equal(t, true, recordValue(t, r, "doc_readme"))
	assert.Equal(t, false, recordValue(t, r, "doc_license"))
	assert.Equal(t, "Python", recordValue(t, r, "primary_programming_language"))
	assert.Equal(t, 10, recordValue(t, r, "stargazers_count"))
	assert.Equal(t, 1, recordValue(t, r, "open_issues_count"))

	// Newest in-scope commit is HEAD, so the working tree is left alone.
	client.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_SnapshotAtNewestInScopeCommit(t *testing.T) {
	cfg := testConfig()
	cfg.ComputeSLOC = true
	cfg.EndTime = time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	client := mockRepo(tenDayLog)
	client.On("GetCurrentRef", mock.Anything, testRepo).Return("main", nil)
	client.On("Checkout", mock.Anything, testRepo, "c5").Return(nil).Once()
	client.On("Checkout", mock.Anything, testRepo, "main").Return(nil).Once()

	res, err := newTestAnalyzer(client, WithSLOCCounter(fakeSLOC{})).Analyze(context.Background(), cfg, testRepo)
	require.NoError(t, err)
	assert.Equal(t, 5, recordValue(t, res.Record, "commit_count"))
	assert.Equal(t, 0, recordValue(t, res.Record, "total_lines_of_code"))
	client.AssertExpectations(t)
}

func TestAnalyze_InsufficientHistory(t *testing.T) {
	cfg := testConfig()
	cfg.MinCommits = 10

	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, testRepo).Return(tenDayLog, nil)

	res, err := newTestAnalyzer(client).Analyze(context.Background(), cfg, testRepo)
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	require.NotNil(t, res.Insufficient)
	assert.Equal(t, 6, res.Insufficient.Commits)
	assert.Equal(t, 10, res.Insufficient.Required)
	client.AssertNotCalled(t, "GetRepoHash", mock.Anything, mock.Anything)
}

func TestAnalyze_BotCommitsRemoved(t *testing.T) {
	log := append(commitLog(fakeCommit{"b1", "renovate[bot]", "2024-01-10T00:00:00Z", []string{"1\t1\tgo.mod"}}), tenDayLog...)
	client := mockRepo(log)

	res, err := newTestAnalyzer(client).Analyze(context.Background(), testConfig(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, 1, recordValue(t, res.Record, "bot_commits_removed_count"))
	assert.Equal(t, 6, recordValue(t, res.Record, "commit_count"))
}

func TestAnalyze_UnresolvableRemote(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, testRepo).Return(tenDayLog, nil)
	client.On("GetRepoHash", mock.Anything, testRepo).Return("c6", nil)
	client.On("GetRemoteURL", mock.Anything, testRepo, "origin").Return("https://gitlab.com/org/demo.git", nil)

	t.Run("tolerated without platform metrics", func(t *testing.T) {
		res, err := newTestAnalyzer(client).Analyze(context.Background(), testConfig(), testRepo)
		require.NoError(t, err)
		assert.Nil(t, recordValue(t, res.Record, "repo_owner_and_name"))
	})

	t.Run("fails with platform metrics", func(t *testing.T) {
		cfg := testConfig()
		cfg.ComputePlatform = true
		_, err := newTestAnalyzer(client, WithPlatformClient(&fakePlatform{})).Analyze(context.Background(), cfg, testRepo)
		var target *schema.UnresolvableRemoteError
		assert.ErrorAs(t, err, &target)
	})
}

func TestAnalyze_CommitLogError(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, testRepo).Return(nil, assert.AnError)

	_, err := newTestAnalyzer(client).Analyze(context.Background(), testConfig(), testRepo)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAnalyze_RemoteCloneTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.CloneTimeout = 20 * time.Millisecond
	remote := "https://github.com/org/demo.git"

	client := &contract.MockGitClient{}
	client.On("Clone", mock.Anything, remote, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	_, err := newTestAnalyzer(client).Analyze(context.Background(), cfg, remote)
	assert.ErrorIs(t, err, schema.ErrTimeout)
	client.AssertNotCalled(t, "GetCommitLog", mock.Anything, mock.Anything)
}

func TestAnalyze_RemoteRepository(t *testing.T) {
	remote := "https://github.com/Org/Demo.git"
	var cloned string

	client := &contract.MockGitClient{}
	client.On("Clone", mock.Anything, remote, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { cloned = args.String(2) }).
		Return(nil)
	client.On("GetCommitLog", mock.Anything, mock.AnythingOfType("string")).Return(tenDayLog, nil)
	client.On("GetRepoHash", mock.Anything, mock.AnythingOfType("string")).Return("c6", nil)

	res, err := newTestAnalyzer(client).Analyze(context.Background(), testConfig(), remote)
	require.NoError(t, err)
	assert.Equal(t, remote, recordValue(t, res.Record, "repo_path"))
	assert.Equal(t, "org/demo", recordValue(t, res.Record, "repo_owner_and_name"))
	assert.NotEmpty(t, cloned)
	client.AssertNotCalled(t, "GetRemoteURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_AnalyzeTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.AnalyzeTimeout = 20 * time.Millisecond

	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, testRepo).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	_, err := newTestAnalyzer(client).Analyze(context.Background(), cfg, testRepo)
	assert.ErrorIs(t, err, schema.ErrTimeout)
}

func TestWithCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("restores after failure", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCurrentRef", ctx, testRepo).Return("main", nil)
		client.On("Checkout", ctx, testRepo, "abc").Return(nil).Once()
		client.On("Checkout", mock.Anything, testRepo, "main").Return(nil).Once()

		err := withCheckout(ctx, client, testRepo, "head", "abc", func() error { return assert.AnError })
		assert.ErrorIs(t, err, assert.AnError)
		client.AssertExpectations(t)
	})

	t.Run("reports restore failure", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCurrentRef", ctx, testRepo).Return("main", nil)
		client.On("Checkout", ctx, testRepo, "abc").Return(nil).Once()
		client.On("Checkout", mock.Anything, testRepo, "main").Return(errors.New("dirty tree")).Once()

		err := withCheckout(ctx, client, testRepo, "head", "abc", func() error { return nil })
		assert.ErrorContains(t, err, "restore main")
	})

	t.Run("skips checkout at HEAD", func(t *testing.T) {
		client := &contract.MockGitClient{}
		called := false
		err := withCheckout(ctx, client, testRepo, "head", "head", func() error { called = true; return nil })
		require.NoError(t, err)
		assert.True(t, called)
		client.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnalyzeAll(t *testing.T) {
	cfg := testConfig()
	cfg.RepoPaths = []string{"/repo/a", "/repo/broken", "/repo/b"}
	cfg.Workers = 2

	client := &contract.MockGitClient{}
	for _, repo := range []string{"/repo/a", "/repo/b"} {
		client.On("GetCommitLog", mock.Anything, repo).Return(tenDayLog, nil)
		client.On("GetRepoHash", mock.Anything, repo).Return("c6", nil)
		client.On("GetRemoteURL", mock.Anything, repo, "origin").Return("", errors.New("no remote"))
	}
	client.On("GetCommitLog", mock.Anything, "/repo/broken").Return(nil, errors.New("not a git repository"))

	results, err := newTestAnalyzer(client).AnalyzeAll(WithSuppressHeader(context.Background()), cfg)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/repo/a", results[0].Repo)
	assert.Equal(t, "/repo/b", results[1].Repo)

	t.Run("all failing", func(t *testing.T) {
		cfg := testConfig()
		cfg.RepoPaths = []string{"/repo/broken"}
		_, err := newTestAnalyzer(client).AnalyzeAll(WithSuppressHeader(context.Background()), cfg)
		assert.ErrorContains(t, err, "not a git repository")
	})
}

func TestNewestCommit(t *testing.T) {
	at := func(day int) schema.CommitMeta {
		return schema.CommitMeta{Hash: fmt.Sprintf("h%d", day), AuthoredAt: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)}
	}
	summaries := []schema.CommitSummary{{CommitMeta: at(3)}, {CommitMeta: at(9)}, {CommitMeta: at(5)}}
	assert.Equal(t, "h9", newestCommit(summaries, schema.AuthoredDatetime))
	assert.Empty(t, newestCommit(nil, schema.AuthoredDatetime))
}

func TestScopeBounds(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg.StartTime = start

	lo, hi := scopeBounds(cfg, nil)
	assert.Equal(t, start, lo)
	assert.Equal(t, start, hi, "an empty scope collapses to the configured bound")
}

func TestAnalyze_BotCommitsOutsideRangeNotCounted(t *testing.T) {
	log := append(commitLog(fakeCommit{"b0", "renovate[bot]", "2023-12-01T00:00:00Z", []string{"1\t1\tgo.mod"}}), tenDayLog...)
	client := mockRepo(log)
	cfg := testConfig()
	cfg.StartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := newTestAnalyzer(client).Analyze(context.Background(), cfg, testRepo)
	require.NoError(t, err)
	assert.Equal(t, 0, recordValue(t, res.Record, "bot_commits_removed_count"))
	assert.Equal(t, 6, recordValue(t, res.Record, "commit_count"))
}
