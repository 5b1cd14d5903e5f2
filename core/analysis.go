package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/repostats/core/classify"
	"github.com/huangsam/repostats/core/history"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs the repository analysis pipeline against its collaborators.
// Collaborators left nil disable the metric groups that need them.
type Analyzer struct {
	git        contract.GitClient
	classifier *classify.Classifier
	sloc       contract.SLOCCounter
	docs       contract.DocLinter
	platform   contract.PlatformClient
	mgr        contract.CacheManager
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClassifier shares a classifier between analyses.
func WithClassifier(c *classify.Classifier) Option {
	return func(a *Analyzer) { a.classifier = c }
}

// WithSLOCCounter enables source line metrics.
func WithSLOCCounter(c contract.SLOCCounter) Option {
	return func(a *Analyzer) { a.sloc = c }
}

// WithDocLinter enables documentation presence metrics.
func WithDocLinter(l contract.DocLinter) Option {
	return func(a *Analyzer) { a.docs = l }
}

// WithPlatformClient enables hosting platform metrics.
func WithPlatformClient(p contract.PlatformClient) Option {
	return func(a *Analyzer) { a.platform = p }
}

// WithCacheManager enables the platform response cache.
func WithCacheManager(mgr contract.CacheManager) Option {
	return func(a *Analyzer) { a.mgr = mgr }
}

// WithClock overrides the time source used for processed_at and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer returns an analyzer reading history through git.
func NewAnalyzer(git contract.GitClient, opts ...Option) *Analyzer {
	a := &Analyzer{git: git, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.classifier == nil {
		a.classifier = classify.New()
	}
	return a
}

// Analyze computes the result record of one repository. Remote repositories are
// cloned into a temporary directory under the clone timeout and removed afterwards.
// The analysis itself runs under the analyze timeout.
func (a *Analyzer) Analyze(ctx context.Context, cfg *contract.Config, repo string) (schema.AnalysisResult, error) {
	dir := repo
	if contract.IsRemoteRepo(repo) {
		tmp, err := os.MkdirTemp("", "repostats-*")
		if err != nil {
			return schema.AnalysisResult{}, fmt.Errorf("create clone directory: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(tmp); err != nil {
				contract.LogWarn("Failed to remove clone directory", err)
			}
		}()

		dir = filepath.Join(tmp, "repo")
		if _, err := contract.WithTimeout(ctx, cfg.CloneTimeout, "clone "+repo, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.git.Clone(ctx, repo, dir)
		}); err != nil {
			return schema.AnalysisResult{}, err
		}
	}

	return contract.WithTimeout(ctx, cfg.AnalyzeTimeout, "analyze "+repo, func(ctx context.Context) (schema.AnalysisResult, error) {
		return a.analyzeRepo(ctx, cfg, repo, dir)
	})
}

// analyzeRepo runs the pipeline over a local working tree.
func (a *Analyzer) analyzeRepo(ctx context.Context, cfg *contract.Config, repo, dir string) (schema.AnalysisResult, error) {
	result := schema.AnalysisResult{Repo: repo}

	out, err := a.git.GetCommitLog(ctx, dir)
	if err != nil {
		return result, fmt.Errorf("read commit log: %w", err)
	}
	commits, err := history.ParseCommitLog(out)
	if err != nil {
		return result, err
	}

	// --- 1. Normalize, scope and filter ---
	normalized := history.Normalize(commits, a.classifier)
	scoped := history.ScopeToRange(normalized, cfg.StartTime, cfg.EndTime, cfg.DatetimeColumn)
	filter := botFilter(cfg)
	filtered, removed := history.FilterBots(scoped, filter)

	if n := len(filtered.Summaries); n < cfg.MinCommits {
		result.Insufficient = &schema.InsufficientHistory{Commits: n, Required: cfg.MinCommits}
		return result, nil
	}

	start, end := scopeBounds(cfg, filtered.Summaries)

	// --- 2. Resolve repository identity ---
	head, err := a.git.GetRepoHash(ctx, dir)
	if err != nil {
		return result, fmt.Errorf("resolve HEAD: %w", err)
	}
	ref, refErr := a.resolveRepoRef(ctx, repo, dir)
	if refErr != nil && cfg.ComputePlatform {
		return result, refErr
	}

	b := newRecordBuilder()
	b.metadata(cfg, metadata{
		repo:         repo,
		ref:          ref,
		resolved:     refErr == nil,
		head:         head,
		start:        start,
		end:          end,
		processedAt:  a.now(),
		filter:       filter,
		removed:      removed,
		commits:      len(filtered.Summaries),
		contributors: history.ContributorCount(filtered.Summaries, cfg.ContributorColumn),
	})

	// --- 3. Windowed and contributor statistics ---
	if err := b.periodMetrics(cfg, filtered.Summaries, start, end); err != nil {
		return result, err
	}
	if cfg.ComputeAbsence {
		b.concentration(filtered.Summaries, cfg.ContributorColumn)
	}

	// --- 4. Snapshot collaborators ---
	if cfg.ComputeTags {
		tags, err := a.git.ListTags(ctx, dir)
		if err != nil {
			return result, fmt.Errorf("list tags: %w", err)
		}
		b.tags(tags, start, end)
	}
	if err := a.snapshotMetrics(ctx, cfg, b, dir, head, newestCommit(filtered.Summaries, cfg.DatetimeColumn)); err != nil {
		return result, err
	}

	// --- 5. Hosting platform ---
	if cfg.ComputePlatform && a.platform != nil {
		metrics, err := a.platformMetrics(ctx, cfg, ref)
		if err != nil {
			return result, err
		}
		b.platform(metrics)
	}

	result.Record = b.record
	return result, nil
}

// snapshotMetrics runs the SLOC and documentation collaborators against the
// working tree at the newest in-scope commit.
func (a *Analyzer) snapshotMetrics(ctx context.Context, cfg *contract.Config, b *recordBuilder, dir, head, target string) error {
	runSLOC := cfg.ComputeSLOC && a.sloc != nil
	runDocs := cfg.ComputeDocs && a.docs != nil
	if !runSLOC && !runDocs {
		return nil
	}

	return withCheckout(ctx, a.git, dir, head, target, func() error {
		if runSLOC {
			files, err := a.sloc.Count(ctx, dir)
			if err != nil {
				return fmt.Errorf("count source lines: %w", err)
			}
			b.sloc(files, a.classifier.Classify)
		}
		if runDocs {
			checks, err := a.docs.Lint(ctx, dir)
			if err != nil {
				return fmt.Errorf("lint documentation: %w", err)
			}
			b.docs(checks)
		}
		return nil
	})
}

// resolveRepoRef finds the owner and name of the repository on GitHub.
func (a *Analyzer) resolveRepoRef(ctx context.Context, repo, dir string) (schema.RepoRef, error) {
	remote := repo
	if !contract.IsRemoteRepo(repo) {
		url, err := a.git.GetRemoteURL(ctx, dir, "origin")
		if err != nil {
			return schema.RepoRef{}, &schema.UnresolvableRemoteError{Remote: ""}
		}
		remote = url
	}
	return contract.ParseRemote(remote)
}

// withCheckout runs fn with the working tree at target, restoring the original
// ref on every exit path. No checkout happens when target is already HEAD.
func withCheckout(ctx context.Context, git contract.GitClient, dir, head, target string, fn func() error) (err error) {
	if target == "" || target == head {
		return fn()
	}

	original, err := git.GetCurrentRef(ctx, dir)
	if err != nil {
		return fmt.Errorf("resolve current ref: %w", err)
	}
	if err := git.Checkout(ctx, dir, target); err != nil {
		return fmt.Errorf("checkout %s: %w", target, err)
	}
	defer func() {
		if restoreErr := git.Checkout(context.WithoutCancel(ctx), dir, original); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore %s: %w", original, restoreErr))
		}
	}()
	return fn()
}

// AnalyzeAll analyzes every configured repository with at most cfg.Workers in flight.
// Results keep the order of cfg.RepoPaths. A failing repository is logged and
// left out; an error is returned only when every repository failed.
func (a *Analyzer) AnalyzeAll(ctx context.Context, cfg *contract.Config) ([]schema.AnalysisResult, error) {
	results := make([]schema.AnalysisResult, len(cfg.RepoPaths))
	errs := make([]error, len(cfg.RepoPaths))

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, repo := range cfg.RepoPaths {
		g.Go(func() error {
			if !shouldSuppressHeader(ctx) {
				contract.Logger.WithField("repo", repo).Info("Analyzing repository")
			}
			res, err := a.Analyze(ctx, cfg, repo)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", repo, err)
				contract.Logger.WithError(err).WithField("repo", repo).Warn("Repository analysis failed")
				return nil
			}
			if res.Insufficient != nil {
				contract.Logger.WithFields(logrus.Fields{
					"repo":     repo,
					"commits":  res.Insufficient.Commits,
					"required": res.Insufficient.Required,
				}).Warn("Skipping repository with insufficient history")
			}
			results[i] = res
			return nil
		})
	}
	g.Wait()

	out := make([]schema.AnalysisResult, 0, len(results))
	var failed []error
	for i := range results {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, results[i])
	}
	if len(out) == 0 && len(failed) > 0 {
		return nil, errors.Join(failed...)
	}
	return out, nil
}

// botFilter builds the bot filter from the configured lists.
func botFilter(cfg *contract.Config) history.BotFilter {
	return history.BotFilter{
		Names:           cfg.BotNames,
		NameIndicators:  cfg.BotNameIndicators,
		EmailIndicators: cfg.BotEmailIndicators,
	}
}

// scopeBounds returns the configured bounds, deriving open sides from the data.
func scopeBounds(cfg *contract.Config, summaries []schema.CommitSummary) (time.Time, time.Time) {
	start, end := cfg.StartTime, cfg.EndTime
	lo, hi := history.Bounds(summaries, cfg.DatetimeColumn)
	if start.IsZero() {
		start = lo
	}
	if end.IsZero() {
		end = hi
	}
	if end.Before(start) {
		// only possible without commits and a single configured bound
		end = start
	}
	return start, end
}

// newestCommit returns the hash of the latest commit by the chosen timestamp.
// Ties keep the commit listed first, which git lists newest first.
func newestCommit(summaries []schema.CommitSummary, column schema.DatetimeColumn) string {
	var hash string
	var latest time.Time
	for _, s := range summaries {
		ts := column.Timestamp(s.CommitMeta)
		if hash == "" || ts.After(latest) {
			hash, latest = s.Hash, ts
		}
	}
	return hash
}
