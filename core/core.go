// Package core has the repository analysis pipeline and its command entry points.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repostats/core/classify"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/doclint"
	"github.com/huangsam/repostats/internal/outwriter"
	"github.com/huangsam/repostats/internal/platform"
	"github.com/huangsam/repostats/internal/sloc"
	"github.com/huangsam/repostats/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// NewDefaultAnalyzer wires the analyzer to the local git binary and the
// production collaborators.
func NewDefaultAnalyzer(cfg *contract.Config, mgr contract.CacheManager) *Analyzer {
	return NewAnalyzer(
		contract.NewLocalGitClient(),
		WithClassifier(classify.New(classify.WithCacheSize(cfg.ClassifierCacheSize))),
		WithSLOCCounter(sloc.NewCounter()),
		WithDocLinter(doclint.New()),
		WithPlatformClient(platform.NewClient(cfg.GitHubToken, platform.WithBaseURL(cfg.GitHubAPIURL))),
		WithCacheManager(mgr),
	)
}

// ExecuteAnalyze analyzes every configured repository, records the run in the
// analysis store and writes the result records.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	analyzer := NewDefaultAnalyzer(cfg, mgr)

	results, err := RunAnalysis(ctx, cfg, analyzer, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteResults(results, cfg, time.Since(start))
}

// RunAnalysis analyzes all repositories inside one tracked analysis run.
// Tracking failures are logged and never fail the analysis.
func RunAnalysis(ctx context.Context, cfg *contract.Config, analyzer *Analyzer, mgr contract.CacheManager) ([]schema.AnalysisResult, error) {
	var store contract.AnalysisStore
	if mgr != nil {
		store = mgr.GetAnalysisStore()
	}

	// --- 1. Begin Analysis Tracking (if configured) ---
	if store != nil {
		analysisID, err := store.BeginAnalysis(time.Now(), runParams(cfg))
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else {
			ctx = withAnalysisID(ctx, analysisID)
		}
	}

	// --- 2. Analysis ---
	results, err := analyzer.AnalyzeAll(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// --- 3. Record and finalize ---
	if analysisID, ok := getAnalysisID(ctx); ok {
		recorded := 0
		for _, res := range results {
			if res.Record == nil {
				continue
			}
			if err := store.RecordMetrics(analysisID, res.Repo, res.Record); err != nil {
				contract.LogWarn("Failed to record metrics for "+res.Repo, err)
				continue
			}
			recorded++
		}
		if err := store.EndAnalysis(analysisID, time.Now(), recorded); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}
	return results, nil
}

// runParams captures the settings that shape the records of a run.
func runParams(cfg *contract.Config) map[string]any {
	spans := make([]string, len(cfg.PeriodSpans))
	for i, s := range cfg.PeriodSpans {
		spans[i] = s.Label
	}
	params := map[string]any{
		"repo_paths":           cfg.RepoPaths,
		"period_spans":         spans,
		"contributor_column":   string(cfg.ContributorColumn),
		"datetime_column":      string(cfg.DatetimeColumn),
		"min_commits":          cfg.MinCommits,
		"workers":              cfg.Workers,
		"bot_names":            cfg.BotNames,
		"bot_name_indicators":  cfg.BotNameIndicators,
		"bot_email_indicators": cfg.BotEmailIndicators,
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(time.RFC3339)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(time.RFC3339)
	}
	return params
}

// ExecuteClassify classifies the given paths, or every file tracked in the
// current repository when no path is given.
// It serves as the main entry point for the 'classify' command.
func ExecuteClassify(ctx context.Context, cfg *contract.Config, paths []string) error {
	if len(paths) == 0 {
		files, err := trackedFiles(ctx, contract.NewLocalGitClient(), ".")
		if err != nil {
			return err
		}
		paths = files
	}
	classifier := classify.New(classify.WithCacheSize(cfg.ClassifierCacheSize))
	return outwriter.WriteClassifications(ClassifyPaths(classifier, paths), cfg)
}

// ClassifyPaths pairs every path with its category, keeping input order.
func ClassifyPaths(classifier *classify.Classifier, paths []string) []schema.FileClassification {
	out := make([]schema.FileClassification, len(paths))
	for i, p := range paths {
		out[i] = schema.FileClassification{Path: p, Category: classifier.Classify(p)}
	}
	return out
}

// trackedFiles lists the files git tracks under dir.
func trackedFiles(ctx context.Context, client contract.GitClient, dir string) ([]string, error) {
	out, err := client.Run(ctx, dir, "ls-files", "-z")
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	var files []string
	for f := range strings.SplitSeq(string(out), "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}
