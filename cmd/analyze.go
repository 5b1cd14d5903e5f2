package cmd

import (
	"github.com/huangsam/repostats/core"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd computes the statistics record of every repository given.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path-or-url...]",
	Short: "Compute the statistics record for one or more repositories.",
	Long: `Read the commit history of each repository and compute one flat record of
commit, contributor and change statistics over the requested time range.

Repositories may be local paths (resolved to their Git root) or remote URLs,
which are cloned to a temporary directory first. Commits from bots are removed
before any statistic is computed.

Metric groups:
- Timeseries: entropy, variation and active-window fraction per period span
- Stability: stable and transient contributors per period span
- Absence: contributor absence factors and Gini coefficient
- Tags, SLOC, docs and platform: opt-in enrichment

Examples:
  # Analyze the current repository with default spans
  repostats analyze

  # Compare two repositories over the last year
  repostats analyze ./api ./web --start "1 year ago"

  # Analyze a remote repository with platform metrics as JSON
  GITHUB_TOKEN=... repostats analyze https://github.com/org/demo --compute-platform --output json

  # Track the run and export it later
  repostats analyze --analysis-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
