// Package cmd defines the command-line interface for repostats.
package cmd

import (
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for float metrics")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of repositories analyzed concurrently")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Platform cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().Int("classifier-cache-size", contract.DefaultClassifierCacheSize, "Entries in the filename classification cache (0 disables it)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().String("start", "", "Start of the analyzed range in ISO8601 or time ago")
	analyzeCmd.Flags().String("end", "", "End of the analyzed range in ISO8601 or time ago")
	analyzeCmd.Flags().String("period-spans", contract.DefaultPeriodSpans, "Comma-separated window widths for timeseries metrics")
	analyzeCmd.Flags().String("contributor-column", string(schema.AuthorName), "Contributor identity: author_name or committer_name")
	analyzeCmd.Flags().String("datetime-column", string(schema.AuthoredDatetime), "Commit timestamp: authored_datetime or committed_datetime")
	analyzeCmd.Flags().String("bot-names", "", "Comma-separated exact names of bot accounts")
	analyzeCmd.Flags().String("bot-name-indicators", contract.DefaultBotNameIndicators, "Comma-separated substrings that mark a bot name")
	analyzeCmd.Flags().String("bot-email-indicators", "", "Comma-separated substrings that mark a bot email")
	analyzeCmd.Flags().Int("min-commits", contract.DefaultMinCommits, "Minimum commits in range required to compute statistics")
	analyzeCmd.Flags().Bool("compute-timeseries", true, "Compute entropy, variation and fraction metrics per window")
	analyzeCmd.Flags().Bool("compute-stability", true, "Compute stable and transient contributor counts")
	analyzeCmd.Flags().Bool("compute-absence", true, "Compute contributor absence factors and Gini")
	analyzeCmd.Flags().Bool("compute-tags", false, "Count tags in the repository and in range")
	analyzeCmd.Flags().Bool("compute-sloc", false, "Count source lines at the newest commit in range")
	analyzeCmd.Flags().Bool("compute-docs", false, "Check documentation presence at the newest commit in range")
	analyzeCmd.Flags().Bool("compute-platform", false, "Fetch GitHub repository metrics for the origin remote")
	analyzeCmd.Flags().String("github-token", "", "GitHub API token (prefer GITHUB_TOKEN or REPOSTATS_GITHUB_TOKEN)")
	analyzeCmd.Flags().String("github-api-url", "", "GitHub API base URL for enterprise installs")
	analyzeCmd.Flags().String("platform-cache-ttl", "24h", "How long platform metrics stay cached")
	analyzeCmd.Flags().String("clone-timeout", "120s", "Time limit for cloning a remote repository")
	analyzeCmd.Flags().String("analyze-timeout", "300s", "Time limit for analyzing one repository")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// The MCP server shares the analysis defaults
	mcpCmd.Flags().AddFlagSet(analyzeCmd.Flags())

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
