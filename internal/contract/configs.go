package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/repostats/schema"
)

// Default values for configuration.
const (
	DefaultPeriodSpans         = "1 week,4 weeks"
	DefaultBotNameIndicators   = "[bot]"
	DefaultMinCommits          = 5
	DefaultPrecision           = 4
	MaxPrecision               = 8
	DefaultCloneTimeout        = 120 * time.Second
	DefaultAnalyzeTimeout      = 300 * time.Second
	DefaultClassifierCacheSize = 1 << 14
	DefaultPlatformCacheTTL    = 24 * time.Hour
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPaths []string // local repository roots or remote URLs

	// Zero bounds are derived from the commit data
	StartTime time.Time
	EndTime   time.Time

	PeriodSpans       []schema.PeriodSpan
	ContributorColumn schema.ContributorColumn
	DatetimeColumn    schema.DatetimeColumn

	BotNames           []string
	BotNameIndicators  []string
	BotEmailIndicators []string

	MinCommits int

	ComputeTimeseries bool
	ComputeStability  bool
	ComputeAbsence    bool
	ComputeTags       bool
	ComputeSLOC       bool
	ComputeDocs       bool
	ComputePlatform   bool

	GitHubToken      string // Please use env var as this is plaintext
	GitHubAPIURL     string // Empty means api.github.com
	PlatformCacheTTL time.Duration

	CloneTimeout   time.Duration
	AnalyzeTimeout time.Duration

	ClassifierCacheSize int
	Workers             int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStrs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Fields from analyzeCmd.Flags() ---
	PeriodSpans         string `mapstructure:"period-spans"`
	ContributorColumn   string `mapstructure:"contributor-column"`
	DatetimeColumn      string `mapstructure:"datetime-column"`
	BotNames            string `mapstructure:"bot-names"`
	BotNameIndicators   string `mapstructure:"bot-name-indicators"`
	BotEmailIndicators  string `mapstructure:"bot-email-indicators"`
	MinCommits          int    `mapstructure:"min-commits"`
	ComputeTimeseries   bool   `mapstructure:"compute-timeseries"`
	ComputeStability    bool   `mapstructure:"compute-stability"`
	ComputeAbsence      bool   `mapstructure:"compute-absence"`
	ComputeTags         bool   `mapstructure:"compute-tags"`
	ComputeSLOC         bool   `mapstructure:"compute-sloc"`
	ComputeDocs         bool   `mapstructure:"compute-docs"`
	ComputePlatform     bool   `mapstructure:"compute-platform"`
	GitHubToken         string `mapstructure:"github-token"`
	GitHubAPIURL        string `mapstructure:"github-api-url"`
	PlatformCacheTTL    string `mapstructure:"platform-cache-ttl"`
	CloneTimeout        string `mapstructure:"clone-timeout"`
	AnalyzeTimeout      string `mapstructure:"analyze-timeout"`
	ClassifierCacheSize int    `mapstructure:"classifier-cache-size"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.RepoPaths = slices.Clone(c.RepoPaths)
	clone.PeriodSpans = slices.Clone(c.PeriodSpans)
	clone.BotNames = slices.Clone(c.BotNames)
	clone.BotNameIndicators = slices.Clone(c.BotNameIndicators)
	clone.BotEmailIndicators = slices.Clone(c.BotEmailIndicators)
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisOptions(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPaths(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		cfg.AnalysisBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// Cache and analysis must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// ProcessClassifyConfig validates the subset of inputs the classify command uses.
// Repository paths and storage backends are not touched.
func ProcessClassifyConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok || cfg.Output == schema.ParquetOut {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	if input.ClassifierCacheSize < 0 {
		return fmt.Errorf("classifier-cache-size cannot be negative (received %d)", input.ClassifierCacheSize)
	}
	cfg.ClassifierCacheSize = input.ClassifierCacheSize
	return nil
}

// processTimeRange parses the optional start and end bounds.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()

	start, err := ParseTimeBound(input.Start, now)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	end, err := ParseTimeBound(input.End, now)
	if err != nil {
		return fmt.Errorf("invalid end: %w", err)
	}
	cfg.StartTime = start
	cfg.EndTime = end

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// processAnalysisOptions handles spans, column selection, the bot filter and metric toggles.
func processAnalysisOptions(cfg *Config, input *ConfigRawInput) error {
	spansStr := input.PeriodSpans
	if strings.TrimSpace(spansStr) == "" {
		spansStr = DefaultPeriodSpans
	}
	spans, err := ParsePeriodSpans(spansStr)
	if err != nil {
		return err
	}
	cfg.PeriodSpans = spans

	cfg.ContributorColumn = schema.AuthorName
	if input.ContributorColumn != "" {
		cfg.ContributorColumn = schema.ContributorColumn(strings.ToLower(input.ContributorColumn))
	}
	if _, ok := schema.ValidContributorColumns[cfg.ContributorColumn]; !ok {
		return fmt.Errorf("invalid contributor column '%s'. must be author_name, committer_name", input.ContributorColumn)
	}

	cfg.DatetimeColumn = schema.AuthoredDatetime
	if input.DatetimeColumn != "" {
		cfg.DatetimeColumn = schema.DatetimeColumn(strings.ToLower(input.DatetimeColumn))
	}
	if _, ok := schema.ValidDatetimeColumns[cfg.DatetimeColumn]; !ok {
		return fmt.Errorf("invalid datetime column '%s'. must be authored_datetime, committed_datetime", input.DatetimeColumn)
	}

	cfg.BotNames = SplitList(input.BotNames)
	cfg.BotNameIndicators = SplitList(input.BotNameIndicators)
	cfg.BotEmailIndicators = SplitList(input.BotEmailIndicators)

	if input.MinCommits < 0 {
		return fmt.Errorf("min-commits cannot be negative (received %d)", input.MinCommits)
	}
	cfg.MinCommits = input.MinCommits

	if input.ClassifierCacheSize < 0 {
		return fmt.Errorf("classifier-cache-size cannot be negative (received %d)", input.ClassifierCacheSize)
	}
	cfg.ClassifierCacheSize = input.ClassifierCacheSize

	cfg.ComputeTimeseries = input.ComputeTimeseries
	cfg.ComputeStability = input.ComputeStability
	cfg.ComputeAbsence = input.ComputeAbsence
	cfg.ComputeTags = input.ComputeTags
	cfg.ComputeSLOC = input.ComputeSLOC
	cfg.ComputeDocs = input.ComputeDocs
	cfg.ComputePlatform = input.ComputePlatform
	cfg.GitHubToken = input.GitHubToken
	cfg.GitHubAPIURL = input.GitHubAPIURL
	return nil
}

// processDurations parses the timeout and cache TTL settings.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	parse := func(name, value string, fallback time.Duration) (time.Duration, error) {
		if strings.TrimSpace(value) == "" {
			return fallback, nil
		}
		d, err := ParseLookbackDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}

	var err error
	if cfg.CloneTimeout, err = parse("clone-timeout", input.CloneTimeout, DefaultCloneTimeout); err != nil {
		return err
	}
	if cfg.AnalyzeTimeout, err = parse("analyze-timeout", input.AnalyzeTimeout, DefaultAnalyzeTimeout); err != nil {
		return err
	}
	if cfg.PlatformCacheTTL, err = parse("platform-cache-ttl", input.PlatformCacheTTL, DefaultPlatformCacheTTL); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveRepoPaths resolves each local argument to its Git repository root.
// Remote URLs are kept as given and cloned at analysis time.
func resolveRepoPaths(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	args := input.RepoPathStrs
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg.RepoPaths = make([]string, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		resolved, err := ResolveRepoPath(ctx, client, arg)
		if err != nil {
			return err
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		cfg.RepoPaths = append(cfg.RepoPaths, resolved)
	}
	return nil
}

// ResolveRepoPath returns the Git root of a local path. Remote URLs are returned unchanged.
func ResolveRepoPath(ctx context.Context, client GitClient, arg string) (string, error) {
	if IsRemoteRepo(arg) {
		return arg, nil
	}
	absPath, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	absPath = filepath.Clean(absPath)
	if info, statErr := os.Stat(absPath); statErr == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}
	return client.GetRepoRoot(ctx, absPath)
}
