package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repostats/core"
	"github.com/huangsam/repostats/core/classify"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

// computeFlags maps tool arguments to the optional metric groups they enable.
var computeFlags = map[string]func(*contract.Config) *bool{
	"compute_timeseries": func(c *contract.Config) *bool { return &c.ComputeTimeseries },
	"compute_stability":  func(c *contract.Config) *bool { return &c.ComputeStability },
	"compute_absence":    func(c *contract.Config) *bool { return &c.ComputeAbsence },
	"compute_tags":       func(c *contract.Config) *bool { return &c.ComputeTags },
	"compute_sloc":       func(c *contract.Config) *bool { return &c.ComputeSLOC },
	"compute_docs":       func(c *contract.Config) *bool { return &c.ComputeDocs },
	"compute_platform":   func(c *contract.Config) *bool { return &c.ComputePlatform },
}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	git     contract.GitClient
}

// timeWindow parses the optional start and end arguments, keeping the given
// bounds for arguments that are absent.
func timeWindow(request mcp.CallToolRequest, start, end time.Time) (time.Time, time.Time, error) {
	now := time.Now()
	if s := request.GetString("start", ""); s != "" {
		t, err := contract.ParseTimeBound(s, now)
		if err != nil {
			return start, end, fmt.Errorf("invalid start: %w", err)
		}
		start = t
	}
	if s := request.GetString("end", ""); s != "" {
		t, err := contract.ParseTimeBound(s, now)
		if err != nil {
			return start, end, fmt.Errorf("invalid end: %w", err)
		}
		end = t
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return start, end, fmt.Errorf("start cannot be after end")
	}
	return start, end, nil
}

// analysisConfig applies the tool arguments on top of a copy of the base config.
func (h *toolHandler) analysisConfig(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	start, end, err := timeWindow(request, h.baseCfg.StartTime, h.baseCfg.EndTime)
	if err != nil {
		return nil, err
	}
	cfg := h.baseCfg.CloneWithTimeWindow(start, end)

	if p := strings.TrimSpace(request.GetString("repo_path", "")); p != "" {
		resolved, err := contract.ResolveRepoPath(ctx, h.git, p)
		if err != nil {
			return nil, fmt.Errorf("invalid repo_path: %w", err)
		}
		cfg.RepoPaths = []string{resolved}
	}
	if len(cfg.RepoPaths) == 0 {
		return nil, fmt.Errorf("repo_path is required")
	}

	if s := request.GetString("period_spans", ""); s != "" {
		spans, err := contract.ParsePeriodSpans(s)
		if err != nil {
			return nil, err
		}
		cfg.PeriodSpans = spans
	}

	if n := request.GetInt("min_commits", -1); n >= 0 {
		cfg.MinCommits = n
	}
	for name, field := range computeFlags {
		flag := field(cfg)
		*flag = request.GetBool(name, *flag)
	}
	return cfg, nil
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.analysisConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}

	ctx = core.WithSuppressHeader(ctx)
	results, err := core.RunAnalysis(ctx, cfg, core.NewDefaultAnalyzer(cfg, h.mgr), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteResultsJSON(&buf, results, cfg.Precision); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandler) handleClassifyFiles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := request.GetStringSlice("paths", nil)
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths must contain at least one filename"), nil
	}

	classifier := classify.New(classify.WithCacheSize(h.baseCfg.ClassifierCacheSize))
	jsonData, _ := json.MarshalIndent(core.ClassifyPaths(classifier, paths), "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}
