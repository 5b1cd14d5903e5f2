// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repostats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"Repostats Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		git:     client,
	}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Compute commit, contributor and change statistics for a Git repository over a time range."),
		mcp.WithString("repo_path", mcp.Description("Local path or remote URL of the repository (defaults to the configured repositories).")),
		mcp.WithString("period_spans", mcp.Description("Comma-separated window widths (e.g., '1 week,4 weeks').")),
		mcp.WithString("start", mcp.Description("Start of the analyzed range (RFC3339 or relative like '6 months ago').")),
		mcp.WithString("end", mcp.Description("End of the analyzed range (RFC3339 or relative).")),
		mcp.WithNumber("min_commits", mcp.Description("Minimum commits in range required to compute statistics.")),
		mcp.WithBoolean("compute_timeseries", mcp.Description("Add entropy, variation and fraction metrics per window.")),
		mcp.WithBoolean("compute_stability", mcp.Description("Add contributor stability metrics.")),
		mcp.WithBoolean("compute_absence", mcp.Description("Add contributor absence and Gini metrics.")),
		mcp.WithBoolean("compute_tags", mcp.Description("Count tags created in range.")),
		mcp.WithBoolean("compute_sloc", mcp.Description("Count source lines at the end of the range.")),
		mcp.WithBoolean("compute_docs", mcp.Description("Check documentation presence at the end of the range.")),
		mcp.WithBoolean("compute_platform", mcp.Description("Fetch GitHub repository metrics.")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: classify_files ---
	s.AddTool(mcp.NewTool("classify_files",
		mcp.WithDescription("Classify filenames as programming, markup, prose, data or unknown."),
		mcp.WithArray("paths", mcp.Description("Filenames or paths to classify."), mcp.Required(), mcp.WithStringItems()),
	), h.handleClassifyFiles)

	return s
}

// StartMCPServer starts the repostats MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr, contract.NewLocalGitClient())
	return server.ServeStdio(s)
}
