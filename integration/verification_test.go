//go:build integration

// Package integration contains integration tests for repostats.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analyzeDocument mirrors the JSON output of the analyze command.
type analyzeDocument struct {
	Results []map[string]any `json:"results"`
	Skipped []struct {
		Repo     string `json:"repo"`
		Commits  int    `json:"commits"`
		Required int    `json:"required"`
	} `json:"skipped"`
}

func analyzeJSON(t *testing.T, repo string, args ...string) analyzeDocument {
	t.Helper()
	argv := append([]string{"analyze", repo, "--output", "json", "--cache-backend", "none"}, args...)
	out, err := runCommand(t, repo, argv...)
	require.NoError(t, err)

	var doc analyzeDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc), "output: %s", out)
	return doc
}

// TestAnalyzeVerification checks the record counts against the fixture history.
func TestAnalyzeVerification(t *testing.T) {
	repo := makeFixtureRepo(t)

	doc := analyzeJSON(t, repo, "--compute-tags", "--compute-docs", "--compute-sloc")
	require.Len(t, doc.Results, 1)
	assert.Empty(t, doc.Skipped)

	record := doc.Results[0]
	assert.EqualValues(t, len(fixtureCommits)-1, record["commit_count"])
	assert.EqualValues(t, 1, record["bot_commits_removed_count"])
	assert.EqualValues(t, 2, record["contributor_count"])
	assert.EqualValues(t, 1, record["tag_count"])
	assert.Equal(t, "author_name", record["contributor_name_column"])
	assert.Nil(t, record["repo_owner_and_name"], "the fixture has no remote")
	assert.Equal(t, true, record["doc_readme"])
	assert.Contains(t, record, "1_week_window_count")
	assert.Contains(t, record, "4_weeks_window_count")
	assert.Contains(t, record, "programming_lines_of_code")
}

// TestAnalyzeInsufficientHistory checks that a short history is reported, not failed.
func TestAnalyzeInsufficientHistory(t *testing.T) {
	repo := makeFixtureRepo(t)

	doc := analyzeJSON(t, repo, "--min-commits", "100")
	assert.Empty(t, doc.Results)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, len(fixtureCommits)-1, doc.Skipped[0].Commits)
	assert.Equal(t, 100, doc.Skipped[0].Required)
}

// TestAnalyzeCSV checks that CSV output has one header and one row per repository.
func TestAnalyzeCSV(t *testing.T) {
	repo := makeFixtureRepo(t)

	out, err := runCommand(t, repo, "analyze", "--output", "csv", "--cache-backend", "none")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "repo_path", rows[0][0])
}

// TestClassifyVerification classifies the tracked files of the fixture.
func TestClassifyVerification(t *testing.T) {
	repo := makeFixtureRepo(t)

	out, err := runCommand(t, repo, "classify", "--output", "json")
	require.NoError(t, err)

	var rows []struct {
		Path     string `json:"path"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	categories := make(map[string]string, len(rows))
	for _, row := range rows {
		categories[row.Path] = row.Category
	}
	assert.Equal(t, "programming", categories["main.go"])
	assert.Equal(t, "prose", categories["README.md"])
	assert.Equal(t, "data", categories["config.yaml"])
}
