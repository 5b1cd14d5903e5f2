//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRepostatsWithMySQL tests the repostats CLI with a MySQL backend.
func TestRepostatsWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repostats",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/repostats?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestRepostatsWithPostgres tests the repostats CLI with a PostgreSQL backend.
func TestRepostatsWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario clears both stores, tracks one analysis and exports it.
func runBackendScenario(t *testing.T, backend, connStr string) {
	repo := makeFixtureRepo(t)

	t.Setenv("REPOSTATS_CACHE_BACKEND", backend)
	t.Setenv("REPOSTATS_CACHE_DB_CONNECT", connStr)
	t.Setenv("REPOSTATS_ANALYSIS_BACKEND", backend)
	t.Setenv("REPOSTATS_ANALYSIS_DB_CONNECT", connStr)

	for _, args := range [][]string{
		{"cache", "clear"},
		{"analysis", "clear"},
		{"analysis", "migrate"},
		{"analyze", "--output", "json"},
		{"cache", "status"},
	} {
		_, err := runCommand(t, repo, args...)
		require.NoError(t, err, "repostats %v", args)
	}

	status, err := runCommand(t, repo, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Repositories Analyzed")

	out := filepath.Join(t.TempDir(), "history")
	_, err = runCommand(t, repo, "analysis", "export", "--output-file", out)
	require.NoError(t, err)
	for _, suffix := range []string{".analysis_runs.parquet", ".metric_values.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
