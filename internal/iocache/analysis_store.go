package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{metricValuesTable, getCreateMetricValuesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for repostats_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_repos_analyzed INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_repos_analyzed INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_repos_analyzed INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateMetricValuesQuery returns the CREATE TABLE query for repostats_metric_values.
// Each result record is stored in long form: one row per key.
func getCreateMetricValuesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricValuesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				repo_path VARCHAR(512) NOT NULL,
				metric_key VARCHAR(191) NOT NULL,
				metric_value TEXT,
				value_type VARCHAR(16) NOT NULL,
				position INT NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (analysis_id, repo_path, metric_key)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				repo_path TEXT NOT NULL,
				metric_key TEXT NOT NULL,
				metric_value TEXT,
				value_type TEXT NOT NULL,
				position INT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (analysis_id, repo_path, metric_key)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				repo_path TEXT NOT NULL,
				metric_key TEXT NOT NULL,
				metric_value TEXT,
				value_type TEXT NOT NULL,
				position INTEGER NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (analysis_id, repo_path, metric_key)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
// The none backend returns ID 0, which callers treat as "not tracked".
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return analysisID, nil
}

// EndAnalysis stamps the run with its end time, duration and repository count.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalRepos int) error {
	if as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	ph := placeholders(as.backend, 4)

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, ph[0])
	startTime, err := as.scanTime(as.db.QueryRow(query, analysisID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_repos_analyzed = %s WHERE analysis_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3])
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalRepos, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	return nil
}

// RecordMetrics stores every key of the record as its own row, keeping the
// key position so the record can be rebuilt in order.
func (as *AnalysisStoreImpl) RecordMetrics(analysisID int64, repoPath string, record *schema.Record) error {
	if as.db == nil || record == nil {
		return nil
	}

	ph := strings.Join(placeholders(as.backend, 7), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, repo_path, metric_key, metric_value, value_type, position, recorded_at) VALUES (%s)`,
		quoteTableName(metricValuesTable, as.backend), ph)

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metrics transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare metrics insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	recordedAt := formatTime(time.Now(), as.backend)
	var insertErr error
	position := 0
	record.Each(func(key string, value any) {
		if insertErr != nil {
			return
		}
		var stored *string
		if value != nil {
			s := schema.FormatValue(value, -1)
			stored = &s
		}
		if _, err := stmt.Exec(analysisID, repoPath, key, stored, schema.ValueType(value), position, recordedAt); err != nil {
			insertErr = fmt.Errorf("failed to insert metric %s for %s: %w", key, repoPath, err)
		}
		position++
	})
	if insertErr != nil {
		return insertErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metrics for %s: %w", repoPath, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(analysisRunsTable, as.backend)

	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runsTable)
		var lastStart any
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastStart); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := parseTime(lastStart)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runsTable)
		oldestRunTime, err := as.scanTime(as.db.QueryRow(oldestRunQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		reposQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_repos_analyzed), 0) FROM %s", runsTable)
		if err := as.db.QueryRow(reposQuery).Scan(&status.TotalReposAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total repositories analyzed: %w", err)
		}
	}

	for _, table := range []string{analysisRunsTable, metricValuesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT analysis_id, start_time, end_time, run_duration_ms, total_repos_analyzed, config_params FROM %s ORDER BY analysis_id",
		quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var start, end any
		var total sql.NullInt32
		if err := rows.Scan(&record.AnalysisID, &start, &end, &record.RunDurationMs, &total, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if end != nil {
			endTime, err := parseTime(end)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		record.TotalReposAnalyzed = total.Int32
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllMetricRows retrieves every stored metric row.
func (as *AnalysisStoreImpl) GetAllMetricRows() ([]schema.MetricRowRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, repo_path, metric_key, metric_value, value_type, position, recorded_at
		FROM %s ORDER BY analysis_id, repo_path, position`, quoteTableName(metricValuesTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricRowRecord
	for rows.Next() {
		var record schema.MetricRowRecord
		var recordedAt any
		if err := rows.Scan(&record.AnalysisID, &record.RepoPath, &record.MetricKey, &record.MetricValue,
			&record.ValueType, &record.Position, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		if record.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column regardless of how the backend stores it.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var raw any
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return parseTime(raw)
}

// sqlDatetimeLayout is how MySQL renders DATETIME(6) when parseTime is off.
const sqlDatetimeLayout = "2006-01-02 15:04:05.999999"

// parseTime accepts the native time values of MySQL/PostgreSQL and the
// RFC3339 text SQLite stores.
func parseTime(raw any) (time.Time, error) {
	var text string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", raw)
	}
	if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return t, nil
	}
	return time.Parse(sqlDatetimeLayout, text)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}
