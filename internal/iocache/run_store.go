package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
)

// Table names for run tracking.
const (
	extractionRunsTable = "tsfeat_extraction_runs"
	groupOutcomesTable  = "tsfeat_group_outcomes"
)

// outcomeBatchSize bounds the rows written per INSERT statement.
const outcomeBatchSize = 200

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{extractionRunsTable, getCreateRunsQuery(backend)},
		{groupOutcomesTable, getCreateOutcomesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for tsfeat_extraction_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(extractionRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_groups INT NOT NULL DEFAULT 0,
				failed_groups INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_groups INT NOT NULL DEFAULT 0,
				failed_groups INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_groups INTEGER NOT NULL DEFAULT 0,
				failed_groups INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateOutcomesQuery returns the CREATE TABLE query for tsfeat_group_outcomes.
func getCreateOutcomesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(groupOutcomesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				group_id VARCHAR(512) NOT NULL,
				status VARCHAR(16) NOT NULL,
				feature_count INT NOT NULL,
				error_message TEXT,
				PRIMARY KEY (run_id, group_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				group_id TEXT NOT NULL,
				status TEXT NOT NULL,
				feature_count INT NOT NULL,
				error_message TEXT,
				PRIMARY KEY (run_id, group_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				group_id TEXT NOT NULL,
				status TEXT NOT NULL,
				feature_count INTEGER NOT NULL,
				error_message TEXT,
				PRIMARY KEY (run_id, group_id)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run record and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(extractionRunsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert extraction run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalGroups, failedGroups int) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(extractionRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_groups = %s, failed_groups = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5))
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalGroups, failedGroups, runID); err != nil {
		return fmt.Errorf("failed to update extraction run: %w", err)
	}
	return nil
}

// RecordGroupOutcomes stores the outcome of every group of a run in batched inserts.
func (rs *RunStoreImpl) RecordGroupOutcomes(runID int64, outcomes []schema.GroupOutcome) error {
	if rs.db == nil || len(outcomes) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quotedTableName := quoteTableName(groupOutcomesTable, rs.backend)
	for start := 0; start < len(outcomes); start += outcomeBatchSize {
		batch := outcomes[start:min(start+outcomeBatchSize, len(outcomes))]

		values := make([]string, len(batch))
		args := make([]any, 0, len(batch)*5)
		for i, o := range batch {
			n := i * 5
			values[i] = fmt.Sprintf("(%s, %s, %s, %s, %s)",
				placeholder(rs.backend, n+1), placeholder(rs.backend, n+2), placeholder(rs.backend, n+3),
				placeholder(rs.backend, n+4), placeholder(rs.backend, n+5))

			var errMsg *string
			if o.Err != nil {
				msg := o.Err.Error()
				errMsg = &msg
			}
			args = append(args, runID, o.GroupID, string(o.Status), o.FeatureCount, errMsg)
		}

		query := fmt.Sprintf(`INSERT INTO %s (run_id, group_id, status, feature_count, error_message) VALUES %s`,
			quotedTableName, strings.Join(values, ", "))
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert group outcomes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group outcomes: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(extractionRunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		lastRunID, lastRunTime, err := rs.scanIDAndTime(row)
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = lastRunID
		status.LastRunTime = lastRunTime

		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable))
		if status.OldestRunTime, err = rs.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		groupsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_groups), 0) FROM %s", runsTable)
		if err := rs.db.QueryRow(groupsQuery).Scan(&status.TotalGroupsTraced); err != nil {
			return status, fmt.Errorf("failed to get total groups traced: %w", err)
		}
	}

	for _, table := range []string{extractionRunsTable, groupOutcomesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.ExtractionRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_groups, failed_groups, config_params FROM %s ORDER BY run_id",
		quoteTableName(extractionRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ExtractionRunRecord
	for rows.Next() {
		var record schema.ExtractionRunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.TotalGroups, &record.FailedGroups, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan extraction run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalGroups, &record.FailedGroups, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan extraction run: %w", err)
			}
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction runs: %w", err)
	}

	return results, nil
}

// GetAllGroupOutcomes retrieves all group outcomes from the store.
func (rs *RunStoreImpl) GetAllGroupOutcomes() ([]schema.GroupOutcomeRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, group_id, status, feature_count, error_message FROM %s ORDER BY run_id, group_id",
		quoteTableName(groupOutcomesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query group outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.GroupOutcomeRecord
	for rows.Next() {
		var record schema.GroupOutcomeRecord
		if err := rows.Scan(&record.RunID, &record.GroupID, &record.Status, &record.FeatureCount, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan group outcome: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group outcomes: %w", err)
	}

	return results, nil
}

// scanTime reads a single timestamp column. SQLite stores RFC 3339 text.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}

// scanIDAndTime reads a run id and a timestamp column.
func (rs *RunStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&id, &t)
		return id, t, err
	}
	var s string
	if err := row.Scan(&id, &s); err != nil {
		return 0, time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	return id, t, err
}
