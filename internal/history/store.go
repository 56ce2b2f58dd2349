package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/schema"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run history.
const (
	runsTable       = "co2plot_runs"
	windowsTable    = "co2plot_windows"
	migrationsTable = "schema_migrations"
)

// HistoryStoreImpl implements the HistoryStore interface on database/sql.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// An empty connStr selects the default SQLite file for the sqlite backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverFor(backend), dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open(driverFor(backend), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open(driverFor(backend), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}

	case schema.NoneBackend:
		return &HistoryStoreImpl{backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// createHistoryTables creates the run tracking tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{windowsTable, getCreateWindowsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for co2plot_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				kind VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_items INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				kind TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_items INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				kind TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_items INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateWindowsQuery returns the CREATE TABLE query for co2plot_windows.
func getCreateWindowsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(windowsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				window_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id BIGINT NOT NULL,
				file VARCHAR(512) NOT NULL,
				from_time CHAR(8) NOT NULL,
				window_length VARCHAR(16) NOT NULL,
				window_from DATETIME(6) NOT NULL,
				window_to DATETIME(6) NOT NULL,
				samples INT NOT NULL,
				mean_co2 DOUBLE NOT NULL,
				stddev_co2 DOUBLE NOT NULL,
				min_co2 DOUBLE NOT NULL,
				max_co2 DOUBLE NOT NULL,
				mean_temp DOUBLE NOT NULL,
				quality VARCHAR(16) NOT NULL,
				plot_path TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				window_id BIGSERIAL PRIMARY KEY,
				run_id BIGINT NOT NULL,
				file TEXT NOT NULL,
				from_time TEXT NOT NULL,
				window_length TEXT NOT NULL,
				window_from TIMESTAMPTZ NOT NULL,
				window_to TIMESTAMPTZ NOT NULL,
				samples INT NOT NULL,
				mean_co2 DOUBLE PRECISION NOT NULL,
				stddev_co2 DOUBLE PRECISION NOT NULL,
				min_co2 DOUBLE PRECISION NOT NULL,
				max_co2 DOUBLE PRECISION NOT NULL,
				mean_temp DOUBLE PRECISION NOT NULL,
				quality TEXT NOT NULL,
				plot_path TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				window_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL,
				file TEXT NOT NULL,
				from_time TEXT NOT NULL,
				window_length TEXT NOT NULL,
				window_from TEXT NOT NULL,
				window_to TEXT NOT NULL,
				samples INTEGER NOT NULL,
				mean_co2 REAL NOT NULL,
				stddev_co2 REAL NOT NULL,
				min_co2 REAL NOT NULL,
				max_co2 REAL NOT NULL,
				mean_temp REAL NOT NULL,
				quality TEXT NOT NULL,
				plot_path TEXT
			);
		`, quotedTableName)
	}
}

// disabled reports whether calls should be accepted and dropped.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(kind schema.RunKind, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	args := []any{string(kind), hs.formatTime(startTime), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES (%s) RETURNING run_id`, quotedTableName, hs.placeholders(3))
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES (%s)`, quotedTableName, hs.placeholders(3))
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalItems int) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, hs.placeholders(1))
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	var updateQuery string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_items = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_items = ? WHERE run_id = ?`, quotedTableName)
	}
	if _, err := hs.db.Exec(updateQuery, hs.formatTime(endTime), durationMs, totalItems, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordWindow stores one window summary for a run. Skipped windows are not recorded.
func (hs *HistoryStoreImpl) RecordWindow(runID int64, summary schema.WindowSummary) error {
	if hs.disabled() || summary.Skipped() {
		return nil
	}

	var plotPath *string
	if summary.PlotPath != "" {
		plotPath = &summary.PlotPath
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, file, from_time, window_length, window_from, window_to, samples,
		                mean_co2, stddev_co2, min_co2, max_co2, mean_temp, quality, plot_path)
		VALUES (%s)
	`, quoteTableName(windowsTable, hs.backend), hs.placeholders(14))
	args := []any{
		runID, summary.File, summary.From, summary.Length,
		hs.formatTime(summary.Start), hs.formatTime(summary.End), summary.Samples,
		summary.MeanCO2, summary.StdDevCO2, summary.MinCO2, summary.MaxCO2, summary.MeanTemp,
		string(summary.Quality), plotPath,
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert window for %s: %w", summary.File, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		Database:   databaseName(hs.backend, hs.connStr),
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_items), 0) FROM %s", runs)).Scan(&status.TotalItems); err != nil {
			return status, fmt.Errorf("failed to get total items: %w", err)
		}
	}

	for _, table := range []string{runsTable, windowsTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, kind, start_time, end_time, run_duration_ms, total_items, config_params FROM %s ORDER BY run_id", quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end sql.Null[any]
		if err := rows.Scan(&record.RunID, &record.Kind, &start, &end, &record.RunDurationMs, &record.TotalItems, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.StartTime, err = toTime(start.V); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if end.Valid {
			endTime, err := toTime(end.V)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllWindows retrieves every recorded window, grouped by run in insertion order.
func (hs *HistoryStoreImpl) GetAllWindows() ([]schema.WindowRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file, from_time, window_length, window_from, window_to, samples,
		mean_co2, stddev_co2, min_co2, max_co2, mean_temp, quality, plot_path
		FROM %s ORDER BY run_id, window_id`, quoteTableName(windowsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.WindowRecord
	for rows.Next() {
		var r schema.WindowRecord
		var from, to any
		if err := rows.Scan(&r.RunID, &r.File, &r.FromTime, &r.Length, &from, &to, &r.Samples,
			&r.MeanCO2, &r.StdDevCO2, &r.MinCO2, &r.MaxCO2, &r.MeanTemp, &r.Quality, &r.PlotPath); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		if r.WindowFrom, err = toTime(from); err != nil {
			return nil, fmt.Errorf("failed to parse window_from: %w", err)
		}
		if r.WindowTo, err = toTime(to); err != nil {
			return nil, fmt.Errorf("failed to parse window_to: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating windows: %w", err)
	}
	return results, nil
}

// placeholders returns n comma-separated bind parameters in the backend's syntax.
func (hs *HistoryStoreImpl) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if hs.backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (hs *HistoryStoreImpl) formatTime(t time.Time) any {
	if hs.backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// scanTime reads a single timestamp column regardless of how the backend stores it.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return toTime(v)
}

// toTime normalizes a scanned timestamp. SQLite stores RFC3339 text; MySQL
// and PostgreSQL return native times when parseTime is enabled.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		s := string(t)
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts, nil
		}
		return time.Parse("2006-01-02 15:04:05.999999", s)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// driverFor maps a backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// databaseName extracts the database name from a connection string, for status output.
func databaseName(backend schema.DatabaseBackend, connStr string) string {
	switch backend {
	case schema.MySQLBackend:
		if cfg, err := mysql.ParseDSN(connStr); err == nil {
			return cfg.DBName
		}
	case schema.PostgreSQLBackend:
		if cfg, err := pgx.ParseConfig(connStr); err == nil {
			return cfg.Database
		}
	case schema.SQLiteBackend:
		if connStr == "" {
			return contract.GetHistoryDBFilePath()
		}
		return connStr
	}
	return ""
}
