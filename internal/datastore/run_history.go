package datastore

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// RunHistoryDB wraps the SQL database connection and records one row per
// tracking run.
type RunHistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunHistoryEntry represents a record in the run_history table.
type RunHistoryEntry struct {
	ID           int64
	RunID        string
	StartedAt    time.Time
	CompletedAt  sql.NullTime
	Status       string
	PagesChecked int
	PagesChanged int
	PagesFailed  int
	Notes        sql.NullString
}

// NewRunHistoryDB initializes the run history database and ensures the
// schema is set up.
func NewRunHistoryDB(dataSourceName string, logger zerolog.Logger) (*RunHistoryDB, error) {
	componentLogger := logger.With().Str("component", "RunHistoryDB").Logger()
	componentLogger.Debug().Str("db_path", dataSourceName).Msg("Initializing run history database")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create run history database directory: "+dbDir)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "sql.Open failed for: "+dataSourceName)
	}

	db := &RunHistoryDB{
		db:     dbInstance,
		logger: componentLogger,
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize run history schema")
	}

	return db, nil
}

// Close closes the database connection.
func (rh *RunHistoryDB) Close() error {
	if rh.db != nil {
		return rh.db.Close()
	}
	return nil
}

// InitSchema creates the run_history table if it doesn't already exist.
func (rh *RunHistoryDB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		status TEXT NOT NULL,
		pages_checked INTEGER DEFAULT 0,
		pages_changed INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		notes TEXT
	);
	`
	if _, err := rh.db.Exec(query); err != nil {
		rh.logger.Error().Err(err).Msg("Failed to initialize run history schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a new run with status STARTED and returns the ID
// of the inserted row.
func (rh *RunHistoryDB) RecordRunStart(runID string, startedAt time.Time, pagesChecked int) (int64, error) {
	query := `INSERT INTO run_history (run_id, started_at, status, pages_checked) VALUES (?, ?, ?, ?)`
	result, err := rh.db.Exec(query, runID, startedAt, string(models.RunStatusStarted), pagesChecked)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to insert run start record")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to get last insert ID")
	}

	rh.logger.Debug().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start")
	return id, nil
}

// UpdateRunCompletion fills in the row inserted by RecordRunStart with the
// final status and counters of the finished run.
func (rh *RunHistoryDB) UpdateRunCompletion(dbRunID int64, summary *models.RunSummary, notes string) error {
	query := `UPDATE run_history SET completed_at = ?, status = ?, pages_checked = ?, pages_changed = ?, pages_failed = ?, notes = ? WHERE id = ?`
	_, err := rh.db.Exec(query,
		summary.CompletedAt,
		string(summary.Status),
		summary.PagesChecked,
		summary.PagesChanged,
		summary.PagesFailed,
		sql.NullString{String: notes, Valid: notes != ""},
		dbRunID,
	)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to update run completion")
	}

	rh.logger.Debug().
		Int64("db_id", dbRunID).
		Str("status", string(summary.Status)).
		Msg("Updated run completion")
	return nil
}

// GetLastRunTime retrieves the start time of the most recent completed
// run. It returns sql.ErrNoRows when no run has completed yet.
func (rh *RunHistoryDB) GetLastRunTime() (*time.Time, error) {
	query := `SELECT started_at FROM run_history WHERE status = ? ORDER BY started_at DESC LIMIT 1`
	var startedAt time.Time
	err := rh.db.QueryRow(query, string(models.RunStatusCompleted)).Scan(&startedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errorwrapper.WrapError(err, "failed to query last run time")
	}
	return &startedAt, nil
}

// GetRecentRuns returns the most recent runs, newest first.
func (rh *RunHistoryDB) GetRecentRuns(limit int) ([]RunHistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, run_id, started_at, completed_at, status, pages_checked, pages_changed, pages_failed, notes
	FROM run_history ORDER BY started_at DESC LIMIT ?`
	rows, err := rh.db.Query(query, limit)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to query recent runs")
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []RunHistoryEntry
	for rows.Next() {
		var entry RunHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.StartedAt,
			&entry.CompletedAt,
			&entry.Status,
			&entry.PagesChecked,
			&entry.PagesChanged,
			&entry.PagesFailed,
			&entry.Notes,
		); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to scan run history row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to iterate run history rows")
	}
	return entries, nil
}
