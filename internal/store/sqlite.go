// Package store keeps a SQLite-backed history of espup runs and their
// per-component outcomes. The history is observational only: it never
// participates in the crash-safety protocol of the installation record.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the run history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DefaultPath returns the per-user location of the history database,
// beside the installation record.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "espup", "history.db"), nil
}

// New creates a Store, opening the SQLite database and running migrations.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("history store opened", "path", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// BeginRun inserts a new Run in the running state and sets its ID.
func (s *Store) BeginRun(run *Run) error {
	if run.StartTime.IsZero() {
		run.StartTime = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}

	const query = `
		INSERT INTO runs (action, host_triple, targets, status, error_message, start_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query, run.Action, run.HostTriple, run.Targets, run.Status, run.ErrorMessage, run.StartTime)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// FinishRun records the final status of a run.
func (s *Store) FinishRun(run *Run) error {
	if run.EndTime.IsZero() {
		run.EndTime = time.Now().UTC()
	}

	const query = `
		UPDATE runs SET status = ?, error_message = ?, end_time = ? WHERE id = ?
	`
	result, err := s.db.Exec(query, run.Status, run.ErrorMessage, run.EndTime, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %d not found", run.ID)
	}
	return nil
}

// RecordEvent inserts a per-component outcome for a run.
func (s *Store) RecordEvent(ev *ComponentEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO component_events (run_id, component, action, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query, ev.RunID, ev.Component, ev.Action, ev.Status, ev.Detail, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert component event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, action, host_triple, targets, status,
		       COALESCE(error_message, ''), start_time, COALESCE(end_time, start_time)
		FROM runs ORDER BY id DESC LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Action, &run.HostTriple, &run.Targets,
			&run.Status, &run.ErrorMessage, &run.StartTime, &run.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// EventsForRun returns the component outcomes recorded for a run, oldest
// first.
func (s *Store) EventsForRun(runID int64) ([]ComponentEvent, error) {
	const query = `
		SELECT id, run_id, component, action, status, COALESCE(detail, ''), created_at
		FROM component_events WHERE run_id = ? ORDER BY id ASC
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query component events: %w", err)
	}
	defer rows.Close()

	var events []ComponentEvent
	for rows.Next() {
		var ev ComponentEvent
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Component, &ev.Action,
			&ev.Status, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan component event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
