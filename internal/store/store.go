// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/wsim/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			log_path TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_metrics (
			session_id TEXT NOT NULL,
			task TEXT NOT NULL,
			total INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			corrections INTEGER NOT NULL,
			error_rate REAL NOT NULL,
			correction_rate REAL NOT NULL,
			defects_missed INTEGER NOT NULL,
			PRIMARY KEY (session_id, task)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its final per-task metrics.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, metrics []model.TaskMetrics) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, scenario, started_at, ended_at, outcome, duration_ms, log_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ScenarioName,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		string(rec.Outcome),
		rec.DurationMs,
		rec.LogPath,
	)
	if err != nil {
		return err
	}

	if len(metrics) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_metrics (session_id, task, total, errors, corrections, error_rate, correction_rate, defects_missed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, m := range metrics {
			if _, err = stmt.ExecContext(ctx, rec.ID, string(m.Task), m.Total, m.Errors, m.Corrections, m.ErrorRate, m.CorrectionRate, m.DefectsMissed); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListSessions returns up to limit sessions, oldest first. A non-positive
// limit returns every session.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, scenario, started_at, ended_at, outcome, duration_ms, log_path
		FROM (
			SELECT * FROM sessions ORDER BY ended_at DESC LIMIT ?
		)
		ORDER BY ended_at ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt, outcome string
		if err := rows.Scan(&rec.ID, &rec.ScenarioName, &startedAt, &endedAt, &outcome, &rec.DurationMs, &rec.LogPath); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		rec.Outcome = model.Outcome(outcome)
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListMetrics returns the stored per-task metrics for the given sessions,
// keyed by session id, in task order.
func (s *Store) ListMetrics(ctx context.Context, sessionIDs []string) (map[string][]model.TaskMetrics, error) {
	result := map[string][]model.TaskMetrics{}
	if len(sessionIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT session_id, task, total, errors, corrections, error_rate, correction_rate, defects_missed
		FROM session_metrics
		WHERE session_id IN (%s)
		ORDER BY session_id, CASE task WHEN 'sorting' THEN 0 WHEN 'packaging' THEN 1 ELSE 2 END`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var id, task string
		var m model.TaskMetrics
		if err := rows.Scan(&id, &task, &m.Total, &m.Errors, &m.Corrections, &m.ErrorRate, &m.CorrectionRate, &m.DefectsMissed); err != nil {
			return nil, err
		}
		m.Task = model.Task(task)
		result[id] = append(result[id], m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
