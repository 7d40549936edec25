// Package store provides SQLite-backed persistence for december:
// classification history, learned exemplars, and per-session clarification
// round counters.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"december/internal/logging"
	"december/internal/perception"
	"december/internal/types"
)

// LocalStore wraps the SQLite database.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// ClassificationRow is one recorded classification.
type ClassificationRow struct {
	RequestID   string
	Utterance   string
	Disposition string
	Confidence  float64
	CreatedAt   time.Time
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string) (*LocalStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &LocalStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.StoreDebug("local store opened at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS classifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			utterance TEXT NOT NULL,
			disposition TEXT NOT NULL,
			confidence REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_created
			ON classifications(created_at)`,
		`CREATE TABLE IF NOT EXISTS exemplars (
			phrase TEXT PRIMARY KEY,
			disposition TEXT NOT NULL,
			confidence REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_rounds (
			session_id TEXT PRIMARY KEY,
			rounds INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// =============================================================================
// CLASSIFICATION HISTORY
// =============================================================================

// RecordClassification appends one classification to the history.
func (s *LocalStore) RecordClassification(requestID, utterance, disposition string, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO classifications (request_id, utterance, disposition, confidence) VALUES (?, ?, ?, ?)`,
		requestID, utterance, disposition, confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to record classification: %w", err)
	}
	return nil
}

// History returns the most recent classifications, newest first.
func (s *LocalStore) History(limit int) ([]ClassificationRow, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT request_id, utterance, disposition, confidence, created_at
		 FROM classifications ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []ClassificationRow
	for rows.Next() {
		var r ClassificationRow
		if err := rows.Scan(&r.RequestID, &r.Utterance, &r.Disposition, &r.Confidence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// LEARNED EXEMPLARS
// =============================================================================

// StoreExemplar upserts a learned exemplar. LocalStore satisfies
// perception.ExemplarStore so the taxonomy can persist through it.
func (s *LocalStore) StoreExemplar(phrase string, disposition types.Disposition, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO exemplars (phrase, disposition, confidence, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(phrase) DO UPDATE SET
			disposition = excluded.disposition,
			confidence = excluded.confidence,
			updated_at = CURRENT_TIMESTAMP`,
		phrase, disposition.String(), confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to store exemplar: %w", err)
	}
	return nil
}

// LoadExemplars returns all persisted exemplars. Rows whose disposition no
// longer parses are skipped rather than failing the whole load.
func (s *LocalStore) LoadExemplars() ([]perception.Exemplar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT phrase, disposition, confidence FROM exemplars`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exemplars: %w", err)
	}
	defer rows.Close()

	var out []perception.Exemplar
	for rows.Next() {
		var phrase, disposition string
		var confidence float64
		if err := rows.Scan(&phrase, &disposition, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan exemplar row: %w", err)
		}
		d, err := types.ParseDisposition(disposition)
		if err != nil {
			logging.StoreWarn("skipping exemplar with unknown disposition %q", disposition)
			continue
		}
		out = append(out, perception.Exemplar{Phrase: phrase, Disposition: d, Confidence: confidence})
	}
	return out, rows.Err()
}

// =============================================================================
// SESSION CLARIFICATION ROUNDS
// =============================================================================

// Rounds returns the clarification rounds consumed by a session.
func (s *LocalStore) Rounds(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rounds int
	err := s.db.QueryRow(
		`SELECT rounds FROM session_rounds WHERE session_id = ?`, sessionID,
	).Scan(&rounds)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query rounds: %w", err)
	}
	return rounds, nil
}

// IncrementRounds bumps the clarification counter for a session and returns
// the new value.
func (s *LocalStore) IncrementRounds(sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO session_rounds (session_id, rounds, updated_at)
		 VALUES (?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET
			rounds = rounds + 1,
			updated_at = CURRENT_TIMESTAMP`,
		sessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to increment rounds: %w", err)
	}

	var rounds int
	if err := s.db.QueryRow(
		`SELECT rounds FROM session_rounds WHERE session_id = ?`, sessionID,
	).Scan(&rounds); err != nil {
		return 0, fmt.Errorf("failed to read rounds: %w", err)
	}
	return rounds, nil
}
