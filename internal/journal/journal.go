package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Journal keeps per-request metadata in an in-memory sqlite database. It
// records what happened, never transcript text, and nothing survives a
// restart.
type Journal struct {
	db *sql.DB
}

// Entry is one journal row, newest first in listings.
type Entry struct {
	RequestID string    `json:"request_id"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	ErrorCode string    `json:"error_code,omitempty"`
	Duration  float64   `json:"duration"`
	WordCount int       `json:"word_count"`
	ElapsedMS int64     `json:"elapsed_ms"`
	CreatedAt time.Time `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	kind TEXT NOT NULL,
	model TEXT NOT NULL,
	status TEXT NOT NULL,
	error_code TEXT,
	duration REAL NOT NULL DEFAULT 0,
	word_count INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
`

// Open creates the journal. Use dsn ":memory:" in production; the
// connection pool is pinned to a single connection because every pooled
// connection would otherwise get its own private in-memory database.
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record inserts a new request in QUEUED state.
func (j *Journal) Record(requestID, url, kind, model string) error {
	_, err := j.db.Exec(
		`INSERT INTO requests (request_id, url, kind, model, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		requestID, url, kind, model, types.StatusQueued, time.Now())
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	return nil
}

// MarkProcessing flips a request to PROCESSING when a worker picks it up.
func (j *Journal) MarkProcessing(requestID string) error {
	_, err := j.db.Exec(
		`UPDATE requests SET status = ? WHERE request_id = ?`,
		types.StatusProcessing, requestID)
	if err != nil {
		return fmt.Errorf("mark request processing: %w", err)
	}
	return nil
}

// Complete records a successful transcription.
func (j *Journal) Complete(requestID string, duration float64, wordCount int, elapsedMS int64) error {
	_, err := j.db.Exec(
		`UPDATE requests SET status = ?, duration = ?, word_count = ?, elapsed_ms = ?
		 WHERE request_id = ?`,
		types.StatusCompleted, duration, wordCount, elapsedMS, requestID)
	if err != nil {
		return fmt.Errorf("complete request: %w", err)
	}
	return nil
}

// Fail records a failed request with its error code.
func (j *Journal) Fail(requestID, errorCode string, elapsedMS int64) error {
	_, err := j.db.Exec(
		`UPDATE requests SET status = ?, error_code = ?, elapsed_ms = ?
		 WHERE request_id = ?`,
		types.StatusFailed, errorCode, elapsedMS, requestID)
	if err != nil {
		return fmt.Errorf("fail request: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (j *Journal) List(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT request_id, url, kind, model, status, error_code,
		        duration, word_count, elapsed_ms, created_at
		 FROM requests ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errorCode sql.NullString
		if err := rows.Scan(&e.RequestID, &e.URL, &e.Kind, &e.Model, &e.Status,
			&errorCode, &e.Duration, &e.WordCount, &e.ElapsedMS, &e.CreatedAt); err != nil {
			continue
		}
		e.ErrorCode = errorCode.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
