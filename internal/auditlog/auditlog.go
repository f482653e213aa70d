// Package auditlog provides a durable record of processed intake
// events.
//
// The recipe index and vote ledger only show current state; once an
// event is rejected it leaves no trace there. The audit log keeps one
// row per event so operators can answer "what happened to issue #42"
// after the fact. It is opt-in and lives outside the committed data
// files.
package auditlog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added created_at index
const currentSchemaVersion = 1

// Entry is one processed intake event.
type Entry struct {
	ID        string
	Action    string
	RecipeID  string
	BuildID   string
	Accepted  bool
	Code      string
	Message   string
	Issue     int
	CreatedAt string
}

// Log is a SQLite-backed append-only event log.
// Uses WAL mode for concurrent read access.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the wall clock used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open creates or opens the audit database at the given path.
// Applies required pragmas and migrations automatically; safe to call
// multiple times.
func Open(path string, opts ...Option) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect audit db: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under the bot's sequential writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	l := &Log{db: db, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Append records one event. A missing id gets a fresh UUIDv7 and a
// missing created_at gets the current time, so callers normally fill
// only the outcome fields.
func (l *Log) Append(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = l.now().UTC().Format(time.RFC3339)
	}

	_, err := l.db.Exec(`
		INSERT INTO events (id, action, recipe_id, build_id, accepted, code, message, issue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, e.RecipeID, e.BuildID, boolToInt(e.Accepted),
		e.Code, e.Message, e.Issue, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, action, recipe_id, build_id, accepted, code, message, issue, created_at
		FROM events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var accepted int
		if err := rows.Scan(&e.ID, &e.Action, &e.RecipeID, &e.BuildID,
			&accepted, &e.Code, &e.Message, &e.Issue, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Accepted = accepted != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
