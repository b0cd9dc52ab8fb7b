package blogfront

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = sql.ErrNoRows

// SessionRecord is the persisted part of a Session.
type SessionRecord struct {
	ID         string
	Token      string
	Page       int
	Category   string
	Generation uint64
	UpdatedAt  time.Time
}

// SessionStore wraps a SQLite database holding session records so users
// stay logged in across restarts.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore opens (or creates) the SQLite database at path, ensures
// the data directory exists, and runs schema migrations.
func NewSessionStore(path string) (*SessionStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the eviction sweep read while handlers write; writers wait on
	// the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SessionStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL DEFAULT '',
    page INTEGER NOT NULL DEFAULT 1,
    category TEXT NOT NULL DEFAULT '',
    generation INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`)
	return err
}

// Load returns the record for id, or ErrNotFound.
func (s *SessionStore) Load(id string) (SessionRecord, error) {
	rec := SessionRecord{ID: id}
	var updated, gen int64
	err := s.db.QueryRow(`SELECT token, page, category, generation, updated_at FROM sessions WHERE id = ?`, id).
		Scan(&rec.Token, &rec.Page, &rec.Category, &gen, &updated)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.Generation = uint64(gen)
	rec.UpdatedAt = time.Unix(updated, 0)
	return rec, nil
}

// Save upserts a record.
func (s *SessionStore) Save(rec SessionRecord) error {
	if rec.Page < 1 {
		rec.Page = 1
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions (id, token, page, category, generation, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Token, rec.Page, rec.Category, int64(rec.Generation), rec.UpdatedAt.Unix())
	return err
}

// Delete removes a record by id.
func (s *SessionStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// Prune deletes records not updated since before and returns how many went.
func (s *SessionStore) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE updated_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
