// Package credstore persists the bearer token and a small set of local
// preferences across restarts, so a relaunched client rehydrates its
// session the way a reloaded browser tab would.
package credstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const (
	keyToken         = "token"
	keyTermsAccepted = "terms_accepted"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cred db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init cred schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, bool) {
	var v string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key=?", key).Scan(&v)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`,
		key, value)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM prefs WHERE key=?", key)
	return err
}

// ---- Typed helpers ----

func (s *Store) Token() (string, bool) {
	return s.Get(keyToken)
}

func (s *Store) SetToken(token string) error {
	return s.Set(keyToken, token)
}

// ClearToken drops the stored credential. The terms-accepted preference is
// deliberately left alone: logging out does not un-accept the terms.
func (s *Store) ClearToken() error {
	return s.Delete(keyToken)
}

func (s *Store) TermsAccepted() bool {
	v, ok := s.Get(keyTermsAccepted)
	return ok && v == "true"
}

func (s *Store) SetTermsAccepted() error {
	return s.Set(keyTermsAccepted, "true")
}
