package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/linguahub/client/internal/domain/entities"
)

// Persisted session keys. The three values form one atomic unit and are
// always written and cleared together.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// SessionStore persists the session in a local single-file database, the
// desktop counterpart of browser local storage.
type SessionStore struct {
	db *sqlx.DB
}

// Open creates the data directory if needed and opens (or initializes) the
// session database inside it.
func Open(dataDir string) (*SessionStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "session.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_store (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize session schema: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Save writes all three session values in one transaction so a crash can
// never leave a token without its user or vice versa.
func (s *SessionStore) Save(ctx context.Context, rec entities.SessionRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO session_store (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`

	pairs := map[string]string{
		keyAccessToken:  rec.AccessToken,
		keyRefreshToken: rec.RefreshToken,
		keyUser:         rec.UserJSON,
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx, upsert, key, value); err != nil {
			return fmt.Errorf("save session value %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

// Load reads the persisted session. ok is false when any of the three
// values is absent; partial rows are treated as no session at all.
func (s *SessionStore) Load(ctx context.Context) (rec entities.SessionRecord, ok bool, err error) {
	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return rec, false, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return rec, false, err
	}
	user, err := s.get(ctx, keyUser)
	if err != nil {
		return rec, false, err
	}

	if access == nil || refresh == nil || user == nil {
		return rec, false, nil
	}

	rec = entities.SessionRecord{
		AccessToken:  *access,
		RefreshToken: *refresh,
		UserJSON:     *user,
	}
	return rec, true, nil
}

// Clear removes all session values in one transaction.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_store`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, key string) (*string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM session_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session value %q: %w", key, err)
	}
	return &value, nil
}
