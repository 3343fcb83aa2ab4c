package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a single SQLite table. Use ":memory:"
// for tests.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't open database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			pending_state    TEXT NOT NULL DEFAULT '',
			access_token     TEXT NOT NULL DEFAULT '',
			refresh_token    TEXT NOT NULL DEFAULT '',
			token_expires_at INTEGER NOT NULL DEFAULT 0
		);`,
	); err != nil {
		return nil, fmt.Errorf("couldn't init sessions schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT pending_state, access_token, refresh_token, token_expires_at
		FROM sessions
		WHERE id=?;`,
		id,
	)

	sess := Session{ID: id}
	var expiresAt int64
	err := row.Scan(&sess.PendingState, &sess.AccessToken, &sess.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't scan session: %w", err)
	}
	if expiresAt != 0 {
		sess.TokenExpiresAt = time.Unix(expiresAt, 0)
	}
	return &sess, nil
}

func (s *SQLiteStore) Save(session *Session) error {
	var expiresAt int64
	if !session.TokenExpiresAt.IsZero() {
		expiresAt = session.TokenExpiresAt.Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, pending_state, access_token, refresh_token, token_expires_at)
		VALUES (?1, ?2, ?3, ?4, ?5)
		ON CONFLICT (id) DO UPDATE SET
			pending_state=?2,
			access_token=?3,
			refresh_token=?4,
			token_expires_at=?5;`,
		session.ID,
		session.PendingState,
		session.AccessToken,
		session.RefreshToken,
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("couldn't upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id=?;`, id); err != nil {
		return fmt.Errorf("couldn't delete session: %w", err)
	}
	return nil
}
