package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docvision/docvision/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port.
// A user holds at most one provider session (UNIQUE on user_id); Upsert
// replaces any existing row inside a single transaction so readers never
// observe a half-written state.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Upsert stores the session key for the user, replacing any prior session.
// The delete and insert run in one transaction.
func (r *SessionRepo) Upsert(ctx context.Context, userID int64, userKey string) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert session for user %d: begin: %w", userID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM provider_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("upsert session for user %d: delete: %w", userID, err)
	}

	const insert = `INSERT INTO provider_sessions (user_id, user_key) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insert, userID, userKey); err != nil {
		return fmt.Errorf("upsert session for user %d: insert: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert session for user %d: commit: %w", userID, err)
	}
	return nil
}

// Get retrieves the stored session key for the user.
// Returns ("", nil) if no session exists.
func (r *SessionRepo) Get(ctx context.Context, userID int64) (string, error) {
	const query = `SELECT user_key FROM provider_sessions WHERE user_id = ?`

	var userKey string
	err := r.db.Reader.QueryRowContext(ctx, query, userID).Scan(&userKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session for user %d: %w", userID, err)
	}

	return userKey, nil
}
