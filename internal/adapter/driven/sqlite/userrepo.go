package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// BootstrapUsername is the well-known superuser created on first startup.
const BootstrapUsername = "admin"

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByUsername returns the user with the given username, or (nil, nil)
// if no such user exists.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `
		SELECT id, username, password_hash, is_superuser, created_at, updated_at
		FROM users WHERE username = ?`

	var (
		user      model.User
		createdAt string
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.IsSuperuser, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for user %q: %w", username, err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for user %q: %w", username, err)
	}

	return &user, nil
}

// Create inserts a new user with an already-hashed password.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string, superuser bool) (model.User, error) {
	const query = `INSERT INTO users (username, password_hash, is_superuser) VALUES (?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query, username, passwordHash, superuser)
	if err != nil {
		return model.User{}, fmt.Errorf("create user %q: %w", username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("create user %q: %w", username, err)
	}

	created, err := r.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if created == nil {
		return model.User{}, fmt.Errorf("create user %q: row %d not visible after insert", username, id)
	}

	return *created, nil
}

// EnsureBootstrapSuperuser creates the "admin" superuser with the given
// password hash if absent. An existing record is never overwritten.
// Returns true when the record was created on this call.
func (r *UserRepo) EnsureBootstrapSuperuser(ctx context.Context, passwordHash string) (bool, error) {
	existing, err := r.GetByUsername(ctx, BootstrapUsername)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if _, err := r.Create(ctx, BootstrapUsername, passwordHash, true); err != nil {
		return false, err
	}
	return true, nil
}
