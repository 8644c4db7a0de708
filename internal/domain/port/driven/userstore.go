package driven

import (
	"context"

	"github.com/docvision/docvision/internal/domain/model"
)

// UserStore defines the driven port for local account persistence.
type UserStore interface {
	// GetByUsername returns the user with the given username.
	// Returns (nil, nil) if no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Create inserts a new user with an already-hashed password.
	Create(ctx context.Context, username, passwordHash string, superuser bool) (model.User, error)

	// EnsureBootstrapSuperuser creates the "admin" superuser with the given
	// password hash if it does not exist. Idempotent: returns true when the
	// record was created, false when it was already present.
	EnsureBootstrapSuperuser(ctx context.Context, passwordHash string) (bool, error)
}
