package application

import (
	"context"
	"fmt"
	"time"

	"github.com/docvision/docvision/internal/auth"
	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// BootstrapPassword is the well-known initial password for the "admin"
// superuser created on first startup. It is meant to be changed by the
// operator; the record is never overwritten once present.
const BootstrapPassword = "admin"

// AuthService verifies local credentials and issues bearer tokens for
// the browser client. It has no knowledge of provider sessions.
type AuthService struct {
	users    driven.UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates an AuthService with the required dependencies.
func NewAuthService(users driven.UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Login verifies a username/password pair and returns a signed bearer
// token. Any mismatch fails with model.ErrAuthenticationFailed; whether
// the user exists is never distinguishable from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("login lookup: %w", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return "", model.ErrAuthenticationFailed
	}

	token, err := auth.GenerateToken(user.Username, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token for %q: %w", username, err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Invalid, expired or
// orphaned tokens all fail with model.ErrAuthenticationFailed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	username, err := auth.UsernameFromToken(token, s.secret)
	if err != nil {
		return nil, model.ErrAuthenticationFailed
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authenticate lookup: %w", err)
	}
	if user == nil {
		return nil, model.ErrAuthenticationFailed
	}
	return user, nil
}

// EnsureBootstrapSuperuser creates the admin superuser if absent.
// Returns true when the record was created on this call.
func (s *AuthService) EnsureBootstrapSuperuser(ctx context.Context) (bool, error) {
	hash, err := auth.HashPassword(BootstrapPassword)
	if err != nil {
		return false, fmt.Errorf("hash bootstrap password: %w", err)
	}
	return s.users.EnsureBootstrapSuperuser(ctx, hash)
}
