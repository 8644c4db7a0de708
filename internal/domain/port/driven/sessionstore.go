package driven

import "context"

// SessionStore defines the driven port for provider session persistence.
// A user holds at most one session; Upsert replaces atomically.
type SessionStore interface {
	// Upsert stores the provider session key for the user, replacing any
	// existing session in the same transaction. Readers never observe a
	// state with zero or two sessions for the user.
	Upsert(ctx context.Context, userID int64, userKey string) error

	// Get retrieves the stored session key for the user.
	// Returns ("", nil) if no session exists.
	Get(ctx context.Context, userID int64) (string, error)
}
