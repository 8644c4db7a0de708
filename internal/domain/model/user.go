package model

import "time"

// User is a local account that authenticates against this gateway.
// The bootstrap superuser ("admin") is created on first startup and is
// never overwritten if it already exists.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
