package model

import "time"

// ProviderSession is the Didox-issued user-key stored for a local user.
// At most one session exists per user; storing a new one replaces any
// prior session. The key is injected into outbound document calls and is
// never serialized into a client response.
type ProviderSession struct {
	ID        int64
	UserID    int64
	UserKey   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
