package domain

import "time"

// UserIdentity is the authenticated actor behind every connection.
// The ID is opaque and immutable; only the display name may change.
type UserIdentity struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
