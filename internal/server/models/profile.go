package models

import "time"

// Profile is the persisted record describing a user's display attributes.
// Exactly one row exists per user (unique user_id); EnsureProfile
// establishes that on first login.
type Profile struct {
	// ID is the store-assigned record identifier.
	ID string
	// UserID links the profile to its owning user.
	UserID string
	// Name is the display name (column "nome").
	Name string
	// Email is the contact address shown on the profile.
	Email string
	// AvatarURL is the public URL of the current avatar asset
	// (column "foto_perfil"); empty when the user has none.
	AvatarURL string
	// Version is bumped on every update and guards against lost updates.
	Version int64

	UpdatedAt time.Time
}
