// Package models defines server-side data models persisted in the database.
package models

// Session is the authenticated identity context for the current user, as
// reconstructed from a verified access token. The profile workflow only
// ever reads it; sessions are minted on login and die with the token.
type Session struct {
	// UserID is the stable, opaque identifier of the authenticated user.
	UserID string
	// Email may be empty when the identity carries no address.
	Email string
}
