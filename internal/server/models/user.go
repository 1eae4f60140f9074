package models

import "time"

// User is an account row in the identity store. PasswordHash is a bcrypt
// hash and never leaves the server.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}
