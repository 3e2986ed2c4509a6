package model

import "time"

// User represents an account as stored in the `users` table.  The
// password hash is excluded from JSON and never leaves the repository
// and service layers.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session ties an issued access token to a user.  Only the SHA-256 hash
// of the token is stored; a bearer token stops being accepted as soon as
// its session row is removed.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	TokenHash string    // sessions.token_hash
	CreatedAt time.Time // sessions.created_at
}
