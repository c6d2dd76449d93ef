package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credentials represents a user's password credential together with the
// revocation version embedded into refresh and email tokens.
//
// Version is a monotonic counter: it starts at 0 on registration, moves to 1
// when the email is confirmed, and increases by one on every password change.
// Any outstanding token carrying an older version is treated as revoked.
// It never decreases.
type Credentials struct {
	UserID            uuid.UUID // Links this credential to the User it belongs to.
	Version           int       // Monotonic revocation counter embedded in version-carrying tokens.
	PasswordHash      string    // The current bcrypt password hash.
	LastPasswordHash  string    // The previous hash, kept so a reset cannot reuse the old password.
	PasswordUpdatedAt time.Time // When the password last changed.
	UpdatedAt         time.Time // Timestamp of the last modification to this credential.
}

// Session represents a long-lived, authorized login session backed by a refresh token.
// Its ID equals the tokenID (jti) embedded in the refresh token claims, so a single
// session can be revoked without touching the user's other devices.
type Session struct {
	ID        uuid.UUID // The tokenID carried inside the refresh token claims.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token for secure comparison in the database.
	ExpiresAt time.Time // The exact time when this session's refresh token expires.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}
