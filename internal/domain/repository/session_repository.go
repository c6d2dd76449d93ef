// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"carpool/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session's refresh token has expired.
	ErrSessionExpired = errors.New("session has expired")
)

// SessionRepository defines the interface for refresh-token session management.
// This supports multi-device login and remote logout functionality.
type SessionRepository interface {
	// CreateSession persists a new session. The session ID must equal the
	// tokenID embedded in the refresh token claims.
	CreateSession(ctx context.Context, session *entity.Session) error

	// FindSessionByID retrieves a session by the refresh token's tokenID.
	FindSessionByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindSessionByTokenHash retrieves a session by its securely stored token hash.
	FindSessionByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// FindSessionsByUserID retrieves all active sessions for a specific user,
	// letting users see every device they are logged in on.
	FindSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// DeleteSession removes a session by its ID, effectively ending it.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// DeleteSessionByTokenHash removes a session by its token hash.
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteSessionsByUserID removes all sessions for a specific user.
	// This is the "logout from all devices" operation.
	DeleteSessionsByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredSessions removes all expired sessions. Called periodically for cleanup.
	DeleteExpiredSessions(ctx context.Context) error

	// CountActiveSessionsByUserID returns the number of active (non-expired) sessions for a user.
	CountActiveSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}
