// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"carpool/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user and credential persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user, credentials included, by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user, credentials included, by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity together with its initial credentials.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// ConfirmEmail stamps the confirmation time and bumps the credential version
	// in a single atomic update, consuming all outstanding confirmation tokens.
	ConfirmEmail(ctx context.Context, userID uuid.UUID) error

	// RotatePassword atomically stores the new password hash, records the previous
	// one, stamps the timestamps, and increments the credential version. The
	// version only ever moves forward; callers must never pass a target version.
	RotatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error

	// AcquireSessionMutex locks the user row for the rest of the surrounding
	// transaction. Used to serialize session-limit checks across devices.
	AcquireSessionMutex(ctx context.Context, userID uuid.UUID) error
}
