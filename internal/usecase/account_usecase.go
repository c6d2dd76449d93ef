// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"carpool/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterPassengerInput defines the data required to register a new passenger.
type RegisterPassengerInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterDriverInput defines the data required to register a new driver.
// When the email already belongs to a passenger account, the driver profile is
// attached to it after the password is verified.
type RegisterDriverInput struct {
	Name           string
	Email          string
	Password       string
	LicencePlate   string
	VehicleModel   string
	SeatCount      int
	DrivingLicence string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the refresh token presented for a new access token.
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput carries both tokens of the session being ended. The access token
// is optional; when present it is denylisted for its remaining lifetime.
type LogoutInput struct {
	RefreshToken string
	AccessToken  string
}

// ResetPasswordInput carries a reset-password token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ChangePasswordInput carries an authenticated password change request.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the freshly issued access token. The refresh token
// itself is never rotated here.
type RefreshOutput struct {
	AccessToken string
}

// AccountUsecase defines the interface for account and credential operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	RegisterPassenger(ctx context.Context, input *RegisterPassengerInput) (*RegisterOutput, error)
	RegisterDriver(ctx context.Context, input *RegisterDriverInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
	LogoutAllDevices(ctx context.Context, userID uuid.UUID) error
	ConfirmEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
