// Package service defines domain service interfaces implemented by the infrastructure layer.
package service

import (
	"time"

	"carpool/internal/domain/entity"

	"github.com/google/uuid"
)

// AccessClaims is the verified payload of an access token.
// Access tokens are stateless: no credential version, no database read at verify time.
type AccessClaims struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// RefreshClaims is the verified payload of a refresh token.
// Version enables bulk revocation on password change; TokenID revokes a single session.
type RefreshClaims struct {
	UserID  uuid.UUID
	Version int
	TokenID uuid.UUID
}

// EmailClaims is the verified payload of a confirmation or reset-password token.
type EmailClaims struct {
	UserID  uuid.UUID
	Version int
}

// TokenService signs and verifies all token types the service knows about.
// Implementations select algorithm, secret material and lifetime per token type
// from a fixed table; callers never pass keys. All methods are pure CPU-bound
// computations and safe for concurrent use.
type TokenService interface {
	// IssueAccessToken signs a short-lived RS256 access token for the user.
	// audienceOverride replaces the configured domain audience when non-empty.
	IssueAccessToken(user *entity.User, audienceOverride string) (string, error)

	// IssueRefreshToken signs an HS256 refresh token embedding the user's current
	// credential version and the given tokenID. Pass uuid.Nil to mint a fresh one.
	IssueRefreshToken(user *entity.User, tokenID uuid.UUID) (string, uuid.UUID, error)

	// IssueEmailToken signs an HS256 confirmation or reset-password token
	// embedding the user's current credential version.
	IssueEmailToken(user *entity.User, tokenType entity.TokenType) (string, error)

	// VerifyAccessToken verifies signature, issuer, audience, expiry and max-age
	// against the access token's configured public key.
	VerifyAccessToken(tokenString string) (*AccessClaims, error)

	// VerifyRefreshToken verifies a refresh token against the refresh secret.
	// The caller must still compare the returned Version with the user's current
	// credential version; a mismatch means the token is revoked.
	VerifyRefreshToken(tokenString string) (*RefreshClaims, error)

	// VerifyEmailToken verifies a confirmation or reset-password token against
	// the type's own secret. The caller performs the same version comparison.
	VerifyEmailToken(tokenString string, tokenType entity.TokenType) (*EmailClaims, error)

	// HashToken returns the SHA-256 hex digest used to store and look up tokens.
	HashToken(tokenString string) string

	// TokenTTL returns the configured lifetime for a token type.
	TokenTTL(tokenType entity.TokenType) time.Duration
}
