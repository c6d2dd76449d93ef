package service

import (
	"context"
	"time"
)

// TokenDenylist records access tokens revoked before their natural expiry.
// Access tokens carry no credential version, so logout can only invalidate them
// through this list; entries live exactly as long as the token would have.
type TokenDenylist interface {
	// Deny marks a token hash as revoked for the given remaining lifetime.
	// A non-positive ttl is a no-op because the token is already expired.
	Deny(ctx context.Context, tokenHash string, ttl time.Duration) error

	// IsDenied reports whether a token hash has been revoked.
	IsDenied(ctx context.Context, tokenHash string) (bool, error)

	// Close releases any resources held by the denylist.
	Close() error
}
