package service

import (
	"context"
	"time"
)

// Auth event types published to downstream services (ride matching, chat, mail).
const (
	AuthEventUserRegistered  = "auth.user_registered"
	AuthEventEmailConfirmed  = "auth.email_confirmed"
	AuthEventPasswordChanged = "auth.password_changed"
	AuthEventPasswordReset   = "auth.password_reset_requested"
	AuthEventSessionRevoked  = "auth.session_revoked"
)

// AuthEvent represents a credential lifecycle event for async processing.
// The mail service consumes password_reset_requested and user_registered events
// to deliver the embedded single-use token; this service never sends mail itself.
type AuthEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Token      string    `json:"token,omitempty"` // Confirmation or reset token for the mail service
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishAuthEvent publishes a credential lifecycle event for async processing.
	PublishAuthEvent(ctx context.Context, event *AuthEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
