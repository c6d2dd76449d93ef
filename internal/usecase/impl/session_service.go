package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "carpool/internal/delivery/context"
	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/repository"
	"carpool/internal/domain/service"
	"carpool/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager   repository.TransactionManager
	sessionRepo repository.SessionRepository
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SessionRepo repository.SessionRepository
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager:   params.TxManager,
		sessionRepo: params.SessionRepo,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetActiveSessions retrieves all active sessions for a user.
func (srv *sessionService) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	srv.log(ctx).Debug("Getting active sessions", slog.Any("userID", userID))

	sessions, err := srv.sessionRepo.FindSessionsByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to get active sessions", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to get active sessions")
	}

	return sessions, nil
}

// RevokeSession revokes a single session after verifying it belongs to the user.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to revoke session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindSessionByID(ctx, sessionID)
		if err != nil {
			return errors.Wrap(err, "failed to find session")
		}

		if session.UserID != userID {
			return errors.Wrap(domainerrors.ErrForbidden, "session does not belong to user")
		}

		if err := sessionRepo.DeleteSession(ctx, sessionID); err != nil {
			return errors.Wrap(err, "failed to delete session")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err), slog.Any("userID", userID), slog.Any("sessionID", sessionID))

		return errors.Wrap(err, "failed to revoke session")
	}

	srv.publishRevokedEvent(ctx, userID)
	srv.log(ctx).Info("Successfully revoked session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	return nil
}

// RevokeAllOtherSessions ends every session except the one making the request.
func (srv *sessionService) RevokeAllOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to revoke other sessions", slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		sessions, err := sessionRepo.FindSessionsByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}

		for _, session := range sessions {
			if session.ID == currentSessionID {
				continue
			}
			if err := sessionRepo.DeleteSession(ctx, session.ID); err != nil {
				return errors.Wrap(err, "failed to delete session")
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke other sessions", slog.Any("error", err), slog.Any("userID", userID))

		return errors.Wrap(err, "failed to revoke other sessions")
	}

	srv.publishRevokedEvent(ctx, userID)
	srv.log(ctx).Info("Successfully revoked other sessions", slog.Any("userID", userID))

	return nil
}

// CleanupExpiredSessions removes expired session rows. Run from a periodic job.
func (srv *sessionService) CleanupExpiredSessions(ctx context.Context) error {
	srv.log(ctx).Debug("Cleaning up expired sessions")

	if err := srv.sessionRepo.DeleteExpiredSessions(ctx); err != nil {
		srv.log(ctx).Error("Failed to clean up expired sessions", slog.Any("error", err))

		return errors.Wrap(err, "failed to clean up expired sessions")
	}

	return nil
}

func (srv *sessionService) publishRevokedEvent(ctx context.Context, userID uuid.UUID) {
	event := &service.AuthEvent{
		EventType:  service.AuthEventSessionRevoked,
		UserID:     userID.String(),
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}

	if err := srv.publisher.PublishAuthEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish session revoked event", slog.Any("error", err))
	}
}
