package impl

import (
	"context"
	"testing"
	"time"

	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/repository"
	"carpool/internal/domain/service"
	"carpool/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	svc         usecase.SessionUsecase
	sessionRepo *fakeSessionRepo
	publisher   *fakePublisher
}

func newSessionFixture() *sessionFixture {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	publisher := newFakePublisher()

	svc := NewSessionService(SessionServiceParams{
		TxManager:   &fakeTxManager{factory: &fakeRepositoryFactory{userRepo: userRepo, sessionRepo: sessionRepo}},
		SessionRepo: sessionRepo,
		Publisher:   publisher,
		Logger:      newDiscardLogger(),
	})

	return &sessionFixture{svc: svc, sessionRepo: sessionRepo, publisher: publisher}
}

func seedSession(t *testing.T, repo *fakeSessionRepo, userID uuid.UUID, expiresAt time.Time) *entity.Session {
	t.Helper()

	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: "hash-" + uuid.NewString(),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, repo.CreateSession(context.Background(), session))

	return session
}

func TestSessionService_GetActiveSessions(t *testing.T) {
	fx := newSessionFixture()
	userID := uuid.New()

	seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	seedSession(t, fx.sessionRepo, userID, time.Now().Add(-time.Hour)) // expired
	seedSession(t, fx.sessionRepo, uuid.New(), time.Now().Add(time.Hour))

	sessions, err := fx.svc.GetActiveSessions(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionService_RevokeSession(t *testing.T) {
	fx := newSessionFixture()
	userID := uuid.New()
	session := seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	ctx := context.Background()

	require.NoError(t, fx.svc.RevokeSession(ctx, userID, session.ID))

	_, err := fx.sessionRepo.FindSessionByID(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	event := fx.publisher.lastEventOfType(service.AuthEventSessionRevoked)
	require.NotNil(t, event)
	assert.Equal(t, userID.String(), event.UserID)
}

func TestSessionService_RevokeSession_ForeignSessionIsForbidden(t *testing.T) {
	fx := newSessionFixture()
	owner := uuid.New()
	session := seedSession(t, fx.sessionRepo, owner, time.Now().Add(time.Hour))
	ctx := context.Background()

	err := fx.svc.RevokeSession(ctx, uuid.New(), session.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// The session survives and no event is published.
	_, err = fx.sessionRepo.FindSessionByID(ctx, session.ID)
	assert.NoError(t, err)
	assert.Nil(t, fx.publisher.lastEventOfType(service.AuthEventSessionRevoked))
}

func TestSessionService_RevokeSession_UnknownSession(t *testing.T) {
	fx := newSessionFixture()

	err := fx.svc.RevokeSession(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionService_RevokeAllOtherSessions(t *testing.T) {
	fx := newSessionFixture()
	userID := uuid.New()
	current := seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	other := seedSession(t, fx.sessionRepo, uuid.New(), time.Now().Add(time.Hour))
	ctx := context.Background()

	require.NoError(t, fx.svc.RevokeAllOtherSessions(ctx, userID, current.ID))

	sessions, err := fx.svc.GetActiveSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, current.ID, sessions[0].ID)

	// Sessions of other users are untouched.
	_, err = fx.sessionRepo.FindSessionByID(ctx, other.ID)
	assert.NoError(t, err)
	assert.NotNil(t, fx.publisher.lastEventOfType(service.AuthEventSessionRevoked))
}

func TestSessionService_CleanupExpiredSessions(t *testing.T) {
	fx := newSessionFixture()
	userID := uuid.New()
	live := seedSession(t, fx.sessionRepo, userID, time.Now().Add(time.Hour))
	expired := seedSession(t, fx.sessionRepo, userID, time.Now().Add(-time.Hour))
	ctx := context.Background()

	require.NoError(t, fx.svc.CleanupExpiredSessions(ctx))

	_, err := fx.sessionRepo.FindSessionByID(ctx, live.ID)
	assert.NoError(t, err)
	_, ok := fx.sessionRepo.sessions[expired.ID]
	assert.False(t, ok)
}
