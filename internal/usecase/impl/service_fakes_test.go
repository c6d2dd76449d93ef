package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"carpool/config"
	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/repository"
	"carpool/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory fakes standing in for Postgres, Redis and the JWT codec. They obey
// the same contracts the real implementations do, including the version bump
// semantics of ConfirmEmail and RotatePassword.

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(maxActiveSessions int) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:        12,
			MaxActiveSessions: maxActiveSessions,
		},
	}
}

// --- user repository ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Credentials != nil {
		user.Credentials.UserID = user.ID
	}
	r.users[user.ID] = user

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = user

	return nil
}

func (r *fakeUserRepo) ConfirmEmail(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.EmailConfirmedAt != nil {
		return domainerrors.ErrEmailAlreadyConfirmed
	}

	now := time.Now()
	user.EmailConfirmedAt = &now
	user.Credentials.Version++

	return nil
}

func (r *fakeUserRepo) RotatePassword(_ context.Context, userID uuid.UUID, newPasswordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}

	creds := user.Credentials
	creds.LastPasswordHash = creds.PasswordHash
	creds.PasswordHash = newPasswordHash
	creds.Version++
	creds.PasswordUpdatedAt = time.Now()

	return nil
}

func (r *fakeUserRepo) AcquireSessionMutex(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- session repository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.CreatedAt = time.Now()
	r.sessions[session.ID] = session

	return nil
}

func (r *fakeSessionRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, repository.ErrSessionExpired
	}

	return session, nil
}

func (r *fakeSessionRepo) FindSessionByTokenHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.TokenHash == tokenHash {
			return session, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) FindSessionsByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*entity.Session
	for _, session := range r.sessions {
		if session.UserID == userID && time.Now().Before(session.ExpiresAt) {
			sessions = append(sessions, session)
		}
	}

	return sessions, nil
}

func (r *fakeSessionRepo) DeleteSession(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.sessions, id)

	return nil
}

func (r *fakeSessionRepo) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if session.TokenHash == tokenHash {
			delete(r.sessions, id)

			return nil
		}
	}

	return repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) DeleteSessionsByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}

	return nil
}

func (r *fakeSessionRepo) DeleteExpiredSessions(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if time.Now().After(session.ExpiresAt) {
			delete(r.sessions, id)
		}
	}

	return nil
}

func (r *fakeSessionRepo) CountActiveSessionsByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && time.Now().Before(session.ExpiresAt) {
			count++
		}
	}

	return count, nil
}

// --- transaction manager ---

type fakeRepositoryFactory struct {
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
}

func (f *fakeRepositoryFactory) UserRepo() repository.UserRepository {
	return f.userRepo
}

func (f *fakeRepositoryFactory) SessionRepo() repository.SessionRepository {
	return f.sessionRepo
}

type fakeTxManager struct {
	factory *fakeRepositoryFactory
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

// --- password hasher ---

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed(" + password + ")", nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed("+password+")"
}

// --- token service ---

type fakeTokenService struct {
	mu            sync.Mutex
	counter       int
	refreshClaims map[string]*service.RefreshClaims
	emailClaims   map[string]*service.EmailClaims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{
		refreshClaims: make(map[string]*service.RefreshClaims),
		emailClaims:   make(map[string]*service.EmailClaims),
	}
}

func (s *fakeTokenService) nextToken(prefix string) string {
	s.counter++

	return fmt.Sprintf("%s-token-%d", prefix, s.counter)
}

func (s *fakeTokenService) IssueAccessToken(user *entity.User, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextToken("access-" + user.ID.String()), nil
}

func (s *fakeTokenService) IssueRefreshToken(user *entity.User, tokenID uuid.UUID) (string, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tokenID == uuid.Nil {
		tokenID = uuid.New()
	}
	token := s.nextToken("refresh")
	s.refreshClaims[token] = &service.RefreshClaims{
		UserID:  user.ID,
		Version: user.Credentials.Version,
		TokenID: tokenID,
	}

	return token, tokenID, nil
}

func (s *fakeTokenService) IssueEmailToken(user *entity.User, tokenType entity.TokenType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.nextToken(tokenType.String())
	s.emailClaims[token] = &service.EmailClaims{
		UserID:  user.ID,
		Version: user.Credentials.Version,
	}

	return token, nil
}

func (s *fakeTokenService) VerifyAccessToken(string) (*service.AccessClaims, error) {
	return nil, domainerrors.ErrTokenMalformed
}

func (s *fakeTokenService) VerifyRefreshToken(tokenString string) (*service.RefreshClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.refreshClaims[tokenString]
	if !ok {
		return nil, domainerrors.ErrTokenMalformed
	}

	return claims, nil
}

func (s *fakeTokenService) VerifyEmailToken(tokenString string, _ entity.TokenType) (*service.EmailClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.emailClaims[tokenString]
	if !ok {
		return nil, domainerrors.ErrTokenMalformed
	}

	return claims, nil
}

func (s *fakeTokenService) HashToken(tokenString string) string {
	return "#" + tokenString
}

func (s *fakeTokenService) TokenTTL(entity.TokenType) time.Duration {
	return time.Hour
}

// --- denylist ---

type fakeDenylist struct {
	mu     sync.Mutex
	denied map[string]bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{denied: make(map[string]bool)}
}

func (d *fakeDenylist) Deny(_ context.Context, tokenHash string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ttl > 0 {
		d.denied[tokenHash] = true
	}

	return nil
}

func (d *fakeDenylist) IsDenied(_ context.Context, tokenHash string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.denied[tokenHash], nil
}

func (d *fakeDenylist) Close() error { return nil }

// --- event publisher ---

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.AuthEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (p *fakePublisher) PublishAuthEvent(_ context.Context, event *service.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

// lastEventOfType returns the most recent published event of the given type.
func (p *fakePublisher) lastEventOfType(eventType string) *service.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType == eventType {
			return p.events[i]
		}
	}

	return nil
}
