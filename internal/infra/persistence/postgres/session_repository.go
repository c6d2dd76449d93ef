package postgres

import (
	"context"
	"time"

	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/repository"
	"carpool/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain's SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// CreateSession persists a new refresh-token session.
func (repo *sessionRepository) CreateSession(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindSessionByID retrieves a session by the refresh token's tokenID.
func (repo *sessionRepository) FindSessionByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).First(&sessionM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	return checkSessionExpiry(toSessionDomain(&sessionM))
}

// FindSessionByTokenHash retrieves a session by its stored token hash.
func (repo *sessionRepository) FindSessionByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).First(&sessionM, "token_hash = ?", tokenHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token hash")
	}

	return checkSessionExpiry(toSessionDomain(&sessionM))
}

// FindSessionsByUserID retrieves all active sessions for a user, newest first.
func (repo *sessionRepository) FindSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionMs []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&sessionMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find sessions by user id")
	}

	sessions := make([]*entity.Session, 0, len(sessionMs))
	for i := range sessionMs {
		sessions = append(sessions, toSessionDomain(&sessionMs[i]))
	}

	return sessions, nil
}

// DeleteSession removes a session by its ID, effectively ending it.
func (repo *sessionRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "id = ?", id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteSessionByTokenHash removes a session by its token hash.
func (repo *sessionRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	result := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "token_hash = ?", tokenHash)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete session by token hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteSessionsByUserID removes all sessions for a user (logout from all devices).
func (repo *sessionRepository) DeleteSessionsByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "user_id = ?", userID).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete sessions by user id")
	}

	return nil
}

// DeleteExpiredSessions removes all expired sessions. Called periodically for cleanup.
func (repo *sessionRepository) DeleteExpiredSessions(ctx context.Context) error {
	err := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "expires_at <= ?", time.Now()).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete expired sessions")
	}

	return nil
}

// CountActiveSessionsByUserID returns the number of non-expired sessions for a user.
func (repo *sessionRepository) CountActiveSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count active sessions")
	}

	return int(count), nil
}

// checkSessionExpiry converts expired rows into a domain error so lookups by
// ID or hash never hand back a stale session.
func checkSessionExpiry(session *entity.Session) (*entity.Session, error) {
	if time.Now().After(session.ExpiresAt) {
		return nil, repository.ErrSessionExpired
	}

	return session, nil
}

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
