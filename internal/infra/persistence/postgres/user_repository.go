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
	"gorm.io/gorm/clause"
)

// userRepository implements the domain's UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID, preloading credentials and profiles.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Credentials").
		Preload("PassengerProfile").
		Preload("DriverProfile").
		First(&userM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address, preloading credentials and profiles.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Credentials").
		Preload("PassengerProfile").
		Preload("DriverProfile").
		First(&userM, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity together with its credentials and profiles.
// GORM's Create with associations inserts into users, user_credentials and the
// profile tables within a single statement batch.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid foreign key reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Propagate the generated ID and timestamps back to the entity
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt
	if user.Credentials != nil && userM.Credentials != nil {
		user.Credentials.UserID = userM.ID
		user.Credentials.UpdatedAt = userM.Credentials.UpdatedAt
	}
	if user.PassengerProfile != nil && userM.PassengerProfile != nil {
		user.PassengerProfile.UserID = userM.ID
		user.PassengerProfile.UpdatedAt = userM.PassengerProfile.UpdatedAt
	}
	if user.DriverProfile != nil && userM.DriverProfile != nil {
		user.DriverProfile.UserID = userM.ID
		user.DriverProfile.UpdatedAt = userM.DriverProfile.UpdatedAt
	}

	return nil
}

// Update modifies an existing user entity, including its associated profiles.
// Credentials are deliberately excluded: version and password hash only move
// through ConfirmEmail and RotatePassword so the counter stays monotonic.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	userM.Credentials = nil

	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Omit("Credentials").
		Save(userM).Error
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDriverAlreadyExists.WrapMessage("duplicate unique field")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required user information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("invalid foreign key reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt
	if user.PassengerProfile != nil && userM.PassengerProfile != nil {
		user.PassengerProfile.UpdatedAt = userM.PassengerProfile.UpdatedAt
	}
	if user.DriverProfile != nil && userM.DriverProfile != nil {
		user.DriverProfile.UpdatedAt = userM.DriverProfile.UpdatedAt
	}

	return nil
}

// ConfirmEmail stamps the confirmation time and bumps the credential version in
// one pass. Bumping the version invalidates every outstanding confirmation
// token, so the link in the email works exactly once.
func (repo *userRepository) ConfirmEmail(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND email_confirmed_at IS NULL", userID).
		Updates(map[string]any{
			"email_confirmed_at": now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to confirm email")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEmailAlreadyConfirmed
	}

	return repo.bumpCredentialVersion(ctx, userID, map[string]any{
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	})
}

// RotatePassword atomically swaps the password hash and increments the
// credential version. The increment happens inside the database, never in Go,
// so concurrent rotations cannot lose a step.
func (repo *userRepository) RotatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	now := time.Now()

	return repo.bumpCredentialVersion(ctx, userID, map[string]any{
		"last_password_hash":  gorm.Expr("password_hash"),
		"password_hash":       newPasswordHash,
		"version":             gorm.Expr("version + 1"),
		"password_updated_at": now,
		"updated_at":          now,
	})
}

func (repo *userRepository) bumpCredentialVersion(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialsModel{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update credentials")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// AcquireSessionMutex takes a row lock on the user for the rest of the
// surrounding transaction. Session-limit checks across devices serialize on it.
func (repo *userRepository) AcquireSessionMutex(ctx context.Context, userID uuid.UUID) error {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&userM, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to lock user row")
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:               data.ID,
		Email:            data.Email,
		Name:             data.Name,
		EmailConfirmedAt: data.EmailConfirmedAt,
		Credentials:      toCredentialsDomain(data.Credentials),
		PassengerProfile: toPassengerProfileDomain(data.PassengerProfile),
		DriverProfile:    toDriverProfileDomain(data.DriverProfile),
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:               data.ID,
		Email:            data.Email,
		Name:             data.Name,
		EmailConfirmedAt: data.EmailConfirmedAt,
		Credentials:      fromCredentialsDomain(data.Credentials),
		PassengerProfile: fromPassengerProfileDomain(data.PassengerProfile),
		DriverProfile:    fromDriverProfileDomain(data.DriverProfile),
	}
}

func toCredentialsDomain(data *model.CredentialsModel) *entity.Credentials {
	if data == nil {
		return nil
	}

	return &entity.Credentials{
		UserID:            data.UserID,
		Version:           data.Version,
		PasswordHash:      data.PasswordHash,
		LastPasswordHash:  data.LastPasswordHash,
		PasswordUpdatedAt: data.PasswordUpdatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func fromCredentialsDomain(data *entity.Credentials) *model.CredentialsModel {
	if data == nil {
		return nil
	}

	return &model.CredentialsModel{
		UserID:            data.UserID,
		Version:           data.Version,
		PasswordHash:      data.PasswordHash,
		LastPasswordHash:  data.LastPasswordHash,
		PasswordUpdatedAt: data.PasswordUpdatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func toPassengerProfileDomain(data *model.PassengerProfileModel) *entity.PassengerProfile {
	if data == nil {
		return nil
	}

	return &entity.PassengerProfile{
		UserID:               data.UserID,
		DefaultPickupAddress: data.DefaultPickupAddress,
		CompletedRides:       data.CompletedRides,
		UpdatedAt:            data.UpdatedAt,
	}
}

func fromPassengerProfileDomain(data *entity.PassengerProfile) *model.PassengerProfileModel {
	if data == nil {
		return nil
	}

	return &model.PassengerProfileModel{
		UserID:               data.UserID,
		DefaultPickupAddress: data.DefaultPickupAddress,
		CompletedRides:       data.CompletedRides,
		UpdatedAt:            data.UpdatedAt,
	}
}

func toDriverProfileDomain(data *model.DriverProfileModel) *entity.DriverProfile {
	if data == nil {
		return nil
	}

	return &entity.DriverProfile{
		UserID:         data.UserID,
		LicencePlate:   data.LicencePlate,
		VehicleModel:   data.VehicleModel,
		SeatCount:      data.SeatCount,
		DrivingLicence: data.DrivingLicence,
		UpdatedAt:      data.UpdatedAt,
	}
}

func fromDriverProfileDomain(data *entity.DriverProfile) *model.DriverProfileModel {
	if data == nil {
		return nil
	}

	return &model.DriverProfileModel{
		UserID:         data.UserID,
		LicencePlate:   data.LicencePlate,
		VehicleModel:   data.VehicleModel,
		SeatCount:      data.SeatCount,
		DrivingLicence: data.DrivingLicence,
		UpdatedAt:      data.UpdatedAt,
	}
}
