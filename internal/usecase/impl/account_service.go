// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"carpool/config"
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

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	sessionRepo       repository.SessionRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	denylist          service.TokenDenylist
	publisher         service.EventPublisher
	maxActiveSessions int
	logger            *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Denylist     service.TokenDenylist
	Publisher    service.EventPublisher
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	maxActiveSessions := 0
	if params.Config != nil && params.Config.Auth != nil {
		maxActiveSessions = params.Config.Auth.MaxActiveSessions
	}

	return &accountService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		sessionRepo:       params.SessionRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		denylist:          params.Denylist,
		publisher:         params.Publisher,
		maxActiveSessions: maxActiveSessions,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterPassenger orchestrates the complete passenger registration process.
// The account starts unconfirmed with credential version 0; the confirmation
// token embedding that version is handed to the mail service via an event.
func (srv *accountService) RegisterPassenger(ctx context.Context, input *usecase.RegisterPassengerInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting passenger registration", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Name:  input.Name,
		Email: input.Email,
		Credentials: &entity.Credentials{
			Version:           0,
			PasswordHash:      hashedPassword,
			PasswordUpdatedAt: time.Now(),
		},
		PassengerProfile: &entity.PassengerProfile{},
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(ctx, newUser)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute passenger registration transaction")
	}

	srv.publishTokenEvent(ctx, service.AuthEventUserRegistered, newUser, entity.TokenTypeConfirmation)
	srv.log(ctx).Debug("Passenger registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// RegisterDriver registers a new driver account, or attaches a driver profile
// to an existing account after the password is verified.
func (srv *accountService) RegisterDriver(ctx context.Context, input *usecase.RegisterDriverInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting driver registration", slog.String("email", input.Email))

	var registeredUser *entity.User
	var freshAccount bool

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		existingUser, err := userRepo.FindByEmail(ctx, input.Email)
		if errors.Is(err, repository.ErrUserNotFound) {
			newUser, createErr := srv.createDriverAccount(ctx, userRepo, input)
			if createErr != nil {
				return createErr
			}
			registeredUser = newUser
			freshAccount = true

			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user by email")
		}

		attachedUser, err := srv.attachDriverProfile(ctx, userRepo, existingUser, input)
		if err != nil {
			return err
		}
		registeredUser = attachedUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute driver registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute driver registration transaction")
	}

	if freshAccount {
		srv.publishTokenEvent(ctx, service.AuthEventUserRegistered, registeredUser, entity.TokenTypeConfirmation)
	}
	srv.log(ctx).Debug("Driver registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

func (srv *accountService) createDriverAccount(ctx context.Context, userRepo repository.UserRepository, input *usecase.RegisterDriverInput) (*entity.User, error) {
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Name:  input.Name,
		Email: input.Email,
		Credentials: &entity.Credentials{
			Version:           0,
			PasswordHash:      hashedPassword,
			PasswordUpdatedAt: time.Now(),
		},
		DriverProfile: buildDriverProfile(input),
	}

	if err := userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, "failed to create driver during registration")
	}

	return newUser, nil
}

func (srv *accountService) attachDriverProfile(ctx context.Context, userRepo repository.UserRepository, user *entity.User, input *usecase.RegisterDriverInput) (*entity.User, error) {
	if !srv.hasher.Check(input.Password, user.Credentials.PasswordHash) {
		srv.log(ctx).Warn("Password mismatch when attaching driver profile", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch during driver registration")
	}

	if user.DriverProfile != nil {
		srv.log(ctx).Warn("Driver profile already exists for account", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrDriverAlreadyExists.WrapMessage("driver profile already registered for this account")
	}

	profile := buildDriverProfile(input)
	profile.UserID = user.ID
	user.DriverProfile = profile
	if input.Name != "" {
		user.Name = input.Name
	}

	if err := userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to attach driver profile during registration")
	}

	srv.log(ctx).Debug("Attached driver profile to existing account", slog.Any("userID", user.ID))

	return user, nil
}

func buildDriverProfile(input *usecase.RegisterDriverInput) *entity.DriverProfile {
	return &entity.DriverProfile{
		LicencePlate:   input.LicencePlate,
		VehicleModel:   input.VehicleModel,
		SeatCount:      input.SeatCount,
		DrivingLicence: input.DrivingLicence,
	}
}

// Login orchestrates the user login process and opens a new session.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	loggedInUser, err := srv.loadUserByEmail(ctx, input.Email)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load login user from primary")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, loggedInUser.Credentials.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !loggedInUser.EmailConfirmed() {
		srv.log(ctx).Warn("Login rejected for unconfirmed email", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrEmailNotConfirmed, "login failed")
	}

	// Generate new tokens outside transaction.
	accessToken, err := srv.tokenService.IssueAccessToken(loggedInUser, "")
	if err != nil {
		srv.log(ctx).Error("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, tokenID, err := srv.tokenService.IssueRefreshToken(loggedInUser, uuid.Nil)
	if err != nil {
		srv.log(ctx).Error("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	if err := srv.persistLoginSession(ctx, loggedInUser.ID, tokenID, refreshToken); err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session during login")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         loggedInUser,
	}, nil
}

func (srv *accountService) loadUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user *entity.User

	// Load user data from primary in a short transaction to avoid stale reads on replicas.
	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findErr error
		user, findErr = repoFactory.UserRepo().FindByEmail(ctx, email)

		return findErr
	}); err != nil {
		return nil, err
	}

	return user, nil
}

func (srv *accountService) loadUserByID(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User

	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findErr error
		user, findErr = repoFactory.UserRepo().FindByID(ctx, userID)

		return findErr
	}); err != nil {
		return nil, err
	}

	return user, nil
}

func (srv *accountService) persistLoginSession(ctx context.Context, userID, tokenID uuid.UUID, refreshToken string) error {
	newSession := &entity.Session{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(srv.tokenService.TokenTTL(entity.TokenTypeRefresh)),
	}

	if srv.maxActiveSessions > 0 {
		// When the session limit is enabled, keep lock/count/insert in one short transaction.
		return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			if err := repoFactory.UserRepo().AcquireSessionMutex(ctx, userID); err != nil {
				return errors.Wrap(err, "failed to lock user row for session limit check")
			}

			sessionRepo := repoFactory.SessionRepo()
			activeSessions, err := sessionRepo.CountActiveSessionsByUserID(ctx, userID)
			if err != nil {
				return errors.Wrap(err, "failed to count active sessions")
			}
			if activeSessions >= srv.maxActiveSessions {
				return errors.Wrap(domainerrors.ErrSessionLimitExceeded, "active session limit exceeded")
			}

			return sessionRepo.CreateSession(ctx, newSession)
		})
	}

	// No session limit: direct insert avoids unnecessary transaction overhead.
	if err := srv.sessionRepo.CreateSession(ctx, newSession); err != nil {
		return errors.Wrap(err, "failed to store session")
	}

	return nil
}

// Refresh issues a new access token against a presented refresh token.
// The refresh token itself is never rotated; a token is honored only while its
// session row exists and its embedded version matches the user's current one.
func (srv *accountService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Info("Attempting to refresh access token")

	claims, err := srv.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "invalid refresh token")
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	var newAccessToken string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// The session row is the server-side half of the refresh token.
		session, err := repoFactory.SessionRepo().FindSessionByID(ctx, claims.TokenID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionExpired) {
				return errors.Wrap(domainerrors.ErrTokenRevoked, "session no longer active")
			}

			return errors.Wrap(err, "failed to find session")
		}
		if session.TokenHash != tokenHash {
			return errors.Wrap(domainerrors.ErrTokenRevoked, "refresh token does not match session")
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		// A version behind the current counter means the password changed after
		// this token was issued.
		if user.Credentials == nil || user.Credentials.Version != claims.Version {
			return errors.Wrap(domainerrors.ErrTokenRevoked, "credential version mismatch")
		}

		newAccessToken, err = srv.tokenService.IssueAccessToken(user, "")
		if err != nil {
			return errors.Wrap(err, "failed to issue new access token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to refresh access token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh transaction")
	}

	return &usecase.RefreshOutput{AccessToken: newAccessToken}, nil
}

// Logout ends a single session by deleting its row and denylisting the access token.
func (srv *accountService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	srv.log(ctx).Info("Attempting to log out")

	if _, err := srv.tokenService.VerifyRefreshToken(input.RefreshToken); err != nil {
		// Even if the token is invalid, proceed to delete its session row.
		srv.log(ctx).Warn("Logout with invalid refresh token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	if err := srv.sessionRepo.DeleteSessionByTokenHash(ctx, tokenHash); err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			srv.log(ctx).Error("Failed to delete session", slog.Any("error", err))

			return errors.Wrap(err, "failed to delete session")
		}
	}

	srv.denyAccessToken(ctx, input.AccessToken)
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// LogoutAllDevices invalidates every session a user holds.
func (srv *accountService) LogoutAllDevices(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to log out from all devices", slog.Any("userID", userID))

	if err := srv.sessionRepo.DeleteSessionsByUserID(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to delete all sessions", slog.Any("error", err), slog.Any("userID", userID))

		return errors.Wrap(err, "failed to delete all sessions")
	}

	srv.publishEvent(ctx, &service.AuthEvent{
		EventType: service.AuthEventSessionRevoked,
		UserID:    userID.String(),
	})
	srv.log(ctx).Info("Successfully logged out from all devices", slog.Any("userID", userID))

	return nil
}

// ConfirmEmail consumes a confirmation token. The version bump performed by the
// repository invalidates every other confirmation token issued before.
func (srv *accountService) ConfirmEmail(ctx context.Context, token string) error {
	srv.log(ctx).Info("Attempting to confirm email")

	claims, err := srv.tokenService.VerifyEmailToken(token, entity.TokenTypeConfirmation)
	if err != nil {
		return errors.Wrap(err, "invalid confirmation token")
	}

	var confirmedUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		if user.Credentials == nil || user.Credentials.Version != claims.Version {
			return errors.Wrap(domainerrors.ErrTokenRevoked, "credential version mismatch")
		}
		if user.EmailConfirmed() {
			return errors.Wrap(domainerrors.ErrEmailAlreadyConfirmed, "email already confirmed")
		}

		if err := userRepo.ConfirmEmail(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to confirm email")
		}
		confirmedUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to confirm email", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute email confirmation transaction")
	}

	srv.publishEvent(ctx, &service.AuthEvent{
		EventType: service.AuthEventEmailConfirmed,
		UserID:    confirmedUser.ID.String(),
		Email:     confirmedUser.Email,
	})
	srv.log(ctx).Info("Email confirmed", slog.Any("userID", confirmedUser.ID))

	return nil
}

// RequestPasswordReset issues a reset token and hands it to the mail service.
// The response is identical whether or not the email exists, so the endpoint
// cannot be used to probe for registered accounts.
func (srv *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	srv.log(ctx).Info("Password reset requested")

	user, err := srv.loadUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Password reset requested for unknown email")

			return nil
		}

		return errors.Wrap(err, "failed to load user for password reset")
	}

	srv.publishTokenEvent(ctx, service.AuthEventPasswordReset, user, entity.TokenTypeResetPassword)

	return nil
}

// ResetPassword consumes a reset-password token and rotates the credential.
// The version bump revokes the consumed token together with every outstanding
// refresh and email token.
func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	srv.log(ctx).Info("Attempting to reset password")

	claims, err := srv.tokenService.VerifyEmailToken(input.Token, entity.TokenTypeResetPassword)
	if err != nil {
		return errors.Wrap(err, "invalid reset password token")
	}

	user, err := srv.loadUserByID(ctx, claims.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to load user for password reset")
	}
	if user.Credentials == nil || user.Credentials.Version != claims.Version {
		return errors.Wrap(domainerrors.ErrTokenRevoked, "credential version mismatch")
	}

	newHash, err := srv.prepareNewPasswordHash(ctx, user, input.NewPassword)
	if err != nil {
		return err
	}

	if err := srv.rotatePasswordAndDropSessions(ctx, user.ID, newHash); err != nil {
		srv.log(ctx).Error("Failed to reset password", slog.Any("error", err), slog.Any("userID", user.ID))

		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.publishEvent(ctx, &service.AuthEvent{
		EventType: service.AuthEventPasswordChanged,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})
	srv.log(ctx).Info("Password reset completed", slog.Any("userID", user.ID))

	return nil
}

// ChangePassword rotates the credential for an authenticated user.
func (srv *accountService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Attempting to change password", slog.Any("userID", input.UserID))

	user, err := srv.loadUserByID(ctx, input.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to load user for password change")
	}

	if !srv.hasher.Check(input.CurrentPassword, user.Credentials.PasswordHash) {
		srv.log(ctx).Warn("Password change with wrong current password", slog.Any("userID", input.UserID))

		return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password mismatch")
	}

	newHash, err := srv.prepareNewPasswordHash(ctx, user, input.NewPassword)
	if err != nil {
		return err
	}

	if err := srv.rotatePasswordAndDropSessions(ctx, user.ID, newHash); err != nil {
		srv.log(ctx).Error("Failed to change password", slog.Any("error", err), slog.Any("userID", user.ID))

		return errors.Wrap(err, "failed to execute password change transaction")
	}

	srv.publishEvent(ctx, &service.AuthEvent{
		EventType: service.AuthEventPasswordChanged,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})
	srv.log(ctx).Info("Password changed", slog.Any("userID", user.ID))

	return nil
}

// prepareNewPasswordHash rejects reuse of the current or previous password and
// hashes the replacement. bcrypt runs outside any transaction.
func (srv *accountService) prepareNewPasswordHash(ctx context.Context, user *entity.User, newPassword string) (string, error) {
	if srv.hasher.Check(newPassword, user.Credentials.PasswordHash) {
		srv.log(ctx).Warn("New password matches current password", slog.Any("userID", user.ID))

		return "", errors.Wrap(domainerrors.ErrPasswordReused, "new password matches current password")
	}
	if user.Credentials.LastPasswordHash != "" && srv.hasher.Check(newPassword, user.Credentials.LastPasswordHash) {
		srv.log(ctx).Warn("New password matches previous password", slog.Any("userID", user.ID))

		return "", errors.Wrap(domainerrors.ErrPasswordReused, "new password matches previous password")
	}

	newHash, err := srv.hasher.Hash(newPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash new password", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash new password")
	}

	return newHash, nil
}

// rotatePasswordAndDropSessions swaps the hash, bumps the version and deletes
// every session in one transaction, so no refresh token survives the rotation.
func (srv *accountService) rotatePasswordAndDropSessions(ctx context.Context, userID uuid.UUID, newHash string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().RotatePassword(ctx, userID, newHash); err != nil {
			return errors.Wrap(err, "failed to rotate password")
		}

		if err := repoFactory.SessionRepo().DeleteSessionsByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete sessions after password rotation")
		}

		return nil
	})
}

// denyAccessToken puts the access token hash on the denylist for the full
// access TTL. Over-denying a nearly expired token is harmless.
func (srv *accountService) denyAccessToken(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}

	tokenHash := srv.tokenService.HashToken(accessToken)
	ttl := srv.tokenService.TokenTTL(entity.TokenTypeAccess)
	if err := srv.denylist.Deny(ctx, tokenHash, ttl); err != nil {
		srv.log(ctx).Warn("Failed to denylist access token", slog.Any("error", err))
	}
}

// publishTokenEvent issues a single-use email token and publishes it for the
// mail service. Publish failures are logged, never surfaced to the caller.
func (srv *accountService) publishTokenEvent(ctx context.Context, eventType string, user *entity.User, tokenType entity.TokenType) {
	token, err := srv.tokenService.IssueEmailToken(user, tokenType)
	if err != nil {
		srv.log(ctx).Error("Failed to issue email token", slog.Any("error", err), slog.Any("userID", user.ID))

		return
	}

	srv.publishEvent(ctx, &service.AuthEvent{
		EventType: eventType,
		UserID:    user.ID.String(),
		Email:     user.Email,
		Token:     token,
	})
}

func (srv *accountService) publishEvent(ctx context.Context, event *service.AuthEvent) {
	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	event.OccurredAt = time.Now().UTC()

	if err := srv.publisher.PublishAuthEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish auth event",
			slog.String("event_type", event.EventType),
			slog.Any("error", err),
		)
	}
}
