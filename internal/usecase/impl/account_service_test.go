package impl

import (
	"context"
	"testing"

	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/service"
	"carpool/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	svc         usecase.AccountUsecase
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	tokens      *fakeTokenService
	denylist    *fakeDenylist
	publisher   *fakePublisher
}

func newAccountFixture(maxActiveSessions int) *accountFixture {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	tokens := newFakeTokenService()
	denylist := newFakeDenylist()
	publisher := newFakePublisher()

	svc := NewAccountService(AccountServiceParams{
		TxManager:    &fakeTxManager{factory: &fakeRepositoryFactory{userRepo: userRepo, sessionRepo: sessionRepo}},
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		Hasher:       fakeHasher{},
		TokenService: tokens,
		Denylist:     denylist,
		Publisher:    publisher,
		Config:       newTestConfig(maxActiveSessions),
		Logger:       newDiscardLogger(),
	})

	return &accountFixture{
		svc:         svc,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		denylist:    denylist,
		publisher:   publisher,
	}
}

// registerConfirmedPassenger walks the real registration flow: register, pull
// the confirmation token off the published event, confirm.
func registerConfirmedPassenger(t *testing.T, fx *accountFixture, email, password string) *entity.User {
	t.Helper()
	ctx := context.Background()

	out, err := fx.svc.RegisterPassenger(ctx, &usecase.RegisterPassengerInput{
		Name:     "Test Passenger",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	event := fx.publisher.lastEventOfType(service.AuthEventUserRegistered)
	require.NotNil(t, event)
	require.NotEmpty(t, event.Token)
	require.NoError(t, fx.svc.ConfirmEmail(ctx, event.Token))

	return out.User
}

func login(t *testing.T, fx *accountFixture, email, password string) *usecase.LoginOutput {
	t.Helper()

	out, err := fx.svc.Login(context.Background(), &usecase.LoginInput{Email: email, Password: password})
	require.NoError(t, err)

	return out
}

func TestAccountService_RegisterPassenger(t *testing.T) {
	fx := newAccountFixture(0)
	ctx := context.Background()

	out, err := fx.svc.RegisterPassenger(ctx, &usecase.RegisterPassengerInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.NotNil(t, out.User)

	assert.NotEqual(t, uuid.Nil, out.User.ID)
	assert.NotNil(t, out.User.PassengerProfile)
	require.NotNil(t, out.User.Credentials)
	assert.Equal(t, 0, out.User.Credentials.Version)
	assert.Nil(t, out.User.EmailConfirmedAt)

	event := fx.publisher.lastEventOfType(service.AuthEventUserRegistered)
	require.NotNil(t, event)
	assert.Equal(t, out.User.ID.String(), event.UserID)
	assert.Equal(t, "alice@example.com", event.Email)
	assert.NotEmpty(t, event.Token)
}

func TestAccountService_RegisterPassenger_DuplicateEmail(t *testing.T) {
	fx := newAccountFixture(0)
	ctx := context.Background()

	input := &usecase.RegisterPassengerInput{Name: "Alice", Email: "alice@example.com", Password: "secret-password"}
	_, err := fx.svc.RegisterPassenger(ctx, input)
	require.NoError(t, err)

	_, err = fx.svc.RegisterPassenger(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_RegisterDriver_NewAccount(t *testing.T) {
	fx := newAccountFixture(0)

	out, err := fx.svc.RegisterDriver(context.Background(), &usecase.RegisterDriverInput{
		Name:           "Bob",
		Email:          "bob@example.com",
		Password:       "secret-password",
		LicencePlate:   "ABC-1234",
		VehicleModel:   "Toyota Prius",
		SeatCount:      4,
		DrivingLicence: "D123456789",
	})
	require.NoError(t, err)

	require.NotNil(t, out.User.DriverProfile)
	assert.Equal(t, "ABC-1234", out.User.DriverProfile.LicencePlate)
	assert.Equal(t, 0, out.User.Credentials.Version)
	assert.NotNil(t, fx.publisher.lastEventOfType(service.AuthEventUserRegistered))
}

func TestAccountService_RegisterDriver_AttachToExistingAccount(t *testing.T) {
	fx := newAccountFixture(0)
	ctx := context.Background()
	registerConfirmedPassenger(t, fx, "carol@example.com", "secret-password")

	driverInput := &usecase.RegisterDriverInput{
		Email:        "carol@example.com",
		Password:     "secret-password",
		LicencePlate: "XYZ-9876",
		VehicleModel: "Honda Fit",
		SeatCount:    3,
	}

	out, err := fx.svc.RegisterDriver(ctx, driverInput)
	require.NoError(t, err)
	assert.NotNil(t, out.User.PassengerProfile)
	require.NotNil(t, out.User.DriverProfile)
	assert.Equal(t, "XYZ-9876", out.User.DriverProfile.LicencePlate)

	// Attaching again is a conflict.
	_, err = fx.svc.RegisterDriver(ctx, driverInput)
	assert.ErrorIs(t, err, domainerrors.ErrDriverAlreadyExists)
}

func TestAccountService_RegisterDriver_WrongPasswordOnExistingAccount(t *testing.T) {
	fx := newAccountFixture(0)
	registerConfirmedPassenger(t, fx, "carol@example.com", "secret-password")

	_, err := fx.svc.RegisterDriver(context.Background(), &usecase.RegisterDriverInput{
		Email:        "carol@example.com",
		Password:     "wrong-password",
		LicencePlate: "XYZ-9876",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Login(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")

	out := login(t, fx, "alice@example.com", "secret-password")
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, user.ID, out.User.ID)

	// The session row is keyed by the refresh token's tokenID and stores its hash.
	claims, err := fx.tokens.VerifyRefreshToken(out.RefreshToken)
	require.NoError(t, err)

	session, err := fx.sessionRepo.FindSessionByID(context.Background(), claims.TokenID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, fx.tokens.HashToken(out.RefreshToken), session.TokenHash)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := newAccountFixture(0)
	registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")

	_, err := fx.svc.Login(context.Background(), &usecase.LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	fx := newAccountFixture(0)

	// Unknown accounts get the same error as a wrong password.
	_, err := fx.svc.Login(context.Background(), &usecase.LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Login_UnconfirmedEmail(t *testing.T) {
	fx := newAccountFixture(0)
	ctx := context.Background()

	_, err := fx.svc.RegisterPassenger(ctx, &usecase.RegisterPassengerInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = fx.svc.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "secret-password"})
	assert.ErrorIs(t, err, domainerrors.ErrEmailNotConfirmed)
}

func TestAccountService_Login_SessionLimitExceeded(t *testing.T) {
	fx := newAccountFixture(1)
	registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")

	login(t, fx, "alice@example.com", "secret-password")

	_, err := fx.svc.Login(context.Background(), &usecase.LoginInput{Email: "alice@example.com", Password: "secret-password"})
	assert.ErrorIs(t, err, domainerrors.ErrSessionLimitExceeded)
}

func TestAccountService_Refresh(t *testing.T) {
	fx := newAccountFixture(0)
	registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	out := login(t, fx, "alice@example.com", "secret-password")

	refreshed, err := fx.svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, out.AccessToken, refreshed.AccessToken)
}

func TestAccountService_Refresh_UnknownTokenIsMalformed(t *testing.T) {
	fx := newAccountFixture(0)

	_, err := fx.svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "never-issued"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestAccountService_Refresh_DeletedSessionIsRevoked(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	out := login(t, fx, "alice@example.com", "secret-password")

	require.NoError(t, fx.sessionRepo.DeleteSessionsByUserID(context.Background(), user.ID))

	_, err := fx.svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_Refresh_VersionMismatchIsRevoked(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	out := login(t, fx, "alice@example.com", "secret-password")

	// Move the credential version forward without touching the session, as a
	// concurrent password rotation on another node would.
	fx.userRepo.users[user.ID].Credentials.Version++

	_, err := fx.svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_Refresh_TokenHashMismatchIsRevoked(t *testing.T) {
	fx := newAccountFixture(0)
	registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	out := login(t, fx, "alice@example.com", "secret-password")

	claims, err := fx.tokens.VerifyRefreshToken(out.RefreshToken)
	require.NoError(t, err)
	fx.sessionRepo.sessions[claims.TokenID].TokenHash = "tampered"

	_, err = fx.svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_Logout(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	out := login(t, fx, "alice@example.com", "secret-password")
	ctx := context.Background()

	err := fx.svc.Logout(ctx, &usecase.LogoutInput{RefreshToken: out.RefreshToken, AccessToken: out.AccessToken})
	require.NoError(t, err)

	sessions, err := fx.sessionRepo.FindSessionsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	denied, err := fx.denylist.IsDenied(ctx, fx.tokens.HashToken(out.AccessToken))
	require.NoError(t, err)
	assert.True(t, denied)

	// The refresh token no longer maps to a session.
	_, err = fx.svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_Logout_UnknownTokenIsTolerated(t *testing.T) {
	fx := newAccountFixture(0)

	err := fx.svc.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: "never-issued"})
	assert.NoError(t, err)
}

func TestAccountService_LogoutAllDevices(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")
	login(t, fx, "alice@example.com", "secret-password")
	login(t, fx, "alice@example.com", "secret-password")
	ctx := context.Background()

	require.NoError(t, fx.svc.LogoutAllDevices(ctx, user.ID))

	sessions, err := fx.sessionRepo.FindSessionsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NotNil(t, fx.publisher.lastEventOfType(service.AuthEventSessionRevoked))
}

func TestAccountService_ConfirmEmail(t *testing.T) {
	fx := newAccountFixture(0)
	ctx := context.Background()

	out, err := fx.svc.RegisterPassenger(ctx, &usecase.RegisterPassengerInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	token := fx.publisher.lastEventOfType(service.AuthEventUserRegistered).Token
	require.NoError(t, fx.svc.ConfirmEmail(ctx, token))

	stored := fx.userRepo.users[out.User.ID]
	assert.NotNil(t, stored.EmailConfirmedAt)
	assert.Equal(t, 1, stored.Credentials.Version)
	assert.NotNil(t, fx.publisher.lastEventOfType(service.AuthEventEmailConfirmed))

	// The version bump consumed the token; a replay carries a stale version.
	err = fx.svc.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_ConfirmEmail_InvalidToken(t *testing.T) {
	fx := newAccountFixture(0)

	err := fx.svc.ConfirmEmail(context.Background(), "never-issued")
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "secret-password")

	require.NoError(t, fx.svc.RequestPasswordReset(context.Background(), "alice@example.com"))

	event := fx.publisher.lastEventOfType(service.AuthEventPasswordReset)
	require.NotNil(t, event)
	assert.Equal(t, user.ID.String(), event.UserID)
	assert.NotEmpty(t, event.Token)
}

func TestAccountService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	fx := newAccountFixture(0)

	require.NoError(t, fx.svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Nil(t, fx.publisher.lastEventOfType(service.AuthEventPasswordReset))
}

func TestAccountService_ResetPassword(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "old-password")
	login(t, fx, "alice@example.com", "old-password")
	ctx := context.Background()

	require.NoError(t, fx.svc.RequestPasswordReset(ctx, "alice@example.com"))
	token := fx.publisher.lastEventOfType(service.AuthEventPasswordReset).Token

	require.NoError(t, fx.svc.ResetPassword(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new-password"}))

	// All sessions are dropped with the rotation.
	sessions, err := fx.sessionRepo.FindSessionsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NotNil(t, fx.publisher.lastEventOfType(service.AuthEventPasswordChanged))

	_, err = fx.svc.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "old-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	login(t, fx, "alice@example.com", "new-password")

	// The consumed token carries the pre-rotation version.
	err = fx.svc.ResetPassword(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "another-password"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenRevoked)
}

func TestAccountService_ResetPassword_RejectsReusedPassword(t *testing.T) {
	fx := newAccountFixture(0)
	registerConfirmedPassenger(t, fx, "alice@example.com", "old-password")
	ctx := context.Background()

	require.NoError(t, fx.svc.RequestPasswordReset(ctx, "alice@example.com"))
	token := fx.publisher.lastEventOfType(service.AuthEventPasswordReset).Token

	err := fx.svc.ResetPassword(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "old-password"})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordReused)
}

func TestAccountService_ChangePassword(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "old-password")
	login(t, fx, "alice@example.com", "old-password")
	ctx := context.Background()

	versionBefore := fx.userRepo.users[user.ID].Credentials.Version

	require.NoError(t, fx.svc.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	}))

	stored := fx.userRepo.users[user.ID]
	assert.Equal(t, versionBefore+1, stored.Credentials.Version)

	sessions, err := fx.sessionRepo.FindSessionsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	login(t, fx, "alice@example.com", "new-password")
}

func TestAccountService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "old-password")

	err := fx.svc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "wrong-password",
		NewPassword:     "new-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_ChangePassword_RejectsPreviousPassword(t *testing.T) {
	fx := newAccountFixture(0)
	user := registerConfirmedPassenger(t, fx, "alice@example.com", "first-password")
	ctx := context.Background()

	require.NoError(t, fx.svc.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "first-password",
		NewPassword:     "second-password",
	}))

	// Rotating back to the previous password is rejected.
	err := fx.svc.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "second-password",
		NewPassword:     "first-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordReused)

	err = fx.svc.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "second-password",
		NewPassword:     "second-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordReused)
}
