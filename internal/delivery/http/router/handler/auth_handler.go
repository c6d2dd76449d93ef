// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"carpool/config"
	"carpool/internal/domain/entity"
	"carpool/internal/domain/service"
	"carpool/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler holds dependencies for registration, login and credential handlers.
type AuthHandler struct {
	uc       usecase.AccountUsecase
	tokenSvc service.TokenService
	cfg      *config.Config
	logger   *slog.Logger
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Usecase  usecase.AccountUsecase
	TokenSvc service.TokenService
	Config   *config.Config
	Logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		uc:       params.Usecase,
		tokenSvc: params.TokenSvc,
		cfg:      params.Config,
		logger:   params.Logger,
	}
}

// --- Request bodies ---

type registerPassengerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type registerDriverRequest struct {
	Name           string `json:"name" validate:"max=100"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	LicencePlate   string `json:"licencePlate" validate:"required,max=20"`
	VehicleModel   string `json:"vehicleModel" validate:"max=100"`
	SeatCount      int    `json:"seatCount" validate:"required,min=1,max=8"`
	DrivingLicence string `json:"drivingLicence" validate:"required,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// userView is the safe projection of a user returned by the API.
// Credentials never leave the service.
type userView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Roles          []string   `json:"roles"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	CreatedAt      time.Time  `json:"createdAt"`
	ConfirmedAt    *time.Time `json:"confirmedAt,omitempty"`
}

func toUserView(user *entity.User) *userView {
	return &userView{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Roles:          user.Roles().ToStrings(),
		EmailConfirmed: user.EmailConfirmed(),
		CreatedAt:      user.CreatedAt,
		ConfirmedAt:    user.EmailConfirmedAt,
	}
}

// RegisterPassenger handles the passenger registration request.
func (h *AuthHandler) RegisterPassenger(c echo.Context) error {
	var req registerPassengerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.RegisterPassenger(c.Request().Context(), &usecase.RegisterPassengerInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusCreated, toUserView(output.User), "Passenger registered successfully")
}

// RegisterDriver handles the driver registration request.
func (h *AuthHandler) RegisterDriver(c echo.Context) error {
	var req registerDriverRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.RegisterDriver(c.Request().Context(), &usecase.RegisterDriverInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		LicencePlate:   req.LicencePlate,
		VehicleModel:   req.VehicleModel,
		SeatCount:      req.SeatCount,
		DrivingLicence: req.DrivingLicence,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusCreated, toUserView(output.User), "Driver registered successfully")
}

// Login handles the user login request. The refresh token is returned in the
// body for native clients and duplicated in an HTTP-only cookie for browsers.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setRefreshCookie(c, output.RefreshToken)

	return success(c, http.StatusOK, map[string]any{
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
		"user":         toUserView(output.User),
	}, "Login successful")
}

// Refresh handles the access token refresh request.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := h.extractRefreshToken(c)

	output, err := h.uc.Refresh(c.Request().Context(), &usecase.RefreshInput{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, map[string]string{"accessToken": output.AccessToken}, "Token refreshed successfully")
}

// Logout ends the current session and clears the refresh cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := h.extractRefreshToken(c)
	accessToken := extractBearerToken(c)

	if err := h.uc.Logout(c.Request().Context(), &usecase.LogoutInput{
		RefreshToken: refreshToken,
		AccessToken:  accessToken,
	}); err != nil {
		return errors.WithStack(err)
	}

	h.clearRefreshCookie(c)

	return success(c, http.StatusOK, nil, "Logout successful")
}

// LogoutAllDevices ends every session of the authenticated user.
func (h *AuthHandler) LogoutAllDevices(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.uc.LogoutAllDevices(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	h.clearRefreshCookie(c)

	return success(c, http.StatusOK, nil, "Logged out from all devices")
}

// ConfirmEmail consumes the confirmation token from the emailed link.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return bindingError(c, "confirmation token is required")
	}

	if err := h.uc.ConfirmEmail(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, nil, "Email confirmed successfully")
}

// ForgotPassword issues a reset token for the given email. The response never
// reveals whether the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, nil, "If the email is registered, a reset link has been sent")
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}); err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, nil, "Password reset successfully")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ChangePassword rotates the password for the authenticated user. All sessions
// are revoked, the client must log in again afterwards.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return errors.WithStack(err)
	}

	h.clearRefreshCookie(c)

	return success(c, http.StatusOK, nil, "Password changed successfully")
}

// extractRefreshToken reads the refresh token from the cookie set at login,
// falling back to the request body for native clients.
func (h *AuthHandler) extractRefreshToken(c echo.Context) string {
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}

	return ""
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.TokenTTL(entity.TokenTypeRefresh) / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}
