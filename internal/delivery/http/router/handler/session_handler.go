package handler

import (
	"log/slog"
	"net/http"
	"time"

	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/service"
	"carpool/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// SessionHandler holds dependencies for session management handlers.
type SessionHandler struct {
	uc       usecase.SessionUsecase
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	Usecase  usecase.SessionUsecase
	TokenSvc service.TokenService
	Logger   *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler.
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		uc:       params.Usecase,
		tokenSvc: params.TokenSvc,
		logger:   params.Logger,
	}
}

// sessionView is the API projection of a session. The token hash stays internal.
type sessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Current   bool      `json:"current"`
}

// ListSessions returns every active session of the authenticated user.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessions, err := h.uc.GetActiveSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	currentID := h.currentSessionID(c)
	views := make([]*sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, &sessionView{
			ID:        session.ID.String(),
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			Current:   session.ID == currentID,
		})
	}

	return success(c, http.StatusOK, views, "Active sessions retrieved")
}

// RevokeSession ends a single session identified by its ID.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, "invalid session id")
	}

	if err := h.uc.RevokeSession(c.Request().Context(), userID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, nil, "Session revoked")
}

// RevokeOtherSessions ends every session except the one making the request.
func (h *SessionHandler) RevokeOtherSessions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	currentID := h.currentSessionID(c)
	if currentID == uuid.Nil {
		return errors.Wrap(domainerrors.ErrTokenMalformed, "current session could not be determined")
	}

	if err := h.uc.RevokeAllOtherSessions(c.Request().Context(), userID, currentID); err != nil {
		return errors.WithStack(err)
	}

	return success(c, http.StatusOK, nil, "Other sessions revoked")
}

// currentSessionID recovers the session ID from the refresh cookie, when present.
func (h *SessionHandler) currentSessionID(c echo.Context) uuid.UUID {
	cookie, err := c.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return uuid.Nil
	}

	claims, err := h.tokenSvc.VerifyRefreshToken(cookie.Value)
	if err != nil {
		return uuid.Nil
	}

	return claims.TokenID
}
