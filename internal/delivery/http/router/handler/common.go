package handler

import (
	"net/http"
	"strings"

	"carpool/internal/delivery/http/middleware"
	"carpool/internal/delivery/http/response"
	domainerrors "carpool/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// bindAndValidate binds the request body and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindingError(c, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func bindingError(c echo.Context, message string) error {
	return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), message)
}

func success(c echo.Context, statusCode int, data any, message string) error {
	return response.Success(c, statusCode, data, message)
}

// currentUserID reads the user ID placed on the context by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.Wrap(domainerrors.ErrTokenMalformed, "user identity missing from context")
	}

	return userID, nil
}

// extractBearerToken returns the raw bearer token, or empty when absent.
func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}

	return tokenString
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
