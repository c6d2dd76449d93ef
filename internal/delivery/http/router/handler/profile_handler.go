package handler

import (
	"net/http"

	"carpool/internal/delivery/http/middleware"

	"github.com/labstack/echo/v4"
)

// ProfileHandler exposes the identity carried by the verified access token.
type ProfileHandler struct{}

// NewProfileHandler is the constructor for ProfileHandler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// GetProfile returns the authenticated identity extracted from the token.
// Access tokens are stateless, so this endpoint needs no database read.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	email, _ := c.Get(middleware.ContextKeyEmail).(string)
	roles, _ := c.Get(middleware.ContextKeyRoles).([]string)

	return success(c, http.StatusOK, map[string]any{
		"userId": userID.String(),
		"email":  email,
		"roles":  roles,
	}, "Profile retrieved successfully")
}
