package middleware

import (
	"slices"
	"strings"

	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
	ContextKeyRoles  = "roles"
)

const accessTokenCookie = "access_token"

// AuthMiddleware provides middleware for access token authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	denylist service.TokenDenylist
}

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenSvc service.TokenService
	Denylist service.TokenDenylist
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: params.TokenSvc, denylist: params.Denylist}
}

// Authenticate validates the access token from the Authorization header or the
// access cookie, rejects denylisted tokens and stores the verified identity on
// the request context. Failures surface as domain errors so the central error
// handler renders them.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := extractAccessToken(c)
		if err != nil {
			return err
		}

		claims, err := m.tokenSvc.VerifyAccessToken(tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		denied, err := m.denylist.IsDenied(c.Request().Context(), m.tokenSvc.HashToken(tokenString))
		if err != nil {
			// Denylist lookup failure must not turn into an open door.
			return domainerrors.ErrInternalError.WrapMessage("denylist lookup failed")
		}
		if denied {
			return errors.Wrap(domainerrors.ErrTokenRevoked, "access token denylisted")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRoles, claims.Roles)

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the user has a specific role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextKeyRoles).([]string)
			if !ok {
				return errors.Wrap(domainerrors.ErrForbidden, "role information missing")
			}

			if !slices.Contains(roles, requiredRole) {
				return errors.Wrapf(domainerrors.ErrForbidden, "require %q role", requiredRole)
			}

			return next(c)
		}
	}
}

// extractAccessToken prefers the Authorization bearer header and falls back to
// the access cookie used by browser clients.
func extractAccessToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return "", errors.Wrap(domainerrors.ErrTokenMalformed, "authorization header is not a bearer token")
		}

		return tokenString, nil
	}

	cookie, err := c.Cookie(accessTokenCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errors.Wrap(domainerrors.ErrTokenMalformed, "no access token presented")
}
