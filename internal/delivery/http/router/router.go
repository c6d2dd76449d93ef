// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"carpool/internal/delivery/http/middleware"
	"carpool/internal/delivery/http/router/handler"
	"carpool/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	SessionHandler      *handler.SessionHandler
	ProfileHandler      *handler.ProfileHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	sessionHandler      *handler.SessionHandler
	profileHandler      *handler.ProfileHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		sessionHandler:      params.SessionHandler,
		profileHandler:      params.ProfileHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register/passenger", r.authHandler.RegisterPassenger)
		authGroup.POST("/register/driver", r.authHandler.RegisterDriver)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.GET("/confirm-email", r.authHandler.ConfirmEmail)
		authGroup.POST("/password/forgot", r.authHandler.ForgotPassword)
		authGroup.POST("/password/reset", r.authHandler.ResetPassword)
	}

	// Account routes that require authentication
	accountGroup := e.Group("/account")
	accountGroup.Use(r.authMiddleware.Authenticate)
	{
		accountGroup.GET("/profile", r.profileHandler.GetProfile)
		accountGroup.POST("/password/change", r.authHandler.ChangePassword)
		accountGroup.POST("/logout-all", r.authHandler.LogoutAllDevices)
		accountGroup.GET("/sessions", r.sessionHandler.ListSessions)
		accountGroup.DELETE("/sessions/others", r.sessionHandler.RevokeOtherSessions)
		accountGroup.DELETE("/sessions/:id", r.sessionHandler.RevokeSession)
	}

	// Driver routes that require authentication and the "driver" role
	driverGroup := e.Group("/driver")
	driverGroup.Use(r.authMiddleware.Authenticate)
	driverGroup.Use(r.authMiddleware.RequireRole(entity.RoleDriver.String()))
	{
		driverGroup.GET("/profile", r.profileHandler.GetProfile)
	}
}
