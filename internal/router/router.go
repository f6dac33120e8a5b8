// Package router registers every HTTP route on the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/football-field-booking/internal/handler"
	"github.com/iliyamo/football-field-booking/internal/middleware"
)

// Handlers bundles the HTTP handlers wired by main.
type Handlers struct {
	Auth      *handler.AuthHandler
	Fields    *handler.FieldHandler
	Bookings  *handler.BookingHandler
	Locks     *handler.FieldManagementHandler
	Opponents *handler.OpponentHandler
	Feedback  *handler.FeedbackHandler
	Dashboard *handler.DashboardHandler
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers token endpoints under /v1/auth and the
// authenticated profile at /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer token.
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// Register wires every route group.  cache wraps the public catalogue
// reads.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	RegisterAuth(e, h.Auth, jwtSecret)
	RegisterPublic(e, h, jwtSecret, cache)
	RegisterCustomer(e, h, jwtSecret)
	RegisterAdmin(e, h, jwtSecret)
}
