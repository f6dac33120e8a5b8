package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/middleware"
	"github.com/iliyamo/football-field-booking/internal/model"
)

// RegisterPublic registers browse and booking endpoints open to guests.
// A bearer token is optional; when present it identifies the caller.
func RegisterPublic(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.OptionalJWT(jwtSecret))

	g.GET("/fields", h.Fields.ListFields, cache)
	g.GET("/fields/:id", h.Fields.GetField, cache)
	g.GET("/fields/:id/timeslots", h.Fields.ListTimeSlots, cache)

	g.GET("/timeslots", h.Bookings.Board)
	g.GET("/bookings/check", h.Bookings.Check)
	g.GET("/bookings/field/:id", h.Bookings.ListForFieldDate)
	g.POST("/bookings", h.Bookings.Create)

	g.GET("/opponents", h.Opponents.ListOpen)
	g.POST("/feedback", h.Feedback.Create)
}

// RegisterCustomer registers endpoints for any signed-in user.  Ownership
// is enforced by the services.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)

	g.GET("/my-bookings", h.Bookings.MyBookings)
	g.PATCH("/bookings/:id/cancel", h.Bookings.Cancel)

	g.POST("/opponents", h.Opponents.Create)
	g.POST("/opponents/:id/match", h.Opponents.Match)
	g.DELETE("/opponents/:id", h.Opponents.Cancel)
}
