package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/middleware"
	"github.com/iliyamo/football-field-booking/internal/model"
)

// RegisterAdmin registers admin-only endpoints under /v1.  All routes
// require a valid JWT with role=admin.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Fields & time slots ----
	g.POST("/fields", h.Fields.CreateField)
	g.PUT("/fields/:id", h.Fields.UpdateField)
	g.PATCH("/fields/:id", h.Fields.UpdateField)
	g.DELETE("/fields/:id", h.Fields.DeleteField)
	g.POST("/fields/:id/timeslots", h.Fields.CreateTimeSlot)
	g.PUT("/timeslots/:id", h.Fields.UpdateTimeSlot)
	g.PATCH("/timeslots/:id", h.Fields.UpdateTimeSlot)
	g.DELETE("/timeslots/:id", h.Fields.DeleteTimeSlot)

	// ---- Bookings ----
	g.GET("/bookings", h.Bookings.List)
	g.GET("/bookings/:id", h.Bookings.Get)
	g.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.PATCH("/bookings/:id/payment", h.Bookings.UpdatePayment)

	// ---- Field management (per-date locks) ----
	g.GET("/field-management/:fieldId", h.Locks.Overview)
	g.POST("/field-management/:fieldId/lock", h.Locks.Lock)
	g.POST("/field-management/:fieldId/unlock", h.Locks.Unlock)
	g.POST("/field-management/:fieldId/lock-all", h.Locks.LockAll)
	g.POST("/field-management/:fieldId/unlock-all", h.Locks.UnlockAll)

	// ---- Dashboard ----
	g.GET("/dashboard/stats", h.Dashboard.Stats)
	g.GET("/dashboard/chart", h.Dashboard.Chart)
	g.GET("/dashboard/export", h.Dashboard.Export)

	// ---- Feedback ----
	g.GET("/feedback", h.Feedback.List)
	g.GET("/feedback/:id", h.Feedback.Get)
	g.PATCH("/feedback/:id", h.Feedback.UpdateStatus)
	g.DELETE("/feedback/:id", h.Feedback.Delete)
}
