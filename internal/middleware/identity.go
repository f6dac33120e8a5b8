package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/utils"
)

// OptionalJWT identifies the caller when a Bearer token is present and
// lets anonymous requests through.  A token that is present but invalid
// is still rejected so clients notice expired sessions.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return next(c)
			}
			uid, role, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, uid)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

// userID returns the authenticated user as a string, or "guest".
func userID(c echo.Context) string {
	if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
