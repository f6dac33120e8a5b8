package middleware

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/metrics"
)

// RequestLogger assigns an X-Request-ID, attaches a request scoped zerolog
// logger to the context and records one access log line plus HTTP metrics
// per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqID := req.Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)

			l := log.With().Str("request_id", reqID).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo's error handler write the response so the
				// logged status is the one the client sees.
				c.Error(err)
			}
			took := time.Since(start)
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTP(req.Method, route, strconv.Itoa(status), took.Seconds())

			var ev *zerolog.Event
			switch {
			case status >= 500:
				ev = l.Error().Err(err)
			case status >= 400:
				ev = l.Warn()
			default:
				ev = l.Info()
			}
			ev.Str("method", req.Method).
				Str("route", route).
				Str("uri", req.RequestURI).
				Int("status", status).
				Int64("bytes_out", c.Response().Size).
				Str("ip", c.RealIP()).
				Str("user", userID(c)).
				Dur("latency", took).
				Msg("http request")
			return nil
		}
	}
}
