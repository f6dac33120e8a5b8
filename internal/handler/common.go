package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/middleware"
	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID returns the authenticated user set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// actorOf describes the caller.  Anonymous callers have a zero UserID.
func actorOf(c echo.Context) service.Actor {
	uid, _ := getUserID(c)
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Actor{UserID: uid, Role: role}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional positive integer query parameter.  Missing
// yields 0.
func queryID(c echo.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id > 0
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// paging reads page (1-based) and size, clamping size to [1,100].
func paging(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

type pageResp[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrFieldNotFound, http.StatusNotFound},
	{service.ErrTimeSlotNotFound, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrOpponentNotFound, http.StatusNotFound},
	{service.ErrFeedbackNotFound, http.StatusNotFound},

	{service.ErrSlotBooked, http.StatusConflict},
	{service.ErrSlotLocked, http.StatusConflict},
	{service.ErrSlotUnavailable, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrFieldHasBookings, http.StatusConflict},
	{service.ErrSlotHasBookings, http.StatusConflict},
	{service.ErrDuplicateSlot, http.StatusConflict},
	{service.ErrOpponentExists, http.StatusConflict},
	{service.ErrOpponentClosed, http.StatusConflict},
	{service.ErrOwnOpponent, http.StatusConflict},
	{service.ErrBookingNotPostable, http.StatusConflict},

	{service.ErrForbidden, http.StatusForbidden},
}

// writeError maps service errors onto status codes.  Unknown errors are
// logged and reported as a generic 500.
func writeError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return badRequest(c, ve.Msg)
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, echo.Map{"error": strings.TrimPrefix(m.err.Error(), "service: ")})
		}
	}
	log.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
