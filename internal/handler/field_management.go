package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// FieldManagementHandler exposes the admin per-date slot locks.
type FieldManagementHandler struct {
	Locks LockAPI
	Avail AvailabilityAPI
}

func NewFieldManagementHandler(locks LockAPI, avail AvailabilityAPI) *FieldManagementHandler {
	return &FieldManagementHandler{Locks: locks, Avail: avail}
}

type lockReq struct {
	Date       string `json:"date"`
	TimeSlotID uint64 `json:"timeSlotId"`
	Reason     string `json:"reason"`
}

// bindLock parses the field from the path and the body.  needSlot
// requires a time slot id.
func bindLock(c echo.Context, needSlot bool) (fieldID uint64, date time.Time, req lockReq, errMsg string) {
	fieldID, ok := paramID(c, "fieldId")
	if !ok {
		return 0, time.Time{}, req, "invalid field id"
	}
	if err := c.Bind(&req); err != nil {
		return 0, time.Time{}, req, "invalid body"
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return 0, time.Time{}, req, "date required (YYYY-MM-DD)"
	}
	if needSlot && req.TimeSlotID == 0 {
		return 0, time.Time{}, req, "timeSlotId required"
	}
	req.Reason = strings.TrimSpace(req.Reason)
	return fieldID, date, req, ""
}

// Overview returns the slot board and the lock records of a field on a
// date.  GET /field-management/:fieldId?date=
func (h *FieldManagementHandler) Overview(c echo.Context) error {
	fieldID, ok := paramID(c, "fieldId")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	date, err := queryDate(c, "date")
	if err != nil || date == nil {
		return badRequest(c, "date required (YYYY-MM-DD)")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	board, err := h.Avail.Board(ctx, fieldID, *date)
	if err != nil {
		return writeError(c, err)
	}
	locks, err := h.Locks.List(ctx, fieldID, *date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fieldId": fieldID,
		"date":    date.Format(model.DateLayout),
		"slots":   board,
		"locks":   locks,
	})
}

func (h *FieldManagementHandler) Lock(c echo.Context) error {
	fieldID, date, req, msg := bindLock(c, true)
	if msg != "" {
		return badRequest(c, msg)
	}
	adminID, _ := getUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.Locks.Lock(ctx, fieldID, req.TimeSlotID, date, req.Reason, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *FieldManagementHandler) Unlock(c echo.Context) error {
	fieldID, date, req, msg := bindLock(c, true)
	if msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Locks.Unlock(ctx, fieldID, req.TimeSlotID, date); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fieldId":    fieldID,
		"timeSlotId": req.TimeSlotID,
		"date":       date.Format(model.DateLayout),
		"isLocked":   false,
	})
}

func (h *FieldManagementHandler) LockAll(c echo.Context) error {
	fieldID, date, req, msg := bindLock(c, false)
	if msg != "" {
		return badRequest(c, msg)
	}
	adminID, _ := getUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Locks.LockAll(ctx, fieldID, date, req.Reason, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *FieldManagementHandler) UnlockAll(c echo.Context) error {
	fieldID, date, _, msg := bindLock(c, false)
	if msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Locks.UnlockAll(ctx, fieldID, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
