package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

// BookingHandler serves availability lookups and the booking lifecycle.
type BookingHandler struct {
	Bookings BookingAPI
	Avail    AvailabilityAPI
}

func NewBookingHandler(bookings BookingAPI, avail AvailabilityAPI) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Avail: avail}
}

type createBookingReq struct {
	FieldID       uint64 `json:"fieldId"`
	TimeSlotID    uint64 `json:"timeSlotId"`
	BookingDate   string `json:"bookingDate"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
	Notes         string `json:"notes"`
	TotalPrice    *int64 `json:"totalPrice"`
}

type statusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type cancelReq struct {
	Reason string `json:"reason"`
}

type paymentReq struct {
	PaymentStatus string `json:"paymentStatus"`
}

// Board lists every active slot of a field on a date with its
// availability and price.  GET /timeslots?fieldId=&date=
func (h *BookingHandler) Board(c echo.Context) error {
	fieldID, ok := queryID(c, "fieldId")
	if !ok || fieldID == 0 {
		return badRequest(c, "fieldId required")
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
	return c.JSON(http.StatusOK, echo.Map{
		"fieldId": fieldID,
		"date":    date.Format(model.DateLayout),
		"slots":   board,
	})
}

// Check reports whether one slot can be booked on a date.
func (h *BookingHandler) Check(c echo.Context) error {
	fieldID, ok1 := queryID(c, "fieldId")
	slotID, ok2 := queryID(c, "timeSlotId")
	if !ok1 || !ok2 || fieldID == 0 || slotID == 0 {
		return badRequest(c, "fieldId and timeSlotId required")
	}
	date, err := queryDate(c, "date")
	if err != nil || date == nil {
		return badRequest(c, "date required (YYYY-MM-DD)")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	st, err := h.Avail.Check(ctx, fieldID, slotID, *date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Create books a slot.  The bearer token is optional; when present the
// booking is linked to the user.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.FieldID == 0 || req.TimeSlotID == 0 {
		return badRequest(c, "fieldId and timeSlotId required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Bookings.Create(ctx, actorOf(c), service.CreateBookingInput{
		FieldID:       req.FieldID,
		TimeSlotID:    req.TimeSlotID,
		Date:          req.BookingDate,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// ListForFieldDate is the public schedule of a field.
func (h *BookingHandler) ListForFieldDate(c echo.Context) error {
	fieldID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	date, err := queryDate(c, "date")
	if err != nil || date == nil {
		return badRequest(c, "date required (YYYY-MM-DD)")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Bookings.ListForFieldDate(ctx, fieldID, *date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Bookings.ListForUser(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Bookings.Get(ctx, actorOf(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// List is the admin search.  Query: fieldId, status, from, to, phone,
// page, size.
func (h *BookingHandler) List(c echo.Context) error {
	fieldID, ok := queryID(c, "fieldId")
	if !ok {
		return badRequest(c, "invalid fieldId")
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return badRequest(c, "invalid from date")
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return badRequest(c, "invalid to date")
	}
	page, size := paging(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Bookings.List(ctx, model.BookingFilter{
		FieldID:  fieldID,
		Status:   model.BookingStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
		DateFrom: from,
		DateTo:   to,
		Phone:    strings.TrimSpace(c.QueryParam("phone")),
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	if err != nil {
		return writeError(c, err)
	}
	if items == nil {
		items = []model.BookingDetail{}
	}
	return c.JSON(http.StatusOK, pageResp[model.BookingDetail]{Items: items, Total: total, Page: page, Size: size})
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	to := model.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		return badRequest(c, "status must be one of pending, confirmed, completed, cancelled")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Bookings.UpdateStatus(ctx, actorOf(c), id, to, strings.TrimSpace(req.Reason))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	// The body is optional; an empty one binds to a blank reason.
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Bookings.Cancel(ctx, actorOf(c), id, strings.TrimSpace(req.Reason))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *BookingHandler) UpdatePayment(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	status := model.PaymentStatus(strings.ToLower(strings.TrimSpace(req.PaymentStatus)))
	d, err := h.Bookings.UpdatePayment(ctx, actorOf(c), id, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
