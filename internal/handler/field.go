package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

// FieldHandler serves the field and time slot catalogue.
type FieldHandler struct {
	Catalog CatalogAPI
}

func NewFieldHandler(catalog CatalogAPI) *FieldHandler {
	return &FieldHandler{Catalog: catalog}
}

type fieldReq struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Size         *model.FieldSize `json:"size"`
	PricePerHour *int64           `json:"pricePerHour"`
	ImageURL     *string          `json:"imageUrl"`
	IsActive     *bool            `json:"isActive"`
}

func (r fieldReq) input() service.FieldInput {
	return service.FieldInput{
		Name:         r.Name,
		Description:  r.Description,
		Size:         r.Size,
		PricePerHour: r.PricePerHour,
		ImageURL:     r.ImageURL,
		IsActive:     r.IsActive,
	}
}

type timeSlotReq struct {
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	WeekdayPrice *int64  `json:"weekdayPrice"`
	WeekendPrice *int64  `json:"weekendPrice"`
	IsActive     *bool   `json:"isActive"`
}

func (r timeSlotReq) input() service.TimeSlotInput {
	return service.TimeSlotInput{
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		WeekdayPrice: r.WeekdayPrice,
		WeekendPrice: r.WeekendPrice,
		IsActive:     r.IsActive,
	}
}

// includeInactive is true only for admins asking with ?all=true.
func includeInactive(c echo.Context) bool {
	return c.QueryParam("all") == "true" && actorOf(c).IsAdmin()
}

func (h *FieldHandler) ListFields(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	fields, err := h.Catalog.ListFields(ctx, includeInactive(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *FieldHandler) GetField(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Catalog.GetField(ctx, id, includeInactive(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FieldHandler) CreateField(c echo.Context) error {
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Catalog.CreateField(ctx, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FieldHandler) UpdateField(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Catalog.UpdateField(ctx, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FieldHandler) DeleteField(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Catalog.DeleteField(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FieldHandler) ListTimeSlots(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	slots, err := h.Catalog.ListTimeSlots(ctx, id, includeInactive(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *FieldHandler) CreateTimeSlot(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid field id")
	}
	var req timeSlotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Catalog.CreateTimeSlot(ctx, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *FieldHandler) UpdateTimeSlot(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid time slot id")
	}
	var req timeSlotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Catalog.UpdateTimeSlot(ctx, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *FieldHandler) DeleteTimeSlot(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid time slot id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Catalog.DeleteTimeSlot(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
