package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

// OpponentHandler serves "looking for an opponent" posts.
type OpponentHandler struct {
	Opponents OpponentAPI
}

func NewOpponentHandler(o OpponentAPI) *OpponentHandler {
	return &OpponentHandler{Opponents: o}
}

type createOpponentReq struct {
	BookingID    uint64 `json:"bookingId"`
	TeamName     string `json:"teamName"`
	ContactPhone string `json:"contactPhone"`
	SkillLevel   string `json:"skillLevel"`
	Message      string `json:"message"`
}

type matchReq struct {
	TeamName     string `json:"teamName"`
	ContactPhone string `json:"contactPhone"`
}

// ListOpen returns searching posts.  Query: fieldId, date, page, size.
func (h *OpponentHandler) ListOpen(c echo.Context) error {
	fieldID, ok := queryID(c, "fieldId")
	if !ok {
		return badRequest(c, "invalid fieldId")
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, "invalid date")
	}
	page, size := paging(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Opponents.ListOpen(ctx, model.OpponentFilter{FieldID: fieldID, Date: date, Limit: size, Offset: (page - 1) * size})
	if err != nil {
		return writeError(c, err)
	}
	if items == nil {
		items = []model.Opponent{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OpponentHandler) Create(c echo.Context) error {
	var req createOpponentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.BookingID == 0 {
		return badRequest(c, "bookingId required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Opponents.Create(ctx, actorOf(c), service.CreateOpponentInput{
		BookingID:    req.BookingID,
		TeamName:     req.TeamName,
		ContactPhone: req.ContactPhone,
		SkillLevel:   model.SkillLevel(strings.ToLower(strings.TrimSpace(req.SkillLevel))),
		Message:      req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OpponentHandler) Match(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid opponent id")
	}
	var req matchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Opponents.Match(ctx, actorOf(c), id, req.TeamName, req.ContactPhone)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OpponentHandler) Cancel(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid opponent id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Opponents.Cancel(ctx, actorOf(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
