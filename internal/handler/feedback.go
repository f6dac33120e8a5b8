package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

type FeedbackHandler struct {
	Feedback FeedbackAPI
}

func NewFeedbackHandler(f FeedbackAPI) *FeedbackHandler {
	return &FeedbackHandler{Feedback: f}
}

type feedbackReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (h *FeedbackHandler) Create(c echo.Context) error {
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	fb, err := h.Feedback.Create(ctx, actorOf(c), service.CreateFeedbackInput{
		Name: req.Name, Email: req.Email, Rating: req.Rating, Content: req.Content,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fb)
}

func (h *FeedbackHandler) List(c echo.Context) error {
	page, size := paging(c)
	status := model.FeedbackStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Feedback.List(ctx, status, size, (page-1)*size)
	if err != nil {
		return writeError(c, err)
	}
	if items == nil {
		items = []model.Feedback{}
	}
	return c.JSON(http.StatusOK, pageResp[model.Feedback]{Items: items, Total: total, Page: page, Size: size})
}

func (h *FeedbackHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid feedback id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	fb, err := h.Feedback.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fb)
}

func (h *FeedbackHandler) UpdateStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid feedback id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	fb, err := h.Feedback.UpdateStatus(ctx, id, model.FeedbackStatus(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fb)
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid feedback id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Feedback.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
