package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-field-booking/internal/model"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves admin reporting.  Every endpoint takes optional
// from/to dates (YYYY-MM-DD).
type DashboardHandler struct {
	Dashboard DashboardAPI
}

func NewDashboardHandler(d DashboardAPI) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	from, to, err := h.Dashboard.Range(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	st, err := h.Dashboard.Stats(ctx, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Chart groups revenue by ?period=day|week|month (default day).
func (h *DashboardHandler) Chart(c echo.Context) error {
	period := model.ChartPeriod(strings.ToLower(strings.TrimSpace(c.QueryParam("period"))))
	if period == "" {
		period = model.PeriodDay
	}
	if !period.Valid() {
		return badRequest(c, "period must be day, week or month")
	}
	from, to, err := h.Dashboard.Range(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ch, err := h.Dashboard.Chart(ctx, period, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// Export streams an xlsx workbook of the bookings in range.
func (h *DashboardHandler) Export(c echo.Context) error {
	from, to, err := h.Dashboard.Range(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	var buf bytes.Buffer
	if err := h.Dashboard.Export(ctx, &buf, from, to); err != nil {
		return writeError(c, err)
	}
	name := fmt.Sprintf("bookings_%s_%s.xlsx", from.Format(model.DateLayout), to.Format(model.DateLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
