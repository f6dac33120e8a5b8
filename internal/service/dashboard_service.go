package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/football-field-booking/internal/model"
)

const maxExportRows = 10000

// DashboardService aggregates bookings for the admin dashboard.
type DashboardService struct {
	store    DashboardStore
	bookings BookingStore
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(store DashboardStore, bookings BookingStore, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{store: store, bookings: bookings, loc: loc, now: time.Now}
}

// Range resolves an optional from/to pair.  Missing bounds default to the
// last 30 days ending today.
func (s *DashboardService) Range(from, to string) (time.Time, time.Time, error) {
	end := model.DateOf(s.now(), s.loc)
	if to != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, invalidf("to: %s", err.Error())
		}
		end = d
	}
	start := end.AddDate(0, 0, -29)
	if from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, invalidf("from: %s", err.Error())
		}
		start = d
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, invalidf("from must not be after to")
	}
	return start, end, nil
}

// Stats runs the summary queries concurrently.
func (s *DashboardService) Stats(ctx context.Context, from, to time.Time) (*model.DashboardStats, error) {
	st := &model.DashboardStats{From: from.Format(model.DateLayout), To: to.Format(model.DateLayout)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.ByStatus, err = s.store.CountByStatus(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		st.Revenue, err = s.store.Revenue(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		st.TodayBookings, err = s.store.CountOnDate(gctx, model.DateOf(s.now(), s.loc))
		return err
	})
	g.Go(func() (err error) {
		st.ActiveFields, err = s.store.CountActiveFields(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.OpenOpponents, err = s.store.CountOpenOpponents(gctx, s.now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	for _, n := range st.ByStatus {
		st.TotalBookings += n
	}
	return st, nil
}

// Chart returns the revenue series for the period plus the field size and
// weekday breakdowns.
func (s *DashboardService) Chart(ctx context.Context, period model.ChartPeriod, from, to time.Time) (*model.DashboardChart, error) {
	if period == "" {
		period = model.PeriodDay
	}
	if !period.Valid() {
		return nil, invalidf("period must be day, week or month")
	}
	ch := &model.DashboardChart{Period: period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ch.Series, err = s.store.RevenueSeries(gctx, period, from, to)
		return err
	})
	g.Go(func() (err error) {
		ch.BySize, err = s.store.RevenueByFieldSize(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		ch.ByWeekday, err = s.store.RevenueByWeekday(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard chart: %w", err)
	}
	return ch, nil
}

var exportColumns = []string{"ID", "Date", "Start", "End", "Field", "Size", "Customer", "Phone", "Email", "Status", "Payment", "Price", "Created"}

// Export writes an xlsx workbook with a bookings sheet and a summary sheet.
func (s *DashboardService) Export(ctx context.Context, w io.Writer, from, to time.Time) error {
	rows, _, err := s.bookings.List(ctx, model.BookingFilter{DateFrom: &from, DateTo: &to, Limit: maxExportRows})
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	stats, err := s.Stats(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const bookingsSheet, summarySheet = "Bookings", "Summary"
	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, bookingsSheet, 1, toAny(exportColumns)); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(bookingsSheet, "A1", last, style)
	}
	for i, b := range rows {
		row := []any{b.ID, b.BookingDateStr, b.StartTime, b.EndTime, b.FieldName, int(b.FieldSize),
			b.CustomerName, b.CustomerPhone, b.CustomerEmail, string(b.Status), string(b.PaymentStatus),
			b.TotalPrice, b.CreatedAt.In(s.loc).Format("2006-01-02 15:04")}
		if err := writeRow(f, bookingsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", summarySheet, err)
	}
	summary := [][]any{
		{"From", stats.From},
		{"To", stats.To},
		{"Total bookings", stats.TotalBookings},
		{"Revenue", stats.Revenue},
	}
	for _, st := range []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingCompleted, model.BookingCancelled} {
		summary = append(summary, []any{"Status " + string(st), stats.ByStatus[string(st)]})
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
