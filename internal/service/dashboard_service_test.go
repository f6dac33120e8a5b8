package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/football-field-booking/internal/model"
)

type stubDashboard struct {
	byStatus map[string]int
	revenue  int64
	err      error
}

func (s stubDashboard) CountByStatus(context.Context, time.Time, time.Time) (map[string]int, error) {
	return s.byStatus, s.err
}
func (s stubDashboard) Revenue(context.Context, time.Time, time.Time) (int64, error) {
	return s.revenue, nil
}
func (s stubDashboard) CountOnDate(context.Context, time.Time) (int, error) { return 2, nil }
func (s stubDashboard) CountActiveFields(context.Context) (int, error)      { return 3, nil }
func (s stubDashboard) CountOpenOpponents(context.Context, time.Time) (int, error) {
	return 1, nil
}
func (s stubDashboard) RevenueSeries(_ context.Context, p model.ChartPeriod, _, _ time.Time) ([]model.ChartPoint, error) {
	return []model.ChartPoint{{Label: string(p), Count: 1, Revenue: 300000}}, nil
}
func (s stubDashboard) RevenueByFieldSize(context.Context, time.Time, time.Time) ([]model.ChartPoint, error) {
	return []model.ChartPoint{{Label: "7", Count: 1, Revenue: 300000}}, nil
}
func (s stubDashboard) RevenueByWeekday(context.Context, time.Time, time.Time) ([]model.ChartPoint, error) {
	return []model.ChartPoint{{Label: "Saturday", Count: 1, Revenue: 300000}}, nil
}

func TestDashboardService_Range(t *testing.T) {
	svc := NewDashboardService(stubDashboard{}, nil, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	from, to, err := svc.Range("", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-12", from.Format(model.DateLayout))
	assert.Equal(t, "2024-06-10", to.Format(model.DateLayout))

	_, _, err = svc.Range("2024-06-20", "2024-06-10")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboardService_Stats(t *testing.T) {
	svc := NewDashboardService(stubDashboard{byStatus: map[string]int{"pending": 2, "confirmed": 3}, revenue: 900000}, nil, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	st, err := svc.Stats(context.Background(), mustDate("2024-06-01"), mustDate("2024-06-30"))
	require.NoError(t, err)
	assert.Equal(t, 5, st.TotalBookings)
	assert.EqualValues(t, 900000, st.Revenue)
	assert.Equal(t, 2, st.TodayBookings)
	assert.Equal(t, 3, st.ActiveFields)
	assert.Equal(t, 1, st.OpenOpponents)

	svc.store = stubDashboard{err: errors.New("db down")}
	_, err = svc.Stats(context.Background(), mustDate("2024-06-01"), mustDate("2024-06-30"))
	assert.Error(t, err)
}

func TestDashboardService_Chart(t *testing.T) {
	svc := NewDashboardService(stubDashboard{}, nil, time.UTC)

	ch, err := svc.Chart(context.Background(), "", mustDate("2024-06-01"), mustDate("2024-06-30"))
	require.NoError(t, err)
	assert.Equal(t, model.PeriodDay, ch.Period)
	require.Len(t, ch.Series, 1)
	assert.Equal(t, "day", ch.Series[0].Label)

	_, err = svc.Chart(context.Background(), "year", mustDate("2024-06-01"), mustDate("2024-06-30"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboardService_Export(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	_, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-15"))
	require.NoError(t, err)

	svc := NewDashboardService(stubDashboard{byStatus: map[string]int{"pending": 1}}, memBookings{fx.db}, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, mustDate("2024-06-01"), mustDate("2024-06-30")))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Bookings", "Summary"}, wb.GetSheetList())

	rows, err := wb.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "2024-06-15", rows[1][1])
	assert.Equal(t, "Field A", rows[1][4])
}
