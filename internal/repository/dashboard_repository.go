package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// DashboardRepo runs the read-only aggregates behind the admin dashboard.
type DashboardRepo struct{ db *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

const revenueExpr = "COALESCE(SUM(CASE WHEN b.status IN ('confirmed','completed') THEN b.total_price ELSE 0 END), 0)"

func dateRange(from, to time.Time) sq.And {
	return sq.And{
		sq.GtOrEq{"b.booking_date": from.Format(model.DateLayout)},
		sq.LtOrEq{"b.booking_date": to.Format(model.DateLayout)},
	}
}

func (r *DashboardRepo) scalar(ctx context.Context, b sq.SelectBuilder, dest any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build dashboard query: %w", err)
	}
	return executor(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(dest)
}

// CountByStatus returns booking counts per status within [from, to].
func (r *DashboardRepo) CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error) {
	query, args, err := sq.Select("b.status", "COUNT(*)").From("bookings b").
		Where(dateRange(from, to)).GroupBy("b.status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dashboard query: %w", err)
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Revenue sums confirmed and completed bookings within [from, to].
func (r *DashboardRepo) Revenue(ctx context.Context, from, to time.Time) (int64, error) {
	var v int64
	err := r.scalar(ctx, sq.Select(revenueExpr).From("bookings b").Where(dateRange(from, to)), &v)
	return v, err
}

// CountOnDate counts non-cancelled bookings played on day.
func (r *DashboardRepo) CountOnDate(ctx context.Context, day time.Time) (int, error) {
	var n int
	err := r.scalar(ctx, sq.Select("COUNT(*)").From("bookings b").
		Where(sq.Eq{"b.booking_date": day.Format(model.DateLayout)}).
		Where(sq.NotEq{"b.status": string(model.BookingCancelled)}), &n)
	return n, err
}

func (r *DashboardRepo) CountActiveFields(ctx context.Context) (int, error) {
	var n int
	err := r.scalar(ctx, sq.Select("COUNT(*)").From("fields").Where(sq.Eq{"is_active": true}), &n)
	return n, err
}

// CountOpenOpponents counts searching posts that have not expired at now.
func (r *DashboardRepo) CountOpenOpponents(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.scalar(ctx, sq.Select("COUNT(*)").From("opponents").
		Where(sq.Eq{"status": string(model.OpponentSearching)}).
		Where(sq.Gt{"expires_at": now.UTC()}), &n)
	return n, err
}

func periodBucket(p model.ChartPeriod) string {
	switch p {
	case model.PeriodWeek:
		return "DATE_FORMAT(b.booking_date, '%x-W%v')"
	case model.PeriodMonth:
		return "DATE_FORMAT(b.booking_date, '%Y-%m')"
	default:
		return "DATE_FORMAT(b.booking_date, '%Y-%m-%d')"
	}
}

func (r *DashboardRepo) points(ctx context.Context, label string, from, to time.Time) ([]model.ChartPoint, error) {
	query, args, err := sq.Select(label+" AS bucket", "COUNT(*)", revenueExpr).
		From("bookings b").
		Join("fields f ON f.id = b.field_id").
		Where(dateRange(from, to)).
		Where(sq.NotEq{"b.status": string(model.BookingCancelled)}).
		GroupBy("bucket").OrderBy("bucket").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dashboard query: %w", err)
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ChartPoint, 0)
	for rows.Next() {
		var p model.ChartPoint
		if err := rows.Scan(&p.Label, &p.Count, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RevenueSeries groups non-cancelled bookings by day, ISO week or month.
func (r *DashboardRepo) RevenueSeries(ctx context.Context, period model.ChartPeriod, from, to time.Time) ([]model.ChartPoint, error) {
	return r.points(ctx, periodBucket(period), from, to)
}

// RevenueByFieldSize groups by the field's a-side size ("5", "7", "11").
func (r *DashboardRepo) RevenueByFieldSize(ctx context.Context, from, to time.Time) ([]model.ChartPoint, error) {
	return r.points(ctx, "CAST(f.size AS CHAR)", from, to)
}

// RevenueByWeekday groups by day of week.  Labels are Go weekday names.
func (r *DashboardRepo) RevenueByWeekday(ctx context.Context, from, to time.Time) ([]model.ChartPoint, error) {
	pts, err := r.points(ctx, "CAST(DAYOFWEEK(b.booking_date) AS CHAR)", from, to)
	if err != nil {
		return nil, err
	}
	for i := range pts {
		// MySQL DAYOFWEEK: 1 = Sunday.
		if n, err := strconv.Atoi(pts[i].Label); err == nil && n >= 1 && n <= 7 {
			pts[i].Label = time.Weekday(n - 1).String()
		}
	}
	return pts, nil
}
