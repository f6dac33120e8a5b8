package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// BookingRepo persists bookings.  The bookings table carries a unique key
// over (field_id, time_slot_id, booking_date, active_marker) where
// active_marker is NULL for cancelled rows, so at most one non-cancelled
// booking can exist per slot and date regardless of application checks.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

var bookingDetailColumns = []string{
	"b.id", "b.user_id", "b.field_id", "b.time_slot_id", "b.booking_date", "b.total_price",
	"b.status", "b.payment_status", "b.customer_name", "b.customer_phone", "b.customer_email",
	"b.notes", "b.cancel_reason", "b.created_at", "b.updated_at",
	"f.name", "f.size", "t.start_time", "t.end_time",
}

func bookingDetailSelect() sq.SelectBuilder {
	return sq.Select(bookingDetailColumns...).
		From("bookings b").
		Join("fields f ON f.id = b.field_id").
		Join("time_slots t ON t.id = b.time_slot_id")
}

func scanBookingDetail(row interface{ Scan(...any) error }) (*model.BookingDetail, error) {
	var (
		d      model.BookingDetail
		userID sql.NullInt64
	)
	err := row.Scan(&d.ID, &userID, &d.FieldID, &d.TimeSlotID, &d.BookingDate, &d.TotalPrice,
		&d.Status, &d.PaymentStatus, &d.CustomerName, &d.CustomerPhone, &d.CustomerEmail,
		&d.Notes, &d.CancelReason, &d.CreatedAt, &d.UpdatedAt,
		&d.FieldName, &d.FieldSize, &d.StartTime, &d.EndTime)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		d.UserID = &uid
	}
	d.BookingDateStr = d.BookingDate.Format(model.DateLayout)
	d.StartTime = model.NormalizeClock(d.StartTime)
	d.EndTime = model.NormalizeClock(d.EndTime)
	return &d, nil
}

func (r *BookingRepo) queryDetails(ctx context.Context, b sq.SelectBuilder) ([]model.BookingDetail, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking query: %w", err)
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Create inserts a booking.  A concurrent booking that already holds the
// slot surfaces as ErrDuplicate; a deadlock with a competing lock or
// booking transaction surfaces as ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	var userID any
	if b.UserID != nil {
		userID = *b.UserID
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bookings (user_id, field_id, time_slot_id, booking_date, total_price, status, payment_status,
		                       customer_name, customer_phone, customer_email, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, b.FieldID, b.TimeSlotID, b.BookingDate.Format(model.DateLayout), b.TotalPrice,
		b.Status, b.PaymentStatus, b.CustomerName, b.CustomerPhone, b.CustomerEmail, b.Notes)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// GetDetail returns a booking joined with its field and slot.  Inside a
// transaction the booking row is locked for update.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	b := bookingDetailSelect().Where(sq.Eq{"b.id": id})
	if inTx(ctx) {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking query: %w", err)
	}
	d, err := scanBookingDetail(executor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// FindOverlapping returns the IDs of non-cancelled bookings on the field
// and date whose slot overlaps [start, end).  Inside a transaction the
// matching rows and index gaps are locked so a concurrent insert for the
// same range waits for the caller to finish.
func (r *BookingRepo) FindOverlapping(ctx context.Context, fieldID uint64, date time.Time, start, end string) ([]uint64, error) {
	q := `SELECT b.id FROM bookings b
	      JOIN time_slots t ON t.id = b.time_slot_id
	      WHERE b.field_id = ? AND b.booking_date = ? AND b.status <> 'cancelled'
	        AND t.start_time < ? AND t.end_time > ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, q, fieldID, date.Format(model.DateLayout), end, start)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForFieldDate returns the non-cancelled bookings of a field on a date
// ordered by slot start.
func (r *BookingRepo) ListForFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]model.BookingDetail, error) {
	return r.queryDetails(ctx, bookingDetailSelect().
		Where(sq.Eq{"b.field_id": fieldID, "b.booking_date": date.Format(model.DateLayout)}).
		Where(sq.NotEq{"b.status": string(model.BookingCancelled)}).
		OrderBy("t.start_time"))
}

// ListByUser returns a user's bookings, newest date first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return r.queryDetails(ctx, bookingDetailSelect().
		Where(sq.Eq{"b.user_id": userID}).
		OrderBy("b.booking_date DESC", "t.start_time DESC"))
}

func applyBookingFilter(b sq.SelectBuilder, f model.BookingFilter) sq.SelectBuilder {
	if f.FieldID != 0 {
		b = b.Where(sq.Eq{"b.field_id": f.FieldID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"b.status": string(f.Status)})
	}
	if f.DateFrom != nil {
		b = b.Where(sq.GtOrEq{"b.booking_date": f.DateFrom.Format(model.DateLayout)})
	}
	if f.DateTo != nil {
		b = b.Where(sq.LtOrEq{"b.booking_date": f.DateTo.Format(model.DateLayout)})
	}
	if f.Phone != "" {
		b = b.Where(sq.Like{"b.customer_phone": "%" + f.Phone + "%"})
	}
	return b
}

// List returns one page of bookings matching the filter and the total
// number of matches.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error) {
	countQ, countArgs, err := applyBookingFilter(sq.Select("COUNT(*)").From("bookings b"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build booking count: %w", err)
	}
	var total int
	if err := executor(ctx, r.db).QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	b := applyBookingFilter(bookingDetailSelect(), f).OrderBy("b.booking_date DESC", "t.start_time", "b.id")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}
	items, err := r.queryDetails(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateStatus sets the status and, for cancellations, the reason.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, reason string) error {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancel_reason = ? WHERE id = ?`, status, reason, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// UpdatePaymentStatus records settlement of a booking.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET payment_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// CompletePast marks confirmed bookings as completed once their slot has
// ended: any earlier date, or today with an end time at or before clock.
func (r *BookingRepo) CompletePast(ctx context.Context, today time.Time, clock string) (int64, error) {
	day := today.Format(model.DateLayout)
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings b JOIN time_slots t ON t.id = b.time_slot_id
		 SET b.status = 'completed'
		 WHERE b.status = 'confirmed' AND (b.booking_date < ? OR (b.booking_date = ? AND t.end_time <= ?))`,
		day, day, clock)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}
