package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// TimeSlotRepo stores the daily slots offered by each field.  TIME
// columns are read back as HH:MM:SS strings and normalised to HH:MM.
type TimeSlotRepo struct{ db *sql.DB }

func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

const timeSlotColumns = `id, field_id, start_time, end_time, weekday_price, weekend_price, is_active, created_at, updated_at`

func scanTimeSlot(row interface{ Scan(...any) error }) (*model.TimeSlot, error) {
	var s model.TimeSlot
	err := row.Scan(&s.ID, &s.FieldID, &s.StartTime, &s.EndTime, &s.WeekdayPrice,
		&s.WeekendPrice, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.StartTime = model.NormalizeClock(s.StartTime)
	s.EndTime = model.NormalizeClock(s.EndTime)
	return &s, nil
}

// GetByID returns a slot or ErrNotFound.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	q := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = ?`
	if inTx(ctx) {
		q += ` LOCK IN SHARE MODE`
	}
	s, err := scanTimeSlot(executor(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// ListByField returns the slots of a field ordered by start time.
func (r *TimeSlotRepo) ListByField(ctx context.Context, fieldID uint64, onlyActive bool) ([]model.TimeSlot, error) {
	q := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE field_id = ?`
	if onlyActive {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY start_time, end_time`
	rows, err := executor(ctx, r.db).QueryContext(ctx, q, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TimeSlot, 0)
	for rows.Next() {
		s, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Create inserts a slot.  A second slot with the same field and range
// yields ErrDuplicate.
func (r *TimeSlotRepo) Create(ctx context.Context, s *model.TimeSlot) error {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO time_slots (field_id, start_time, end_time, weekday_price, weekend_price, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		s.FieldID, s.StartTime, s.EndTime, s.WeekdayPrice, s.WeekendPrice, s.IsActive)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

// Update overwrites the mutable columns of a slot.
func (r *TimeSlotRepo) Update(ctx context.Context, s *model.TimeSlot) error {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE time_slots SET start_time = ?, end_time = ?, weekday_price = ?, weekend_price = ?, is_active = ? WHERE id = ?`,
		s.StartTime, s.EndTime, s.WeekdayPrice, s.WeekendPrice, s.IsActive, s.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// Delete removes a slot together with its locks and past bookings.
func (r *TimeSlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM time_slots WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// CountActiveBookingsFrom counts pending or confirmed bookings on the slot
// dated on or after from.
func (r *TimeSlotRepo) CountActiveBookingsFrom(ctx context.Context, slotID uint64, from time.Time) (int, error) {
	var n int
	err := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE time_slot_id = ? AND booking_date >= ? AND status IN ('pending','confirmed')`,
		slotID, from.Format(model.DateLayout)).Scan(&n)
	return n, err
}
