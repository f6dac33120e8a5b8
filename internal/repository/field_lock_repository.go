package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// FieldLockRepo persists per-date slot locks in the field_management
// table.  A row with is_locked=0 is equivalent to no row.
type FieldLockRepo struct{ db *sql.DB }

func NewFieldLockRepo(db *sql.DB) *FieldLockRepo { return &FieldLockRepo{db: db} }

const fieldLockColumns = `id, field_id, time_slot_id, date, is_locked, lock_reason, locked_by, created_at, updated_at`

func scanFieldLock(row interface{ Scan(...any) error }) (*model.FieldLock, error) {
	var (
		l        model.FieldLock
		lockedBy sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.FieldID, &l.TimeSlotID, &l.Date, &l.IsLocked,
		&l.LockReason, &lockedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if lockedBy.Valid {
		by := uint64(lockedBy.Int64)
		l.LockedBy = &by
	}
	l.Day = l.Date.Format(model.DateLayout)
	return &l, nil
}

// Get returns the lock record for a slot and date, or ErrNotFound.  Inside
// a transaction the row (or the gap where it would be) is locked, which
// serialises against a concurrent booking re-check for the same slot.
func (r *FieldLockRepo) Get(ctx context.Context, fieldID, slotID uint64, date time.Time) (*model.FieldLock, error) {
	q := `SELECT ` + fieldLockColumns + ` FROM field_management WHERE field_id = ? AND time_slot_id = ? AND date = ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	l, err := scanFieldLock(executor(ctx, r.db).QueryRowContext(ctx, q, fieldID, slotID, date.Format(model.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, translate(err)
}

// Upsert locks a slot for a date, creating the record or re-locking an
// existing one with the new reason.
func (r *FieldLockRepo) Upsert(ctx context.Context, l *model.FieldLock) error {
	var lockedBy any
	if l.LockedBy != nil {
		lockedBy = *l.LockedBy
	}
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO field_management (field_id, time_slot_id, date, is_locked, lock_reason, locked_by)
		 VALUES (?, ?, ?, 1, ?, ?)
		 ON DUPLICATE KEY UPDATE is_locked = 1, lock_reason = VALUES(lock_reason), locked_by = VALUES(locked_by)`,
		l.FieldID, l.TimeSlotID, l.Date.Format(model.DateLayout), l.LockReason, lockedBy)
	if err != nil {
		return translate(err)
	}
	l.IsLocked = true
	l.Day = l.Date.Format(model.DateLayout)
	return nil
}

// Unlock clears the lock of one slot for a date and reports how many
// records changed (0 when the slot was not locked).
func (r *FieldLockRepo) Unlock(ctx context.Context, fieldID, slotID uint64, date time.Time) (int64, error) {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE field_management SET is_locked = 0, lock_reason = '' WHERE field_id = ? AND time_slot_id = ? AND date = ? AND is_locked = 1`,
		fieldID, slotID, date.Format(model.DateLayout))
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// UnlockAll clears every lock of a field for a date and returns the IDs
// of the slots that were locked.
func (r *FieldLockRepo) UnlockAll(ctx context.Context, fieldID uint64, date time.Time) ([]uint64, error) {
	locks, err := r.ListByFieldDate(ctx, fieldID, date)
	if err != nil {
		return nil, err
	}
	if len(locks) == 0 {
		return nil, nil
	}
	if _, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE field_management SET is_locked = 0, lock_reason = '' WHERE field_id = ? AND date = ? AND is_locked = 1`,
		fieldID, date.Format(model.DateLayout)); err != nil {
		return nil, translate(err)
	}
	ids := make([]uint64, 0, len(locks))
	for _, l := range locks {
		ids = append(ids, l.TimeSlotID)
	}
	return ids, nil
}

// ListByFieldDate returns the active locks of a field on a date.
func (r *FieldLockRepo) ListByFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error) {
	q := `SELECT ` + fieldLockColumns + ` FROM field_management WHERE field_id = ? AND date = ? AND is_locked = 1 ORDER BY time_slot_id`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, q, fieldID, date.Format(model.DateLayout))
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := make([]model.FieldLock, 0)
	for rows.Next() {
		l, err := scanFieldLock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
