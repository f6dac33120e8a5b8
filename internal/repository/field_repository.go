package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// FieldRepo provides CRUD operations for fields.
type FieldRepo struct{ db *sql.DB }

func NewFieldRepo(db *sql.DB) *FieldRepo { return &FieldRepo{db: db} }

const fieldColumns = `id, name, description, size, price_per_hour, image_url, is_active, created_at, updated_at`

func scanField(row interface{ Scan(...any) error }) (*model.Field, error) {
	var f model.Field
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Size, &f.PricePerHour,
		&f.ImageURL, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID returns a field or ErrNotFound.
func (r *FieldRepo) GetByID(ctx context.Context, id uint64) (*model.Field, error) {
	q := `SELECT ` + fieldColumns + ` FROM fields WHERE id = ?`
	if inTx(ctx) {
		q += ` LOCK IN SHARE MODE`
	}
	f, err := scanField(executor(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

// List returns fields ordered by size then name.  When onlyActive is true
// deactivated fields are omitted.
func (r *FieldRepo) List(ctx context.Context, onlyActive bool) ([]model.Field, error) {
	q := `SELECT ` + fieldColumns + ` FROM fields`
	if onlyActive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY size, name, id`
	rows, err := executor(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Field, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Create inserts a field and fills its generated ID and timestamps.
func (r *FieldRepo) Create(ctx context.Context, f *model.Field) error {
	ex := executor(ctx, r.db)
	res, err := ex.ExecContext(ctx,
		`INSERT INTO fields (name, description, size, price_per_hour, image_url, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Description, f.Size, f.PricePerHour, f.ImageURL, f.IsActive)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	return nil
}

// Update overwrites the mutable columns of a field.
func (r *FieldRepo) Update(ctx context.Context, f *model.Field) error {
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE fields SET name = ?, description = ?, size = ?, price_per_hour = ?, image_url = ?, is_active = ? WHERE id = ?`,
		f.Name, f.Description, f.Size, f.PricePerHour, f.ImageURL, f.IsActive, f.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// Delete removes a field; time slots, locks and historical bookings
// cascade.  Callers check for active bookings first.
func (r *FieldRepo) Delete(ctx context.Context, id uint64) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM fields WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// CountActiveBookingsFrom counts non-cancelled, not yet completed
// bookings of the field dated on or after from.
func (r *FieldRepo) CountActiveBookingsFrom(ctx context.Context, fieldID uint64, from time.Time) (int, error) {
	var n int
	err := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE field_id = ? AND booking_date >= ? AND status IN ('pending','confirmed')`,
		fieldID, from.Format(model.DateLayout)).Scan(&n)
	return n, err
}

// requireAffected converts a zero-row UPDATE/DELETE into ErrNotFound.
// The DSN sets clientFoundRows, so unchanged-but-matched rows count.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
