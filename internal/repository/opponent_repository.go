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

// OpponentRepo stores "looking for a match" posts.  Each post belongs to
// exactly one booking (unique booking_id).
type OpponentRepo struct{ db *sql.DB }

func NewOpponentRepo(db *sql.DB) *OpponentRepo { return &OpponentRepo{db: db} }

var opponentColumns = []string{
	"o.id", "o.booking_id", "o.user_id", "o.team_name", "o.contact_phone", "o.skill_level",
	"o.message", "o.status", "o.matched_team", "o.matched_phone", "o.matched_by",
	"o.expires_at", "o.created_at", "o.updated_at",
	"b.field_id", "f.name", "b.booking_date", "t.start_time", "t.end_time",
}

func opponentSelect() sq.SelectBuilder {
	return sq.Select(opponentColumns...).
		From("opponents o").
		Join("bookings b ON b.id = o.booking_id").
		Join("fields f ON f.id = b.field_id").
		Join("time_slots t ON t.id = b.time_slot_id")
}

func scanOpponent(row interface{ Scan(...any) error }) (*model.Opponent, error) {
	var (
		o                 model.Opponent
		userID, matchedBy sql.NullInt64
		bookingDate       time.Time
	)
	if err := row.Scan(&o.ID, &o.BookingID, &userID, &o.TeamName, &o.ContactPhone, &o.SkillLevel,
		&o.Message, &o.Status, &o.MatchedTeam, &o.MatchedPhone, &matchedBy,
		&o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
		&o.FieldID, &o.FieldName, &bookingDate, &o.StartTime, &o.EndTime); err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		o.UserID = &uid
	}
	if matchedBy.Valid {
		by := uint64(matchedBy.Int64)
		o.MatchedBy = &by
	}
	o.BookingDate = bookingDate.Format(model.DateLayout)
	o.StartTime = model.NormalizeClock(o.StartTime)
	o.EndTime = model.NormalizeClock(o.EndTime)
	return &o, nil
}

func (r *OpponentRepo) getOne(ctx context.Context, b sq.SelectBuilder) (*model.Opponent, error) {
	if inTx(ctx) {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build opponent query: %w", err)
	}
	o, err := scanOpponent(executor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// GetByID returns a post or ErrNotFound.
func (r *OpponentRepo) GetByID(ctx context.Context, id uint64) (*model.Opponent, error) {
	return r.getOne(ctx, opponentSelect().Where(sq.Eq{"o.id": id}))
}

// GetByBookingID returns the post attached to a booking or ErrNotFound.
func (r *OpponentRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Opponent, error) {
	return r.getOne(ctx, opponentSelect().Where(sq.Eq{"o.booking_id": bookingID}))
}

// Create inserts a post; a second post for the same booking yields
// ErrDuplicate.
func (r *OpponentRepo) Create(ctx context.Context, o *model.Opponent) error {
	var userID any
	if o.UserID != nil {
		userID = *o.UserID
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO opponents (booking_id, user_id, team_name, contact_phone, skill_level, message, status, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.BookingID, userID, o.TeamName, o.ContactPhone, o.SkillLevel, o.Message, o.Status, o.ExpiresAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// ListOpen returns searching posts that have not expired at now, soonest
// first.
func (r *OpponentRepo) ListOpen(ctx context.Context, f model.OpponentFilter, now time.Time) ([]model.Opponent, error) {
	b := opponentSelect().
		Where(sq.Eq{"o.status": string(model.OpponentSearching)}).
		Where(sq.Gt{"o.expires_at": now.UTC()}).
		OrderBy("o.expires_at", "o.id")
	if f.FieldID != 0 {
		b = b.Where(sq.Eq{"b.field_id": f.FieldID})
	}
	if f.Date != nil {
		b = b.Where(sq.Eq{"b.booking_date": f.Date.Format(model.DateLayout)})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build opponent query: %w", err)
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Opponent, 0)
	for rows.Next() {
		o, err := scanOpponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Update writes the status and match columns of a post.
func (r *OpponentRepo) Update(ctx context.Context, o *model.Opponent) error {
	var matchedBy any
	if o.MatchedBy != nil {
		matchedBy = *o.MatchedBy
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE opponents SET status = ?, matched_team = ?, matched_phone = ?, matched_by = ? WHERE id = ?`,
		o.Status, o.MatchedTeam, o.MatchedPhone, matchedBy, o.ID)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

// CancelByBooking cancels the open or matched post of a booking, if any.
// Both point at the booking's slot, which is free once it is cancelled.
func (r *OpponentRepo) CancelByBooking(ctx context.Context, bookingID uint64) error {
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE opponents SET status = 'cancelled' WHERE booking_id = ? AND status IN ('searching', 'matched')`, bookingID)
	return translate(err)
}

// DeleteExpired removes every post whose expiry is at or before now.
func (r *OpponentRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM opponents WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}
