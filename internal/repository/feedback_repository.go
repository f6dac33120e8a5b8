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

// FeedbackRepo stores customer feedback messages.
type FeedbackRepo struct{ db *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func scanFeedback(row interface{ Scan(...any) error }) (*model.Feedback, error) {
	var (
		fb     model.Feedback
		userID sql.NullInt64
	)
	if err := row.Scan(&fb.ID, &userID, &fb.Name, &fb.Email, &fb.Rating, &fb.Content, &fb.Status, &fb.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		fb.UserID = &uid
	}
	return &fb, nil
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	var userID any
	if fb.UserID != nil {
		userID = *fb.UserID
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO feedback (user_id, name, email, rating, content, status) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, fb.Name, fb.Email, fb.Rating, fb.Content, fb.Status)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fb.ID = uint64(id)
	fb.CreatedAt = time.Now().UTC()
	return nil
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id uint64) (*model.Feedback, error) {
	fb, err := scanFeedback(executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, user_id, name, email, rating, content, status, created_at FROM feedback WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return fb, err
}

// List returns feedback newest first, optionally filtered by status, with
// the total number of matches.
func (r *FeedbackRepo) List(ctx context.Context, status model.FeedbackStatus, limit, offset int) ([]model.Feedback, int, error) {
	where := sq.And{}
	if status != "" {
		where = append(where, sq.Eq{"status": string(status)})
	}
	countQ, countArgs, err := sq.Select("COUNT(*)").From("feedback").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build feedback count: %w", err)
	}
	var total int
	if err := executor(ctx, r.db).QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	b := sq.Select("id", "user_id", "name", "email", "rating", "content", "status", "created_at").
		From("feedback").Where(where).OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit)).Offset(uint64(offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build feedback query: %w", err)
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *fb)
	}
	return out, total, rows.Err()
}

func (r *FeedbackRepo) UpdateStatus(ctx context.Context, id uint64, status model.FeedbackStatus) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `UPDATE feedback SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}
