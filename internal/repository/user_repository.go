package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/football-field-booking/internal/model"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, email, password_hash, full_name, phone, role, is_active, created_at, updated_at"

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts a user with an already hashed password.  A taken email
// yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.IsActive = true
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := executor(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email = ?", normalizeEmail(email))
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// EnsureAdmin creates the bootstrap admin or promotes an existing account
// with the same email.  The password of an existing account is left alone.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role) VALUES (?, ?, 'Administrator', 'admin')
		 ON DUPLICATE KEY UPDATE role = 'admin', is_active = 1`,
		normalizeEmail(email), passwordHash)
	return translate(err)
}
