package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Anonymous    bool      `json:"anonymous"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *User) error {
	var email sql.NullString
	if user.Email != "" {
		email = sql.NullString{String: user.Email, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, anonymous, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, email, user.PasswordHash, user.Anonymous,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `WHERE email = ?`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `WHERE id = ?`, id)
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, anonymous, created_at, updated_at FROM users `+where, arg)

	var (
		user      User
		email     sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&user.ID, &email, &user.PasswordHash, &user.Anonymous, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Email = email.String

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse user updated_at: %w", err)
	}
	return &user, nil
}
