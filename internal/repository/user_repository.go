package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"accountly/internal/entities"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	SetPhoneVerified(ctx context.Context, id int64, verified bool) error
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const selectUser = `
		SELECT id, username, email, password_hash, phone_number, phone_verified, created_at, updated_at
		FROM users
	`

// Create inserts a new user and fills in its ID and timestamps.
// A username or email collision is reported as ErrDuplicateUser.
func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, phone_number, phone_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := r.now()
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.PhoneVerified,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// FindByUsername finds a user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, selectUser+"WHERE username = $1", username)
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, selectUser+"WHERE email = $1", email)
}

// FindByID finds a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	return r.findOne(ctx, selectUser+"WHERE id = $1", id)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*entities.User, error) {
	var user entities.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.PhoneVerified,
		timestamp{&user.CreatedAt},
		timestamp{&user.UpdatedAt},
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// Update writes every mutable column of the user.
func (r *userRepository) Update(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, phone_number = $4, phone_verified = $5, updated_at = $6
		WHERE id = $7
	`

	now := r.now()
	res, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.PhoneVerified,
		now,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

// SetPhoneVerified flips the phone verification flag.
func (r *userRepository) SetPhoneVerified(ctx context.Context, id int64, verified bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET phone_verified = $1, updated_at = $2
		WHERE id = $3
	`, verified, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update phone verification: %w", err)
	}
	return requireOneRow(res)
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
