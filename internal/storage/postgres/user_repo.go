package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

const userColumns = `id, email, username, first_name, last_name, plan, api_calls, max_calls, created_at, updated_at`

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create returns models.ErrConflict when the email or username is taken.
func (r *UserRepo) Create(ctx context.Context, c *models.Credentials) error {
	const q = `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, plan, api_calls, max_calls,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Email, c.Username, c.PasswordHash, c.FirstName, c.LastName, c.Plan, c.APICalls, c.MaxCalls,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	q := `SELECT ` + userColumns + `, password_hash FROM users WHERE lower(email) = lower($1)`

	var c models.Credentials
	if err := r.db.GetContext(ctx, &c, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return &c, nil
}

// UpdateProfile leaves a column unchanged when its argument is nil.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error) {
	q := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var u models.User
	if err := r.db.GetContext(ctx, &u, q, id, firstName, lastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("user update profile: %w", err)
	}
	return &u, nil
}

// ReserveCall increments api_calls only while it is below max_calls, so
// concurrent reservations can never pass the ceiling.
func (r *UserRepo) ReserveCall(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `
		UPDATE users
		SET api_calls = api_calls + 1, updated_at = NOW()
		WHERE id = $1 AND api_calls < max_calls
		RETURNING ` + userColumns

	var u models.User
	err := r.db.GetContext(ctx, &u, q, id)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user reserve call: %w", err)
	}

	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &models.QuotaExceededError{Current: cur.APICalls, Limit: cur.MaxCalls, Plan: cur.Plan}
}

func (r *UserRepo) ReleaseCall(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET api_calls = GREATEST(api_calls - 1, 0), updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("user release call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user release call: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
