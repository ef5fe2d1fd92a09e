package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"assetstore-backend/internal/domains/user"
	"assetstore-backend/pkg/logger"
)

const userColumns = `
	id, email, password_hash, full_name, role, is_active,
	is_verified, verification_token, verification_sent_at,
	reset_token, reset_token_expires_at, last_login_at,
	created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, full_name, role, is_active,
			is_verified, verification_token, verification_sent_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.IsActive,
		u.IsVerified, u.VerificationToken, u.VerificationSentAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailAlreadyExists
		}
		logger.Error("insert user failed", err)
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.findOne(ctx, query, id)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.findOne(ctx, query, email)
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE verification_token = $1`, userColumns)
	u, err := r.findOne(ctx, query, token)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidToken
	}
	return u, err
}

func (r *postgresRepository) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE reset_token = $1 AND reset_token_expires_at > NOW()
	`, userColumns)
	u, err := r.findOne(ctx, query, token)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidToken
	}
	return u, err
}

func (r *postgresRepository) SetVerificationToken(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		UPDATE users
		SET verification_token = $1, verification_sent_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`
	return r.execExpectingRow(ctx, query, token, userID)
}

func (r *postgresRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $1, reset_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.execExpectingRow(ctx, query, token, expiresAt, userID)
}

func (r *postgresRepository) MarkAsVerified(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET is_verified = true, verification_token = NULL,
		    verification_sent_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, userID)
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL,
		    reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $2
	`
	return r.execExpectingRow(ctx, query, passwordHash, userID)
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteExpiredVerifyTokens(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE users
		SET verification_token = NULL, verification_sent_at = NULL
		WHERE verification_token IS NOT NULL
		  AND is_verified = false
		  AND verification_sent_at < $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		logger.Error("delete expired verification tokens failed", err)
		return 0, fmt.Errorf("delete expired verification tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *postgresRepository) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE users
		SET reset_token = NULL, reset_token_expires_at = NULL
		WHERE reset_token IS NOT NULL
		  AND reset_token_expires_at < $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		logger.Error("delete expired reset tokens failed", err)
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive,
		&u.IsVerified, &u.VerificationToken, &u.VerificationSentAt,
		&u.ResetToken, &u.ResetTokenExpiresAt, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
