package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the data access contract for users.
type Repository interface {
	// Create inserts a new user.
	// Returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) error

	// FindByID returns ErrUserNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail returns ErrUserNotFound when missing.
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByVerificationToken returns ErrInvalidToken when no user
	// carries the token.
	FindByVerificationToken(ctx context.Context, token string) (*User, error)

	// FindByResetToken returns ErrInvalidToken when no user carries an
	// unexpired reset token.
	FindByResetToken(ctx context.Context, token string) (*User, error)

	// SetVerificationToken stores a fresh token and stamps
	// verification_sent_at.
	SetVerificationToken(ctx context.Context, userID uuid.UUID, token string) error

	// SetResetToken stores a reset token with its expiry.
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// MarkAsVerified flips is_verified and clears the token.
	MarkAsVerified(ctx context.Context, userID uuid.UUID) error

	// UpdatePassword writes the hash and clears the reset token.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error

	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredVerifyTokens clears verification tokens sent before
	// the cutoff. Returns the number of rows touched.
	DeleteExpiredVerifyTokens(ctx context.Context, cutoff time.Time) (int, error)

	// DeleteExpiredResetTokens clears reset tokens that expired before
	// the cutoff. Returns the number of rows touched.
	DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int, error)
}
