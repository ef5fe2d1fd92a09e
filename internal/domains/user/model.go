package user

import (
	"time"

	"github.com/google/uuid"
)

// User maps 1:1 to the users table.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`

	PasswordHash string `db:"password_hash" json:"-"`

	FullName string `db:"full_name" json:"full_name"`

	Role     Role `db:"role" json:"role"`
	IsActive bool `db:"is_active" json:"is_active"`

	// Email verification
	IsVerified         bool       `db:"is_verified" json:"is_verified"`
	VerificationToken  *string    `db:"verification_token" json:"-"`
	VerificationSentAt *time.Time `db:"verification_sent_at" json:"-"`

	// Password reset
	ResetToken          *string    `db:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`

	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Role string

const (
	RoleUser  Role = "user"  // Browse and download
	RoleAdmin Role = "admin" // Full catalog management
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// IsPasswordResetValid reports whether the reset token is set and
// unexpired.
func (u *User) IsPasswordResetValid() bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return time.Now().Before(*u.ResetTokenExpiresAt)
}

// IsVerificationValid reports whether the verification token is still
// within its 24h window.
func (u *User) IsVerificationValid() bool {
	if u.VerificationToken == nil || u.VerificationSentAt == nil {
		return false
	}
	return time.Now().Before(u.VerificationSentAt.Add(24 * time.Hour))
}
