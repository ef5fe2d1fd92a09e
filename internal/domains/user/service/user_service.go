package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"assetstore-backend/internal/domains/user"
	"assetstore-backend/internal/infrastructure/email"
	"assetstore-backend/internal/shared"
	"assetstore-backend/pkg/jwt"
	"assetstore-backend/pkg/logger"
)

const bcryptCost = 12

// TaskEnqueuer matches *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type userService struct {
	repo        user.Repository
	jwtManager  *jwt.Manager
	tasks       TaskEnqueuer
	frontendURL string
}

// NewUserService - Constructor
func NewUserService(repo user.Repository, jwtManager *jwt.Manager, tasks TaskEnqueuer, frontendURL string) user.Service {
	return &userService{
		repo:        repo,
		jwtManager:  jwtManager,
		tasks:       tasks,
		frontendURL: frontendURL,
	}
}

// ========================================
// REGISTRATION & VERIFICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	now := time.Now()
	u := &user.User{
		ID:                 uuid.New(),
		Email:              req.Email,
		PasswordHash:       string(passwordHash),
		FullName:           req.FullName,
		Role:               user.RoleUser,
		IsActive:           true,
		IsVerified:         false,
		VerificationToken:  &token,
		VerificationSentAt: &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.enqueueVerificationEmail(ctx, u.Email, token)

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	u, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	if u.IsVerified {
		return nil
	}
	if !u.IsVerificationValid() {
		return user.ErrTokenExpired
	}

	return s.repo.MarkAsVerified(ctx, u.ID)
}

func (s *userService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	if err := s.repo.SetVerificationToken(ctx, u.ID, token); err != nil {
		return err
	}

	s.enqueueVerificationEmail(ctx, u.Email, token)
	return nil
}

// ========================================
// LOGIN & TOKENS
// ========================================

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, user.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, user.ErrUserInactive
	}
	if !u.IsVerified {
		return nil, user.ErrUserNotVerified
	}

	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		logger.Warn("update last login failed", err)
	}

	return s.issueTokens(u)
}

// Logout records the event. Tokens are stateless, the client discards
// them.
func (s *userService) Logout(ctx context.Context, userID uuid.UUID) error {
	logger.Info("User logged out", map[string]interface{}{
		"user_id": userID.String(),
	})
	return nil
}

func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*user.LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	return s.issueTokens(u)
}

// ========================================
// PASSWORD RESET
// ========================================

func (s *userService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Silent success so the endpoint cannot be used to probe for
		// registered emails.
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(1 * time.Hour)
	if err := s.repo.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return err
	}

	s.enqueueResetEmail(ctx, u.Email, token)
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByResetToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if !u.IsPasswordResetValid() {
		return user.ErrTokenExpired
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, u.ID, string(passwordHash))
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

// ========================================
// HELPERS
// ========================================

func (s *userService) issueTokens(u *user.User) (*user.LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	return &user.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         u.ToDTO(),
	}, nil
}

func (s *userService) enqueueVerificationEmail(ctx context.Context, to, token string) {
	if s.tasks == nil {
		return
	}

	payload, err := json.Marshal(email.VerificationEmailData{
		Email:      to,
		VerifyLink: fmt.Sprintf("%s/auth/verify?token=%s", s.frontendURL, token),
		ExpiresIn:  "24 hours",
	})
	if err != nil {
		return
	}

	task := asynq.NewTask(shared.TypeSendVerificationEmail, payload)
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Queue("critical")); err != nil {
		logger.Error("enqueue verification email failed", err)
	}
}

func (s *userService) enqueueResetEmail(ctx context.Context, to, token string) {
	if s.tasks == nil {
		return
	}

	payload, err := json.Marshal(email.ResetPasswordData{
		Email:     to,
		Token:     token,
		ExpiresIn: "1 hour",
	})
	if err != nil {
		return
	}

	task := asynq.NewTask(shared.TypeSendResetEmail, payload)
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Queue("critical")); err != nil {
		logger.Error("enqueue reset email failed", err)
	}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
