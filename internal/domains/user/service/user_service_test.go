package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"assetstore-backend/internal/domains/user"
	"assetstore-backend/pkg/jwt"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[uuid.UUID]*user.User{},
		byEmail: map[string]*user.User{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	clone := *u
	f.byID[u.ID] = &clone
	f.byEmail[u.Email] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserRepo) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	for _, u := range f.byID {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrInvalidToken
}

func (f *fakeUserRepo) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	for _, u := range f.byID {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(time.Now()) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrInvalidToken
}

func (f *fakeUserRepo) SetVerificationToken(ctx context.Context, userID uuid.UUID, token string) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	now := time.Now()
	u.VerificationToken = &token
	u.VerificationSentAt = &now
	return nil
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) MarkAsVerified(ctx context.Context, userID uuid.UUID) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationSentAt = nil
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeUserRepo) DeleteExpiredVerifyTokens(ctx context.Context, cutoff time.Time) (int, error) {
	count := 0
	for _, u := range f.byID {
		if u.VerificationToken != nil && u.VerificationSentAt != nil && u.VerificationSentAt.Before(cutoff) {
			u.VerificationToken = nil
			u.VerificationSentAt = nil
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int, error) {
	count := 0
	for _, u := range f.byID {
		if u.ResetToken != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.Before(cutoff) {
			u.ResetToken = nil
			u.ResetTokenExpiresAt = nil
			count++
		}
	}
	return count, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newTestUserService(repo user.Repository, tasks TaskEnqueuer) user.Service {
	manager := jwt.NewManager("test-secret", 15, 168)
	return NewUserService(repo, manager, tasks, "http://localhost:3000")
}

func validRegister() user.RegisterRequest {
	return user.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
		FullName: "Alice Example",
	}
}

func registerVerifiedUser(t *testing.T, repo *fakeUserRepo, svc user.Service) *user.User {
	t.Helper()
	dto, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	require.NoError(t, repo.MarkAsVerified(context.Background(), dto.ID))
	return repo.byID[dto.ID]
}

func TestRegisterCreatesUnverifiedUserAndEnqueuesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	enqueuer := &fakeEnqueuer{}
	svc := newTestUserService(repo, enqueuer)

	dto, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, dto.Role)
	assert.False(t, dto.IsVerified)

	stored := repo.byID[dto.ID]
	require.NotNil(t, stored)
	require.NotNil(t, stored.VerificationToken)
	assert.NotEqual(t, "Sup3rSecret", stored.PasswordHash)

	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, "email:verification", enqueuer.tasks[0].Type())
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo(), &fakeEnqueuer{})

	req := validRegister()
	req.Password = "alllowercase1"
	_, err := svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})
	registerVerifiedUser(t, repo, svc)

	resp, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestLoginWrongPasswordFails(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})
	registerVerifiedUser(t, repo, svc)

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "WrongPass1",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLoginUnknownEmailFailsWithSameError(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo(), &fakeEnqueuer{})

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Whatever1",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLoginUnverifiedUserRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, err, user.ErrUserNotVerified)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})
	u := registerVerifiedUser(t, repo, svc)
	u.IsActive = false

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, err, user.ErrUserInactive)
}

func TestVerifyEmailFlipsFlag(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})

	dto, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	token := *repo.byID[dto.ID].VerificationToken
	require.NoError(t, svc.VerifyEmail(context.Background(), token))

	assert.True(t, repo.byID[dto.ID].IsVerified)
	assert.Nil(t, repo.byID[dto.ID].VerificationToken)
}

func TestVerifyEmailExpiredTokenRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})

	dto, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	stored := repo.byID[dto.ID]
	sentAt := time.Now().Add(-25 * time.Hour)
	stored.VerificationSentAt = &sentAt

	err = svc.VerifyEmail(context.Background(), *stored.VerificationToken)
	assert.ErrorIs(t, err, user.ErrTokenExpired)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})
	registerVerifiedUser(t, repo, svc)

	login, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeEnqueuer{})
	registerVerifiedUser(t, repo, svc)

	login, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	svc := newTestUserService(newFakeUserRepo(), enqueuer)

	err := svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{
		Email: "ghost@example.com",
	})
	assert.NoError(t, err)
	assert.Empty(t, enqueuer.tasks)
}

func TestResetPasswordWithValidToken(t *testing.T) {
	repo := newFakeUserRepo()
	enqueuer := &fakeEnqueuer{}
	svc := newTestUserService(repo, enqueuer)
	u := registerVerifiedUser(t, repo, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{
		Email: "alice@example.com",
	}))
	require.NotNil(t, repo.byID[u.ID].ResetToken)

	err := svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:       *repo.byID[u.ID].ResetToken,
		NewPassword: "N3wPassword",
	})
	require.NoError(t, err)

	assert.Nil(t, repo.byID[u.ID].ResetToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.byID[u.ID].PasswordHash), []byte("N3wPassword")))
}

func TestResetPasswordInvalidTokenRejected(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo(), &fakeEnqueuer{})

	err := svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:       "nope",
		NewPassword: "N3wPassword",
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
