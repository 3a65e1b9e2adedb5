package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/test/mocks"
)

type authServiceMocks struct {
	userRepo    *mocks.MockUserRepository
	sessionRepo *mocks.MockSessionRepository
	txManager   *mocks.MockTransaction
	tokens      *mocks.MockTokenService
	hasher      *mocks.MockPasswordHasher
	rateLimit   *mocks.MockRateLimitCache
}

func setupAuthService(t *testing.T) (*AuthService, *authServiceMocks) {
	ctrl := gomock.NewController(t)
	m := &authServiceMocks{
		userRepo:    mocks.NewMockUserRepository(ctrl),
		sessionRepo: mocks.NewMockSessionRepository(ctrl),
		txManager:   mocks.NewMockTransaction(ctrl),
		tokens:      mocks.NewMockTokenService(ctrl),
		hasher:      mocks.NewMockPasswordHasher(ctrl),
		rateLimit:   mocks.NewMockRateLimitCache(ctrl),
	}
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	svc := NewAuthService(m.userRepo, m.sessionRepo, m.txManager, m.tokens, m.hasher, m.rateLimit, AuthServiceConfig{}, log)
	return svc, m
}

func activeUser(id int64, email string, role domain.Role) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "$2a$10$hash",
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now().Add(-time.Hour),
	}
}

// expectIssueTokens wires the happy path of minting a pair and storing
// its session.
func (m *authServiceMocks) expectIssueTokens(userID int64, role domain.Role) {
	m.tokens.EXPECT().GenerateAccessToken(userID, role).Return("access-token", nil)
	m.tokens.EXPECT().GenerateRefreshToken().Return("refresh-token", nil)
	m.sessionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *domain.Session) error {
			if session.UserID != userID {
				return errors.New("session stored for wrong user")
			}
			if session.RefreshToken != "refresh-token" {
				return errors.New("session stored with wrong token")
			}
			return nil
		})
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").
		Return(nil, apperror.NotFound("user", "alice@example.com"))
	m.userRepo.EXPECT().Count(ctx).Return(int64(3), nil)
	m.hasher.EXPECT().Hash("sunlitmeadow").Return("hashed", nil)
	m.userRepo.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, user *domain.User) error {
			user.ID = 4
			assert.Equal(t, domain.RoleViewer, user.Role)
			assert.Equal(t, "hashed", user.PasswordHash)
			assert.True(t, user.IsActive)
			return nil
		})
	m.expectIssueTokens(4, domain.RoleViewer)

	result, err := svc.Register(ctx, "Alice@Example.com ", "sunlitmeadow", "Alice", domain.RequestMeta{})

	require.NoError(t, err)
	// Email is normalized before anything touches it.
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, domain.RoleViewer, result.User.Role)
	assert.Equal(t, "access-token", result.Tokens.AccessToken)
	assert.Equal(t, "refresh-token", result.Tokens.RefreshToken)
}

func TestAuthService_Register_FirstUserBecomesOwner(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.userRepo.EXPECT().FindByEmail(ctx, "founder@example.com").
		Return(nil, apperror.NotFound("user", "founder@example.com"))
	m.userRepo.EXPECT().Count(ctx).Return(int64(0), nil)
	m.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
	m.userRepo.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, user *domain.User) error {
			user.ID = 1
			assert.Equal(t, domain.RoleOwner, user.Role)
			return nil
		})
	m.expectIssueTokens(1, domain.RoleOwner)

	result, err := svc.Register(ctx, "founder@example.com", "sunlitmeadow", "Founder", domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, result.User.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").
		Return(activeUser(1, "alice@example.com", domain.RoleViewer), nil)

	_, err := svc.Register(ctx, "alice@example.com", "sunlitmeadow", "Alice", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeConflict))
}

func TestAuthService_Register_DuplicateEmailRace(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	// The pre-check misses; the unique index catches the race.
	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").
		Return(nil, apperror.NotFound("user", "alice@example.com"))
	m.userRepo.EXPECT().Count(ctx).Return(int64(2), nil)
	m.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
	m.userRepo.EXPECT().Create(ctx, gomock.Any()).
		Return(apperror.Conflict("email is already registered"))

	_, err := svc.Register(ctx, "alice@example.com", "sunlitmeadow", "Alice", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeConflict))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "short"},
		{"common password", "password123"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "new@example.com", tt.password, "", domain.RequestMeta{})

			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeValidation))
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleEditor)

	m.rateLimit.EXPECT().GetCount(ctx, "login_attempts:alice@example.com").Return(int64(0), nil)
	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
	m.hasher.EXPECT().Verify("sunlitmeadow", user.PasswordHash).Return(true)
	m.rateLimit.EXPECT().Reset(ctx, "login_attempts:alice@example.com").Return(nil)
	m.expectIssueTokens(7, domain.RoleEditor)

	result, err := svc.Login(ctx, "alice@example.com", "sunlitmeadow", domain.RequestMeta{UserAgent: "cli", IPAddress: "10.0.0.1"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.User.ID)
	assert.Equal(t, "access-token", result.Tokens.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleEditor)

	m.rateLimit.EXPECT().GetCount(ctx, gomock.Any()).Return(int64(0), nil)
	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
	m.hasher.EXPECT().Verify("wrong", user.PasswordHash).Return(false)
	m.rateLimit.EXPECT().Increment(ctx, "login_attempts:alice@example.com", 15*time.Minute).Return(int64(1), nil)

	_, err := svc.Login(ctx, "alice@example.com", "wrong", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.rateLimit.EXPECT().GetCount(ctx, gomock.Any()).Return(int64(0), nil)
	m.userRepo.EXPECT().FindByEmail(ctx, "ghost@example.com").
		Return(nil, apperror.NotFound("user", "ghost@example.com"))
	m.rateLimit.EXPECT().Increment(ctx, "login_attempts:ghost@example.com", gomock.Any()).Return(int64(1), nil)

	_, err := svc.Login(ctx, "ghost@example.com", "whatever1", domain.RequestMeta{})

	require.Error(t, err)
	// Same answer as a wrong password: no account enumeration.
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "bob@example.com", domain.RoleViewer)
	user.IsActive = false

	m.rateLimit.EXPECT().GetCount(ctx, gomock.Any()).Return(int64(0), nil)
	m.userRepo.EXPECT().FindByEmail(ctx, "bob@example.com").Return(user, nil)
	// The password still has to verify before the status is disclosed.
	m.hasher.EXPECT().Verify("sunlitmeadow", user.PasswordHash).Return(true)

	_, err := svc.Login(ctx, "bob@example.com", "sunlitmeadow", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeDeactivated))
}

func TestAuthService_Login_LockedOut(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.rateLimit.EXPECT().GetCount(ctx, "login_attempts:alice@example.com").Return(int64(5), nil)

	_, err := svc.Login(ctx, "alice@example.com", "sunlitmeadow", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeTooMany))
}

func TestAuthService_Login_LockoutCheckFailureDoesNotBlock(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleViewer)

	// Redis being down degrades the lockout, never the login.
	m.rateLimit.EXPECT().GetCount(ctx, gomock.Any()).Return(int64(0), errors.New("redis down"))
	m.userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
	m.hasher.EXPECT().Verify("sunlitmeadow", user.PasswordHash).Return(true)
	m.rateLimit.EXPECT().Reset(ctx, gomock.Any()).Return(errors.New("redis down"))
	m.expectIssueTokens(7, domain.RoleViewer)

	_, err := svc.Login(ctx, "alice@example.com", "sunlitmeadow", domain.RequestMeta{})

	require.NoError(t, err)
}

func sessionFixture(userID int64, token string, expiresAt time.Time) *domain.Session {
	return &domain.Session{
		ID:           "11111111-1111-1111-1111-111111111111",
		UserID:       userID,
		RefreshToken: token,
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now().Add(-time.Hour),
	}
}

func TestAuthService_RefreshTokens_Success(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleEditor)
	session := sessionFixture(7, "old-refresh", time.Now().Add(time.Hour))

	m.sessionRepo.EXPECT().FindByToken(ctx, "old-refresh").Return(session, nil)
	m.userRepo.EXPECT().FindByID(ctx, int64(7)).Return(user, nil)
	m.tokens.EXPECT().GenerateAccessToken(int64(7), domain.RoleEditor).Return("new-access", nil)
	m.tokens.EXPECT().GenerateRefreshToken().Return("new-refresh", nil)

	// Delete-old and insert-new happen inside one transaction.
	m.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(*gorm.DB) error) error {
			tx := &gorm.DB{}
			m.sessionRepo.EXPECT().DeleteByTokenTx(ctx, tx, "old-refresh").Return(int64(1), nil)
			m.sessionRepo.EXPECT().CreateTx(ctx, tx, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *gorm.DB, s *domain.Session) error {
					assert.Equal(t, "new-refresh", s.RefreshToken)
					assert.Equal(t, int64(7), s.UserID)
					return nil
				})
			return fn(tx)
		})

	result, err := svc.RefreshTokens(ctx, "old-refresh", domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, "new-access", result.Tokens.AccessToken)
	assert.Equal(t, "new-refresh", result.Tokens.RefreshToken)
	assert.Equal(t, int64(7), result.User.ID)
}

func TestAuthService_RefreshTokens_LosingRacerIsRejected(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleEditor)
	session := sessionFixture(7, "contested", time.Now().Add(time.Hour))

	// Both racers pass the lookup; only one transaction deletes the row.
	// This is the loser's view: the delete inside the transaction finds
	// nothing because the winner already consumed the token.
	m.sessionRepo.EXPECT().FindByToken(ctx, "contested").Return(session, nil)
	m.userRepo.EXPECT().FindByID(ctx, int64(7)).Return(user, nil)
	m.tokens.EXPECT().GenerateAccessToken(int64(7), domain.RoleEditor).Return("second-access", nil)
	m.tokens.EXPECT().GenerateRefreshToken().Return("second-refresh", nil)

	m.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(*gorm.DB) error) error {
			tx := &gorm.DB{}
			m.sessionRepo.EXPECT().DeleteByTokenTx(ctx, tx, "contested").Return(int64(0), nil)
			// No CreateTx expectation: the loser must never insert a session.
			return fn(tx)
		})

	_, err := svc.RefreshTokens(ctx, "contested", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid or expired refresh token")
}

func TestAuthService_RefreshTokens_UnknownToken(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.sessionRepo.EXPECT().FindByToken(ctx, "burned").
		Return(nil, apperror.NotFound("session", "refresh token"))

	_, err := svc.RefreshTokens(ctx, "burned", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestAuthService_RefreshTokens_ExpiredSession(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	session := sessionFixture(7, "stale", time.Now().Add(-time.Minute))

	m.sessionRepo.EXPECT().FindByToken(ctx, "stale").Return(session, nil)
	m.sessionRepo.EXPECT().DeleteByToken(ctx, "stale").Return(nil)

	_, err := svc.RefreshTokens(ctx, "stale", domain.RequestMeta{})

	require.Error(t, err)
	// Expired and missing are indistinguishable to the caller.
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid or expired refresh token")
}

func TestAuthService_RefreshTokens_DeactivatedUser(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "bob@example.com", domain.RoleViewer)
	user.IsActive = false
	session := sessionFixture(7, "valid", time.Now().Add(time.Hour))

	m.sessionRepo.EXPECT().FindByToken(ctx, "valid").Return(session, nil)
	m.userRepo.EXPECT().FindByID(ctx, int64(7)).Return(user, nil)
	// Deactivation revokes every session the user still holds.
	m.sessionRepo.EXPECT().DeleteByUser(ctx, int64(7)).Return(nil)

	_, err := svc.RefreshTokens(ctx, "valid", domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeDeactivated))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	// Deleting an absent token is not an error at the repository level,
	// so logging out twice succeeds twice.
	m.sessionRepo.EXPECT().DeleteByToken(ctx, "whatever").Return(nil).Times(2)

	require.NoError(t, svc.Logout(ctx, "whatever"))
	require.NoError(t, svc.Logout(ctx, "whatever"))
}

func TestAuthService_Logout_StorageFailure(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()

	m.sessionRepo.EXPECT().DeleteByToken(ctx, "token").Return(errors.New("db down"))

	err := svc.Logout(ctx, "token")

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInternal))
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, m := setupAuthService(t)
	ctx := context.Background()
	user := activeUser(7, "alice@example.com", domain.RoleEditor)

	m.userRepo.EXPECT().FindByID(ctx, int64(7)).Return(user, nil)

	public, err := svc.CurrentUser(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), public.ID)
	assert.Equal(t, "alice@example.com", public.Email)
}
