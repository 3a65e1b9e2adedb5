package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
	"github.com/planwisehq/planwise/test/mocks"
)

func setupAuthTest(t *testing.T) (*AuthHandler, *mocks.MockAuthService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	handler := NewAuthHandler(mockAuth, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return handler, mockAuth, router
}

func authResultFixture() *port.AuthResult {
	return &port.AuthResult{
		User: domain.PublicUser{
			ID:          1,
			Email:       "alice@example.com",
			DisplayName: "Alice",
			Role:        domain.RoleViewer,
			IsActive:    true,
		},
		Tokens: port.TokenPair{
			AccessToken:  "jwt-token-123",
			RefreshToken: "refresh-token-123",
		},
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/register", handler.Register)

	mockAuth.EXPECT().
		Register(gomock.Any(), "alice@example.com", "sunlitmeadow", "Alice", gomock.Any()).
		Return(authResultFixture(), nil)

	body := `{"email":"alice@example.com","password":"sunlitmeadow","displayName":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp port.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "jwt-token-123", resp.Tokens.AccessToken)
	assert.Equal(t, "refresh-token-123", resp.Tokens.RefreshToken)

	// Password material never appears in the response.
	assert.NotContains(t, w.Body.String(), "sunlitmeadow")
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/register", handler.Register)

	mockAuth.EXPECT().
		Register(gomock.Any(), "alice@example.com", "sunlitmeadow", "", gomock.Any()).
		Return(nil, apperror.Conflict("email is already registered"))

	body := `{"email":"alice@example.com","password":"sunlitmeadow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	handler, _, router := setupAuthTest(t)

	router.POST("/api/v1/auth/register", handler.Register)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"sunlitmeadow"}`},
		{"malformed email", `{"email":"not-an-email","password":"sunlitmeadow"}`},
		{"missing password", `{"email":"alice@example.com"}`},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/login", handler.Login)

	mockAuth.EXPECT().
		Login(gomock.Any(), "alice@example.com", "sunlitmeadow", gomock.Any()).
		Return(authResultFixture(), nil)

	body := `{"email":"alice@example.com","password":"sunlitmeadow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp port.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, domain.RoleViewer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/login", handler.Login)

	mockAuth.EXPECT().
		Login(gomock.Any(), "alice@example.com", "wrong", gomock.Any()).
		Return(nil, apperror.Unauthorized("invalid credentials"))

	body := `{"email":"alice@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthHandler_Login_DeactivatedAccount(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/login", handler.Login)

	mockAuth.EXPECT().
		Login(gomock.Any(), "bob@example.com", "sunlitmeadow", gomock.Any()).
		Return(nil, apperror.Deactivated())

	body := `{"email":"bob@example.com","password":"sunlitmeadow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Deactivated is 403, distinct from bad credentials.
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_DEACTIVATED")
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/refresh", handler.Refresh)

	mockAuth.EXPECT().
		RefreshTokens(gomock.Any(), "refresh-token-123", gomock.Any()).
		Return(authResultFixture(), nil)

	body := `{"refreshToken":"refresh-token-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp port.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/refresh", handler.Refresh)

	mockAuth.EXPECT().
		RefreshTokens(gomock.Any(), "stale-token", gomock.Any()).
		Return(nil, apperror.Unauthorized("invalid or expired refresh token"))

	body := `{"refreshToken":"stale-token"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	router.POST("/api/v1/auth/logout", handler.Logout)

	mockAuth.EXPECT().
		Logout(gomock.Any(), "refresh-token-123").
		Return(nil)

	body := `{"refreshToken":"refresh-token-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
}

func TestAuthHandler_Me(t *testing.T) {
	handler, mockAuth, router := setupAuthTest(t)

	user := &domain.PublicUser{
		ID:    7,
		Email: "carol@example.com",
		Role:  domain.RoleEditor,
	}

	router.GET("/api/v1/auth/me", func(c *gin.Context) {
		c.Set("user_id", int64(7))
		c.Set("user_role", domain.RoleEditor)
		handler.Me(c)
	})

	mockAuth.EXPECT().
		CurrentUser(gomock.Any(), int64(7)).
		Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp domain.PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, domain.RoleEditor, resp.Role)
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	handler, _, router := setupAuthTest(t)

	router.GET("/api/v1/auth/me", handler.Me)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
