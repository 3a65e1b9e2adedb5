package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/service"
	"github.com/planwisehq/planwise/test/mocks"
)

const testSecret = "test-signing-secret-for-middleware"

func newTestRouter(t *testing.T) (*gin.Engine, *service.TokenService, *mocks.MockAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthService(ctrl)
	tokens := service.NewTokenService(testSecret, 15*time.Minute)
	router := gin.New()
	return router, tokens, auth
}

// expectActiveUser stubs the account lookup behind a verified token.
// expectActiveUser подменяет загрузку аккаунта за проверенным токеном.
func expectActiveUser(auth *mocks.MockAuthService, id int64, role domain.Role) {
	auth.EXPECT().CurrentUser(gomock.Any(), id).
		Return(&domain.PublicUser{
			ID:       id,
			Email:    "user@example.com",
			Role:     role,
			IsActive: true,
		}, nil).
		AnyTimes()
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, tokens, auth := newTestRouter(t)
	expectActiveUser(auth, 42, domain.RoleEditor)

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		role, ok := GetUserRole(c)
		require.True(t, ok)
		email, ok := GetUserEmail(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role, "email": email})
	})

	token, err := tokens.GenerateAccessToken(42, domain.RoleEditor)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
	assert.Contains(t, w.Body.String(), `"role":"editor"`)
	assert.Contains(t, w.Body.String(), `"email":"user@example.com"`)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "abcdef"},
		{"wrong scheme", "Basic abcdef"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("Authorization", tt.header)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_TamperedToken(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Token signed with a different secret must be rejected.
	other := service.NewTokenService("some-other-secret", 15*time.Minute)
	token, err := other.GenerateAccessToken(42, domain.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_DeactivatedAccount(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	auth.EXPECT().CurrentUser(gomock.Any(), int64(42)).
		Return(&domain.PublicUser{ID: 42, Role: domain.RoleEditor, IsActive: false}, nil)

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := tokens.GenerateAccessToken(42, domain.RoleEditor)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// The credential was valid, so this is 403, not 401.
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_DEACTIVATED")
}

func TestAuthMiddleware_AccountGone(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	auth.EXPECT().CurrentUser(gomock.Any(), int64(42)).
		Return(nil, apperror.NotFound("user", int64(42)))

	router.GET("/private", AuthMiddleware(tokens, auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := tokens.GenerateAccessToken(42, domain.RoleEditor)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestAuthMiddleware_StoredRoleWinsOverClaim(t *testing.T) {
	router, tokens, auth := newTestRouter(t)

	// The account was demoted after the token was minted.
	expectActiveUser(auth, 42, domain.RoleViewer)

	router.GET("/admin",
		AuthMiddleware(tokens, auth),
		RequireRole(domain.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	token, err := tokens.GenerateAccessToken(42, domain.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGlobalAuthGuard_PublicPaths(t *testing.T) {
	router, tokens, auth := newTestRouter(t)
	router.Use(GlobalAuthGuard(tokens, auth))

	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/auth/logout", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "path %s must be public", path)
	}

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/logout"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "path %s must be public", path)
	}
}

func TestGlobalAuthGuard_PrivateByDefault(t *testing.T) {
	router, tokens, auth := newTestRouter(t)
	router.Use(GlobalAuthGuard(tokens, auth))

	// A route never registered on the allow-list is protected.
	router.GET("/api/v1/plans", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		userRole       domain.Role
		minRole        domain.Role
		expectedStatus int
	}{
		{"admin accesses admin route", domain.RoleAdmin, domain.RoleAdmin, http.StatusOK},
		{"owner accesses admin route", domain.RoleOwner, domain.RoleAdmin, http.StatusOK},
		{"editor denied admin route", domain.RoleEditor, domain.RoleAdmin, http.StatusForbidden},
		{"viewer denied admin route", domain.RoleViewer, domain.RoleAdmin, http.StatusForbidden},
		{"viewer accesses viewer route", domain.RoleViewer, domain.RoleViewer, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tokens, auth := newTestRouter(t)
			expectActiveUser(auth, 7, tt.userRole)

			router.GET("/admin",
				AuthMiddleware(tokens, auth),
				RequireRole(tt.minRole),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			token, err := tokens.GenerateAccessToken(7, tt.userRole)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireRole_WithoutAuthentication(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// RequireRole without a preceding auth middleware sees no identity.
	router.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := GetActor(c)
	assert.False(t, ok)

	c.Set(UserIDKey, int64(3))
	c.Set(UserRoleKey, domain.RoleAdmin)

	actor, ok := GetActor(c)
	require.True(t, ok)
	assert.Equal(t, int64(3), actor.ID)
	assert.Equal(t, domain.RoleAdmin, actor.Role)
}
