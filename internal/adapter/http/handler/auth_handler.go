// Package handler provides HTTP request handlers for the planning service.
// Пакет handler предоставляет обработчики HTTP запросов для сервиса планирования.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planwisehq/planwise/internal/adapter/http/middleware"
	"github.com/planwisehq/planwise/internal/adapter/http/response"
	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
)

// AuthHandler handles authentication-related HTTP requests.
// AuthHandler обрабатывает HTTP запросы, связанные с аутентификацией.
//
// Provides endpoints for registration, login, token refresh, logout,
// and the current-user profile.
// Предоставляет эндпоинты для регистрации, входа, обновления токенов,
// выхода и профиля текущего пользователя.
type AuthHandler struct {
	authService port.AuthService // Authentication service / Сервис аутентификации
	logger      *logger.Logger   // Logger instance / Экземпляр логгера
}

// NewAuthHandler creates a new AuthHandler instance.
// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(authService port.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      log.WithComponent("auth_handler"),
	}
}

// requestMeta extracts client metadata recorded on sessions.
// requestMeta извлекает метаданные клиента, записываемые в сессии.
func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}

// RegisterRequest represents the registration request body.
// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`  // User email / Email пользователя
	Password    string `json:"password" binding:"required"`     // User password / Пароль пользователя
	DisplayName string `json:"displayName" binding:"max=255"`   // Display name / Отображаемое имя
}

// Register handles POST /api/v1/auth/register endpoint.
// Register обрабатывает POST /api/v1/auth/register эндпоинт.
// @Summary Register a new account
// @Description Create an account and receive the first token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} port.AuthResult
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// LoginRequest represents the login request body.
// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // User email / Email пользователя
	Password string `json:"password" binding:"required"`    // User password / Пароль пользователя
}

// Login handles POST /api/v1/auth/login endpoint.
// Login обрабатывает POST /api/v1/auth/login эндпоинт.
// @Summary User login
// @Description Authenticate with email and password and receive a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} port.AuthResult
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 429 {object} response.ErrorEnvelope
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, requestMeta(c))
	if err != nil {
		middleware.RecordAuthAttempt(false)
		h.logger.WithContext(c.Request.Context()).LogAuthAttempt(req.Email, false, err.Error())
		response.Error(c, err)
		return
	}

	middleware.RecordAuthAttempt(true)
	h.logger.WithContext(c.Request.Context()).LogAuthAttempt(req.Email, true, "")
	response.Success(c, result)
}

// RefreshRequest represents the token refresh request body.
// RefreshRequest представляет тело запроса на обновление токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"` // Refresh token / Refresh токен
}

// Refresh handles POST /api/v1/auth/refresh endpoint.
// Refresh обрабатывает POST /api/v1/auth/refresh эндпоинт.
// @Summary Rotate tokens
// @Description Redeem a refresh token for a new token pair; the old token is invalidated
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} port.AuthResult
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	result, err := h.authService.RefreshTokens(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		middleware.RecordTokenRefresh(false)
		response.Error(c, err)
		return
	}

	middleware.RecordTokenRefresh(true)
	response.Success(c, result)
}

// LogoutRequest represents the logout request body.
// LogoutRequest представляет тело запроса на выход.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"` // Refresh token to invalidate / Refresh токен для инвалидации
}

// Logout handles POST /api/v1/auth/logout endpoint.
// Logout обрабатывает POST /api/v1/auth/logout эндпоинт.
// @Summary Logout
// @Description Invalidate the session holding the refresh token; idempotent
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Refresh token to invalidate"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorEnvelope
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	// Always a plain success: an unknown token logs out just as well.
	// Всегда простой успех: неизвестный токен разлогинивает точно так же.
	response.Success(c, gin.H{"message": "logged out"})
}

// Me handles GET /api/v1/auth/me endpoint.
// Me обрабатывает GET /api/v1/auth/me эндпоинт.
// @Summary Current user
// @Description Get the public profile of the authenticated user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.PublicUser
// @Failure 401 {object} response.ErrorEnvelope
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}
