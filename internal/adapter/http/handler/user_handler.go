package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planwisehq/planwise/internal/adapter/http/middleware"
	"github.com/planwisehq/planwise/internal/adapter/http/response"
	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
)

// UserHandler handles user management HTTP requests.
// UserHandler обрабатывает HTTP запросы управления пользователями.
//
// All mutations run under the role hierarchy: the acting user must hold
// at least the admin role and may only touch users strictly below it.
// Все мутации выполняются с учётом иерархии ролей: действующий пользователь
// должен иметь как минимум роль admin и может менять только пользователей
// строго ниже себя.
type UserHandler struct {
	userService port.UserService // User management service / Сервис управления пользователями
	logger      *logger.Logger   // Logger instance / Экземпляр логгера
}

// NewUserHandler creates a new UserHandler instance.
// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(userService port.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      log.WithComponent("user_handler"),
	}
}

// parseUserID extracts and validates the :id path parameter.
// parseUserID извлекает и валидирует параметр пути :id.
func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}

// ListUsers handles GET /api/v1/admin/users endpoint.
// ListUsers обрабатывает GET /api/v1/admin/users эндпоинт.
// @Summary List users
// @Description Get a paginated list of users with optional filtering
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Items per page (max 100)"
// @Param status query string false "Filter: active, deactivated, all"
// @Param search query string false "Search by email or display name"
// @Success 200 {object} response.ListEnvelope{items=[]domain.PublicUser}
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Router /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	filter := port.UserFilter{
		Status:   c.DefaultQuery("status", "all"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, users, total, filter.Page, filter.PageSize)
}

// GetUser handles GET /api/v1/admin/users/:id endpoint.
// GetUser обрабатывает GET /api/v1/admin/users/:id эндпоинт.
// @Summary Get user by ID
// @Description Get a single user's public profile
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.PublicUser
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/v1/admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// UpdateRoleRequest represents the role change request body.
// UpdateRoleRequest представляет тело запроса на смену роли.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"` // New role name / Имя новой роли
}

// UpdateRole handles PATCH /api/v1/admin/users/:id/role endpoint.
// UpdateRole обрабатывает PATCH /api/v1/admin/users/:id/role эндпоинт.
// @Summary Change a user's role
// @Description Assign a new role to a user below the caller's level
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} domain.PublicUser
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/v1/admin/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body")
		return
	}

	newRole, err := domain.ParseRole(req.Role)
	if err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.userService.UpdateUserRole(c.Request.Context(), actor, id, newRole)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.WithContext(c.Request.Context()).Info("role updated",
		"target_id", id, "new_role", newRole.String(), "actor_id", actor.ID)
	response.Success(c, user)
}

// Deactivate handles POST /api/v1/admin/users/:id/deactivate endpoint.
// Deactivate обрабатывает POST /api/v1/admin/users/:id/deactivate эндпоинт.
// @Summary Deactivate a user
// @Description Deactivate a user's account and revoke all their sessions
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.PublicUser
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/v1/admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.userService.DeactivateUser(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.WithContext(c.Request.Context()).Info("user deactivated",
		"target_id", id, "actor_id", actor.ID)
	response.Success(c, user)
}
