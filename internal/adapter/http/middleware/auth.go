package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planwisehq/planwise/internal/adapter/http/response"
	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
)

// Context keys for authenticated user data.
// Ключи контекста для данных аутентифицированного пользователя.
const (
	// UserIDKey is the Gin context key holding the authenticated user's ID.
	// UserIDKey — ключ контекста Gin с ID аутентифицированного пользователя.
	UserIDKey = "user_id"

	// UserRoleKey is the Gin context key holding the authenticated user's role.
	// UserRoleKey — ключ контекста Gin с ролью аутентифицированного пользователя.
	UserRoleKey = "user_role"

	// UserEmailKey is the Gin context key holding the authenticated user's email.
	// UserEmailKey — ключ контекста Gin с email аутентифицированного пользователя.
	UserEmailKey = "user_email"
)

// publicPathPrefixes lists route prefixes reachable without a token.
// publicPathPrefixes перечисляет префиксы маршрутов, доступные без токена.
//
// Everything else is private by default: a route is protected unless it
// is explicitly listed here, so forgetting to guard a new endpoint fails
// closed rather than open.
// Всё остальное приватно по умолчанию: маршрут защищён, если он явно
// не перечислен здесь, поэтому забытая защита нового эндпоинта
// закрывает доступ, а не открывает его.
var publicPathPrefixes = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/auth/logout",
	"/health",
	"/metrics",
	"/swagger",
}

// isPublicPath reports whether the request path is on the allow-list.
// isPublicPath сообщает, находится ли путь запроса в списке разрешённых.
func isPublicPath(path string) bool {
	for _, prefix := range publicPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractBearerToken pulls the token out of an Authorization header.
// extractBearerToken извлекает токен из заголовка Authorization.
// Returns empty string for a missing or malformed header.
// Возвращает пустую строку для отсутствующего или искажённого заголовка.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authenticate verifies the bearer token, loads the account behind it and
// stores the caller's identity in the Gin context.
// authenticate проверяет bearer токен, загружает стоящий за ним аккаунт и
// сохраняет личность вызывающего в контексте Gin.
//
// A structurally valid token whose account is gone or deactivated is
// rejected with 403, not 401: the credential checked out, the account
// is no longer eligible.
// Структурно валидный токен, чей аккаунт исчез или деактивирован,
// отклоняется с 403, а не 401: учётные данные верны, аккаунт
// больше не пригоден.
func authenticate(c *gin.Context, tokens port.TokenService, auth port.AuthService) bool {
	tokenString := extractBearerToken(c)
	if tokenString == "" {
		response.Error(c, apperror.Unauthorized("missing authorization header"))
		c.Abort()
		return false
	}

	claims := tokens.VerifyAccessToken(tokenString)
	if claims == nil {
		// A single generic rejection for every token failure mode.
		// Единый общий отказ для любого режима сбоя токена.
		response.Error(c, apperror.Unauthorized("invalid or expired token"))
		c.Abort()
		return false
	}

	user, err := auth.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			response.Error(c, apperror.Forbidden("account no longer exists"))
		} else {
			response.Error(c, err)
		}
		c.Abort()
		return false
	}
	if !user.IsActive {
		response.Error(c, apperror.Deactivated())
		c.Abort()
		return false
	}

	// The stored role wins over the token claim, so a demotion takes
	// effect before the access token expires.
	// Сохранённая роль важнее claim'а токена, поэтому понижение
	// вступает в силу до истечения access токена.
	c.Set(UserIDKey, user.ID)
	c.Set(UserRoleKey, user.Role)
	c.Set(UserEmailKey, user.Email)

	// Propagate the user id for log correlation.
	// Пробрасываем id пользователя для корреляции логов.
	ctx := logger.WithUserIDContext(c.Request.Context(), user.ID)
	c.Request = c.Request.WithContext(ctx)

	return true
}

// AuthMiddleware returns a middleware that requires a valid access token
// backed by an active account.
// AuthMiddleware возвращает middleware, требующий валидный access токен,
// за которым стоит активный аккаунт.
//
// On success the user's ID, role and email are stored in the Gin context
// for handlers and RequireRole checks downstream.
// При успехе ID, роль и email пользователя сохраняются в контексте Gin для
// обработчиков и последующих проверок RequireRole.
func AuthMiddleware(tokens port.TokenService, auth port.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens, auth) {
			return
		}
		c.Next()
	}
}

// GlobalAuthGuard returns a middleware protecting every route by default.
// GlobalAuthGuard возвращает middleware, защищающий каждый маршрут по умолчанию.
//
// Requests to allow-listed public paths pass through untouched; all
// other requests must carry a valid bearer token.
// Запросы к публичным путям из списка проходят без изменений; все
// остальные запросы должны нести валидный bearer токен.
func GlobalAuthGuard(tokens port.TokenService, auth port.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if !authenticate(c, tokens, auth) {
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that enforces a minimum role.
// RequireRole возвращает middleware, требующий минимальную роль.
//
// Must run after AuthMiddleware or GlobalAuthGuard. A caller whose role
// does not reach minRole receives 403, never 401: they are known, just
// not privileged enough.
// Должен выполняться после AuthMiddleware или GlobalAuthGuard. Вызывающий,
// чья роль не достигает minRole, получает 403, а не 401: он известен,
// просто недостаточно привилегирован.
func RequireRole(minRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Error(c, apperror.Unauthorized(""))
			c.Abort()
			return
		}

		if !role.AtLeast(minRole) {
			response.Error(c, apperror.Forbidden(""))
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the Gin context.
// GetUserID получает ID аутентифицированного пользователя из контекста Gin.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetUserRole retrieves the authenticated user's role from the Gin context.
// GetUserRole получает роль аутентифицированного пользователя из контекста Gin.
func GetUserRole(c *gin.Context) (domain.Role, bool) {
	v, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(domain.Role)
	return role, ok
}

// GetUserEmail retrieves the authenticated user's email from the Gin context.
// GetUserEmail получает email аутентифицированного пользователя из контекста Gin.
func GetUserEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// GetActor builds the acting user's identity from the Gin context.
// GetActor строит личность действующего пользователя из контекста Gin.
// Used by admin handlers to pass the caller into hierarchy checks.
// Используется админ-обработчиками для передачи вызывающего в проверки иерархии.
func GetActor(c *gin.Context) (port.Actor, bool) {
	id, okID := GetUserID(c)
	role, okRole := GetUserRole(c)
	if !okID || !okRole {
		return port.Actor{}, false
	}
	return port.Actor{ID: id, Role: role}, true
}
