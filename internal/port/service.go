// Package port defines interfaces (ports) for the application's external dependencies.
// Пакет port определяет интерфейсы (порты) для внешних зависимостей приложения.
package port

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planwisehq/planwise/internal/domain"
)

// TokenPair contains both access and refresh tokens.
// TokenPair содержит пару access и refresh токенов.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims represents JWT access-token claims.
// Claims представляет claims JWT access токена.
//
// The payload carries the user id and role only — no email, no PII.
// Payload содержит только id пользователя и роль — без email, без PII.
type Claims struct {
	UserID               int64       `json:"uid"`  // User's unique ID / Уникальный ID пользователя
	Role                 domain.Role `json:"role"` // User's role / Роль пользователя
	jwt.RegisteredClaims             // Standard JWT claims / Стандартные JWT claims
}

// TokenService mints and verifies credentials.
// TokenService выпускает и проверяет учётные данные.
//
// Access tokens are short-lived signed JWTs; refresh tokens are opaque
// random strings whose semantics live entirely in the session row.
// Access токены — короткоживущие подписанные JWT; refresh токены —
// непрозрачные случайные строки, семантика которых целиком живёт в строке сессии.
type TokenService interface {
	// GenerateAccessToken mints a signed access token for a user id and role.
	// GenerateAccessToken выпускает подписанный access токен для id пользователя и роли.
	GenerateAccessToken(userID int64, role domain.Role) (string, error)

	// VerifyAccessToken validates a token and extracts its claims.
	// VerifyAccessToken проверяет токен и извлекает его claims.
	// Returns nil claims for ANY failure — signature, expiry, or malformed
	// payload — so callers cannot leak which check rejected the token.
	// Возвращает nil claims при ЛЮБОЙ ошибке — подпись, истечение или
	// повреждённый payload — чтобы вызывающие не раскрывали причину отказа.
	VerifyAccessToken(token string) *Claims

	// GenerateRefreshToken produces a cryptographically random opaque token.
	// GenerateRefreshToken создаёт криптографически случайный непрозрачный токен.
	GenerateRefreshToken() (string, error)
}

// PasswordHasher hashes and verifies credentials.
// PasswordHasher хэширует и проверяет учётные данные.
type PasswordHasher interface {
	// Hash produces a salted adaptive hash of the plaintext.
	// Hash создаёт солёный адаптивный хэш открытого текста.
	Hash(plaintext string) (string, error)

	// Verify reports whether the plaintext matches the hash.
	// Verify сообщает, соответствует ли открытый текст хэшу.
	// A mismatch is not an error; it simply returns false.
	// Несовпадение не является ошибкой; просто возвращается false.
	Verify(plaintext, hash string) bool
}

// AuthResult is the outcome of a successful authentication flow.
// AuthResult — результат успешного потока аутентификации.
type AuthResult struct {
	User   domain.PublicUser `json:"user"`   // Public user view / Публичная проекция пользователя
	Tokens TokenPair         `json:"tokens"` // Token pair / Пара токенов
}

// AuthService defines the interface for authentication operations.
// AuthService определяет интерфейс для операций аутентификации.
type AuthService interface {
	// Register creates a new account and issues its first token pair.
	// Register создаёт новый аккаунт и выпускает его первую пару токенов.
	// The very first user in an empty system receives the owner role;
	// every later registration receives viewer.
	// Самый первый пользователь в пустой системе получает роль owner;
	// каждая последующая регистрация получает viewer.
	Register(ctx context.Context, email, password, displayName string, meta domain.RequestMeta) (*AuthResult, error)

	// Login authenticates a user with email and password.
	// Login аутентифицирует пользователя по email и паролю.
	Login(ctx context.Context, email, password string, meta domain.RequestMeta) (*AuthResult, error)

	// RefreshTokens redeems a refresh token for a new token pair (rotation).
	// RefreshTokens обменивает refresh токен на новую пару токенов (ротация).
	// The redeemed token is invalidated atomically with the replacement.
	// Погашенный токен инвалидируется атомарно с заменой.
	RefreshTokens(ctx context.Context, refreshToken string, meta domain.RequestMeta) (*AuthResult, error)

	// Logout deletes the session holding the refresh token.
	// Logout удаляет сессию с данным refresh токеном.
	// Idempotent: an unknown or already-consumed token still succeeds.
	// Идемпотентно: неизвестный или уже погашенный токен всё равно успешен.
	Logout(ctx context.Context, refreshToken string) error

	// CurrentUser loads the public view of an authenticated user.
	// CurrentUser загружает публичную проекцию аутентифицированного пользователя.
	CurrentUser(ctx context.Context, userID int64) (*domain.PublicUser, error)
}

// Actor identifies the authenticated user performing an admin operation.
// Actor идентифицирует аутентифицированного пользователя, выполняющего админ-операцию.
type Actor struct {
	ID   int64       // Acting user's ID / ID действующего пользователя
	Role domain.Role // Acting user's role / Роль действующего пользователя
}

// UserService defines the interface for user management operations.
// UserService определяет интерфейс для операций управления пользователями.
//
// Every mutation enforces the role hierarchy: no self-modification,
// no touching owners, no acting at or above the actor's own level.
// Каждая мутация применяет иерархию ролей: без само-модификации,
// без изменения владельцев, без действий на уровне актора или выше.
type UserService interface {
	// GetUserByID retrieves a user's public view by id.
	// GetUserByID получает публичную проекцию пользователя по id.
	GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error)

	// ListUsers retrieves a paginated list of users.
	// ListUsers получает пагинированный список пользователей.
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.PublicUser, int64, error)

	// UpdateUserRole changes a target user's role under hierarchy constraints.
	// UpdateUserRole меняет роль целевого пользователя с учётом ограничений иерархии.
	UpdateUserRole(ctx context.Context, actor Actor, targetID int64, newRole domain.Role) (*domain.PublicUser, error)

	// DeactivateUser sets a target user's IsActive to false under the same constraints.
	// DeactivateUser устанавливает IsActive целевого пользователя в false с теми же ограничениями.
	DeactivateUser(ctx context.Context, actor Actor, targetID int64) (*domain.PublicUser, error)
}
