// Package service contains the business logic layer of the application.
// Пакет service содержит слой бизнес-логики приложения.
//
// Services implement the business rules and orchestrate operations
// between repositories and other components.
// Сервисы реализуют бизнес-правила и координируют операции
// между репозиториями и другими компонентами.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/port"
)

// tokenIssuer is the iss claim stamped on every access token.
// tokenIssuer — claim iss, проставляемый на каждый access токен.
const tokenIssuer = "planwise-auth"

// TokenService implements port.TokenService using HMAC-SHA256 signing.
// TokenService реализует port.TokenService с подписью HMAC-SHA256.
//
// Access tokens are self-contained JWTs carrying only the user id and
// role. Refresh tokens are opaque random hex strings with no embedded
// meaning; their validity lives in the sessions table.
// Access токены — самодостаточные JWT, несущие только id пользователя и
// роль. Refresh токены — непрозрачные случайные hex строки без встроенного
// смысла; их валидность живёт в таблице сессий.
type TokenService struct {
	secret    []byte        // HMAC signing secret / Секрет подписи HMAC
	accessTTL time.Duration // Access token lifetime / Время жизни access токена
}

// NewTokenService creates a new TokenService instance.
// NewTokenService создаёт новый экземпляр TokenService.
func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute // Default 15 minutes / По умолчанию 15 минут
	}
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

// GenerateAccessToken mints a signed access token for a user id and role.
// GenerateAccessToken выпускает подписанный access токен для id пользователя и роли.
func (s *TokenService) GenerateAccessToken(userID int64, role domain.Role) (string, error) {
	now := time.Now()

	claims := port.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates a token and extracts its claims.
// VerifyAccessToken проверяет токен и извлекает его claims.
//
// Returns nil for any failure: bad signature, expired token, wrong
// signing method, or a role outside the known set. Callers see a single
// valid/invalid outcome and nothing more.
// Возвращает nil при любой ошибке: неверная подпись, истёкший токен,
// неверный метод подписи или роль вне известного набора. Вызывающие
// видят единственный исход валидно/невалидно и ничего более.
func (s *TokenService) VerifyAccessToken(tokenString string) *port.Claims {
	token, err := jwt.ParseWithClaims(tokenString, &port.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method / Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(*port.Claims)
	if !ok || !token.Valid {
		return nil
	}

	// A token minted before a role was removed must not authenticate.
	// Токен, выпущенный до удаления роли, не должен аутентифицировать.
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil
	}

	return claims
}

// GenerateRefreshToken produces a cryptographically random opaque token.
// GenerateRefreshToken создаёт криптографически случайный непрозрачный токен.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
