package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/pkg/validator"
	"github.com/planwisehq/planwise/internal/port"
)

// AuthService implements port.AuthService interface.
// AuthService реализует интерфейс port.AuthService.
//
// Orchestrates registration, login, refresh-token rotation, and logout
// over the user and session repositories.
// Координирует регистрацию, вход, ротацию refresh токенов и выход
// поверх репозиториев пользователей и сессий.
type AuthService struct {
	userRepo         port.UserRepository    // User repository / Репозиторий пользователей
	sessionRepo      port.SessionRepository // Session repository / Репозиторий сессий
	txManager        port.Transaction       // Transaction manager for rotation / Менеджер транзакций для ротации
	tokens           port.TokenService      // Token minting and verification / Выпуск и проверка токенов
	hasher           port.PasswordHasher    // Password hashing / Хэширование паролей
	rateLimitCache   port.RateLimitCache    // Failed login attempt counters / Счётчики неудачных попыток входа
	refreshTTL       time.Duration          // Refresh token time-to-live / Время жизни refresh токена
	maxLoginAttempts int                    // Max failed attempts before lockout / Макс. неудачных попыток до блокировки
	lockoutDuration  time.Duration          // Duration of login lockout / Длительность блокировки входа
	logger           *logger.Logger         // Logger instance / Экземпляр логгера
}

// AuthServiceConfig holds configuration for AuthService.
// AuthServiceConfig содержит конфигурацию для AuthService.
type AuthServiceConfig struct {
	RefreshTTL       time.Duration // Refresh token TTL / TTL refresh токена
	MaxLoginAttempts int           // Max failed login attempts before lockout / Макс. неудачных попыток до блокировки
	LockoutDuration  time.Duration // Duration of login lockout / Длительность блокировки входа
}

// NewAuthService creates a new AuthService instance.
// NewAuthService создаёт новый экземпляр AuthService.
func NewAuthService(
	userRepo port.UserRepository,
	sessionRepo port.SessionRepository,
	txManager port.Transaction,
	tokens port.TokenService,
	hasher port.PasswordHasher,
	rateLimitCache port.RateLimitCache,
	config AuthServiceConfig,
	log *logger.Logger,
) *AuthService {
	refreshTTL := config.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour // 7 days / 7 дней
	}
	maxLoginAttempts := config.MaxLoginAttempts
	if maxLoginAttempts == 0 {
		maxLoginAttempts = 5 // Default 5 attempts / По умолчанию 5 попыток
	}
	lockoutDuration := config.LockoutDuration
	if lockoutDuration == 0 {
		lockoutDuration = 15 * time.Minute // Default 15 minutes / По умолчанию 15 минут
	}

	return &AuthService{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		txManager:        txManager,
		tokens:           tokens,
		hasher:           hasher,
		rateLimitCache:   rateLimitCache,
		refreshTTL:       refreshTTL,
		maxLoginAttempts: maxLoginAttempts,
		lockoutDuration:  lockoutDuration,
		logger:           log.WithComponent("auth_service"),
	}
}

// Register creates a new account and issues its first token pair.
// Register создаёт новый аккаунт и выпускает его первую пару токенов.
//
// The very first user of an empty system becomes the owner; everyone
// else starts as a viewer. A duplicate email is a conflict regardless
// of whether it is caught by the pre-check or by the unique index.
// Самый первый пользователь пустой системы становится owner; все
// остальные начинают как viewer. Дублирующий email — конфликт вне
// зависимости от того, перехвачен он предпроверкой или уникальным индексом.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string, meta domain.RequestMeta) (*port.AuthResult, error) {
	log := s.logger.WithContext(ctx)
	email = normalizeEmail(email)

	if result := validator.ValidatePasswordDefault(password); !result.Valid {
		return nil, apperror.Validation(strings.Join(result.Errors, "; "))
	}

	// Cheap pre-check; the unique index remains the authority under races.
	// Дешёвая предпроверка; при гонках авторитетом остаётся уникальный индекс.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		log.LogAuthAttempt(email, false, "registration with existing email")
		return nil, apperror.Conflict("email is already registered")
	} else if !apperror.Is(err, apperror.CodeNotFound) {
		return nil, err
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		log.Error("failed to count users", "error", err)
		return nil, apperror.Internal("failed to register user", err)
	}
	role := domain.RoleViewer
	if total == 0 {
		role = domain.RoleOwner
		log.Info("bootstrapping first user as owner", "email", email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent registrations race past the pre-check; the loser
		// lands here with a unique violation.
		// Две конкурентные регистрации проскакивают предпроверку; проигравшая
		// оказывается здесь с нарушением уникальности.
		if apperror.Is(err, apperror.CodeConflict) {
			log.LogAuthAttempt(email, false, "registration race on existing email")
			return nil, apperror.Conflict("email is already registered")
		}
		log.Error("failed to create user", "email", email, "error", err)
		return nil, err
	}

	result, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		log.Error("failed to issue tokens after registration", "user_id", user.ID, "error", err)
		return nil, err
	}

	log.Info("user registered", "user_id", user.ID, "role", user.Role.String())
	return result, nil
}

// Login authenticates a user with email and password.
// Login аутентифицирует пользователя по email и паролю.
//
// An unknown email and a wrong password are indistinguishable to the
// caller. A deactivated account is reported as such, but only after the
// password verified.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
// О деактивированном аккаунте сообщается как таковом, но только после
// подтверждения пароля.
func (s *AuthService) Login(ctx context.Context, email, password string, meta domain.RequestMeta) (*port.AuthResult, error) {
	log := s.logger.WithContext(ctx)
	email = normalizeEmail(email)

	lockoutKey := s.lockoutKey(email)
	if locked, lockErr := s.isLockedOut(ctx, lockoutKey); lockErr != nil {
		log.Warn("failed to check login lockout", "email", email, "error", lockErr)
	} else if locked {
		log.LogAuthAttempt(email, false, "locked out after too many failed attempts")
		return nil, apperror.TooManyRequests("too many failed login attempts, try again later")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			// Count attempts for unknown emails too, to slow enumeration.
			// Считаем попытки и для неизвестных email, чтобы замедлить перебор.
			s.recordFailedAttempt(ctx, lockoutKey, email)
			log.LogAuthAttempt(email, false, "user not found")
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailedAttempt(ctx, lockoutKey, email)
		log.LogAuthAttempt(email, false, "invalid password")
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		log.LogAuthAttempt(email, false, "account deactivated")
		return nil, apperror.Deactivated()
	}

	if resetErr := s.rateLimitCache.Reset(ctx, lockoutKey); resetErr != nil {
		log.Warn("failed to reset login attempts counter", "email", email, "error", resetErr)
	}

	result, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		log.Error("failed to issue tokens on login", "user_id", user.ID, "error", err)
		return nil, err
	}

	log.LogAuthAttempt(email, true, "login successful")
	return result, nil
}

// RefreshTokens redeems a refresh token for a new token pair.
// RefreshTokens обменивает refresh токен на новую пару токенов.
//
// Rotation is atomic: the old session row is deleted and the new one
// inserted in a single transaction. Concurrent redemptions of the same
// token produce exactly one winner; the rest see an invalid token.
// Ротация атомарна: старая строка сессии удаляется и новая вставляется
// в одной транзакции. Конкурентные погашения одного токена дают ровно
// одного победителя; остальные видят невалидный токен.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string, meta domain.RequestMeta) (*port.AuthResult, error) {
	log := s.logger.WithContext(ctx)

	session, err := s.sessionRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			return nil, apperror.Unauthorized("invalid or expired refresh token")
		}
		return nil, err
	}

	// An expired row is treated exactly like a missing one.
	// Истёкшая строка трактуется ровно как отсутствующая.
	if time.Now().After(session.ExpiresAt) {
		if delErr := s.sessionRepo.DeleteByToken(ctx, refreshToken); delErr != nil {
			log.Warn("failed to remove expired session", "session_id", session.ID, "error", delErr)
		}
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			_ = s.sessionRepo.DeleteByToken(ctx, refreshToken)
			return nil, apperror.Unauthorized("invalid or expired refresh token")
		}
		return nil, err
	}

	if !user.IsActive {
		// Deactivation cuts off refresh; remaining sessions are dead weight.
		// Деактивация обрывает refresh; оставшиеся сессии — мёртвый груз.
		if delErr := s.sessionRepo.DeleteByUser(ctx, user.ID); delErr != nil {
			log.Warn("failed to remove sessions of deactivated user", "user_id", user.ID, "error", delErr)
		}
		return nil, apperror.Deactivated()
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		log.Error("failed to generate access token", "user_id", user.ID, "error", err)
		return nil, apperror.Internal("failed to generate tokens", err)
	}
	newRefreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		log.Error("failed to generate refresh token", "user_id", user.ID, "error", err)
		return nil, apperror.Internal("failed to generate tokens", err)
	}

	newSession := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RefreshToken: newRefreshToken,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		CreatedAt:    time.Now(),
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		deleted, err := s.sessionRepo.DeleteByTokenTx(ctx, tx, refreshToken)
		if err != nil {
			return err
		}
		if deleted == 0 {
			// A concurrent redemption consumed the token between the
			// lookup and this delete; this caller lost the race.
			// Конкурентное погашение поглотило токен между поиском и
			// этим удалением; этот вызывающий проиграл гонку.
			return apperror.Unauthorized("invalid or expired refresh token")
		}
		return s.sessionRepo.CreateTx(ctx, tx, newSession)
	})
	if err != nil {
		if apperror.Is(err, apperror.CodeUnauthorized) {
			return nil, err
		}
		log.Error("failed to rotate refresh token", "user_id", user.ID, "error", err)
		return nil, apperror.Internal("failed to rotate refresh token", err)
	}

	log.Info("tokens refreshed", "user_id", user.ID, "session_id", newSession.ID)
	return &port.AuthResult{
		User: user.Public(),
		Tokens: port.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
		},
	}, nil
}

// Logout deletes the session holding the refresh token.
// Logout удаляет сессию с данным refresh токеном.
// Unknown tokens succeed silently; logout is idempotent.
// Неизвестные токены завершаются успешно; logout идемпотентен.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	log := s.logger.WithContext(ctx)

	if err := s.sessionRepo.DeleteByToken(ctx, refreshToken); err != nil {
		log.Error("failed to delete session on logout", "error", err)
		return apperror.Internal("failed to logout", err)
	}

	log.Info("user logged out")
	return nil
}

// CurrentUser loads the public view of an authenticated user.
// CurrentUser загружает публичную проекцию аутентифицированного пользователя.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// issueTokens mints a token pair and persists the backing session.
// issueTokens выпускает пару токенов и сохраняет соответствующую сессию.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, meta domain.RequestMeta) (*port.AuthResult, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, apperror.Internal("failed to generate tokens", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, apperror.Internal("failed to generate tokens", err)
	}

	session := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		CreatedAt:    time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.Internal("failed to create session", err)
	}

	return &port.AuthResult{
		User: user.Public(),
		Tokens: port.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// lockoutKey generates a cache key for login attempt tracking.
// lockoutKey генерирует ключ кэша для отслеживания попыток входа.
func (s *AuthService) lockoutKey(email string) string {
	return "login_attempts:" + email
}

// isLockedOut checks whether too many failed attempts were recorded.
// isLockedOut проверяет, не записано ли слишком много неудачных попыток.
func (s *AuthService) isLockedOut(ctx context.Context, lockoutKey string) (bool, error) {
	count, err := s.rateLimitCache.GetCount(ctx, lockoutKey)
	if err != nil {
		return false, err
	}
	return count >= int64(s.maxLoginAttempts), nil
}

// recordFailedAttempt increments the failed login attempt counter.
// recordFailedAttempt увеличивает счётчик неудачных попыток входа.
// Best effort: a cache failure never blocks the login flow itself.
// По возможности: сбой кэша никогда не блокирует сам поток входа.
func (s *AuthService) recordFailedAttempt(ctx context.Context, lockoutKey, email string) {
	log := s.logger.WithContext(ctx)
	count, err := s.rateLimitCache.Increment(ctx, lockoutKey, s.lockoutDuration)
	if err != nil {
		log.Warn("failed to increment login attempts counter", "email", email, "error", err)
		return
	}
	if count >= int64(s.maxLoginAttempts) {
		log.Warn("login locked out after repeated failures", "email", email, "attempts", count)
	}
}

// normalizeEmail lowercases and trims an email address.
// normalizeEmail переводит email в нижний регистр и убирает пробелы.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
