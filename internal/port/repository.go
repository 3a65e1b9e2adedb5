// Package port defines interfaces (ports) for the application's external dependencies.
// Пакет port определяет интерфейсы (порты) для внешних зависимостей приложения.
//
// This package follows the Hexagonal Architecture (Ports and Adapters) pattern,
// where ports define the contracts that adapters must implement.
// Этот пакет следует паттерну Гексагональной Архитектуры (Порты и Адаптеры),
// где порты определяют контракты, которые должны реализовывать адаптеры.
package port

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/domain"
)

// UserFilter defines filtering options for user queries.
// UserFilter определяет параметры фильтрации для запросов пользователей.
type UserFilter struct {
	Status   string // "active", "deactivated", "all" / "active", "deactivated", "all"
	Search   string // Search by email or display name / Поиск по email или имени
	Page     int    // Page number (1-based) / Номер страницы (с 1)
	PageSize int    // Items per page / Элементов на странице
}

// UserRepository defines the interface for user data access operations.
// UserRepository определяет интерфейс для операций доступа к данным пользователей.
//
// This interface abstracts the data storage layer, allowing different
// implementations to be used interchangeably.
// Этот интерфейс абстрагирует слой хранения данных, позволяя использовать
// различные реализации взаимозаменяемо.
type UserRepository interface {
	// Create creates a new user in the database.
	// Create создаёт нового пользователя в базе данных.
	// A unique-key violation on email is returned as a conflict error.
	// Нарушение уникального ключа по email возвращается как ошибка конфликта.
	Create(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by their unique identifier.
	// FindByID получает пользователя по уникальному идентификатору.
	FindByID(ctx context.Context, id int64) (*domain.User, error)

	// FindByEmail retrieves a user by their email address.
	// FindByEmail получает пользователя по email адресу.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user's information.
	// Update обновляет информацию существующего пользователя.
	Update(ctx context.Context, user *domain.User) error

	// Count returns the total number of user records.
	// Count возвращает общее количество записей пользователей.
	// Used once per registration for the first-user bootstrap rule.
	// Используется один раз при регистрации для правила первого пользователя.
	Count(ctx context.Context) (int64, error)

	// List retrieves users with filtering and pagination support.
	// List получает пользователей с поддержкой фильтрации и пагинации.
	// Returns the list of users, total count, and any error.
	// Возвращает список пользователей, общее количество и ошибку.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
}

// SessionRepository defines the interface for refresh-token session storage.
// SessionRepository определяет интерфейс для хранения refresh-token сессий.
//
// A session row is the single source of truth for refresh-token validity:
// the token is redeemable while the row exists and has not expired.
// Строка сессии — единственный источник истины для валидности refresh токена:
// токен можно погасить, пока строка существует и не истекла.
type SessionRepository interface {
	// Create persists a new session.
	// Create сохраняет новую сессию.
	Create(ctx context.Context, session *domain.Session) error

	// CreateTx persists a new session within an existing transaction.
	// CreateTx сохраняет новую сессию в рамках существующей транзакции.
	CreateTx(ctx context.Context, tx *gorm.DB, session *domain.Session) error

	// FindByToken retrieves a session by its refresh token.
	// FindByToken получает сессию по её refresh токену.
	FindByToken(ctx context.Context, refreshToken string) (*domain.Session, error)

	// DeleteByToken removes the session holding the given refresh token.
	// DeleteByToken удаляет сессию с указанным refresh токеном.
	// Deleting an absent token is not an error.
	// Удаление отсутствующего токена не является ошибкой.
	DeleteByToken(ctx context.Context, refreshToken string) error

	// DeleteByTokenTx removes a session within an existing transaction and
	// reports how many rows were removed.
	// DeleteByTokenTx удаляет сессию в рамках существующей транзакции и
	// сообщает, сколько строк было удалено.
	// Rotation relies on the count: zero rows means a concurrent redemption
	// already consumed the token.
	// Ротация опирается на счётчик: ноль строк означает, что конкурентное
	// погашение уже поглотило токен.
	DeleteByTokenTx(ctx context.Context, tx *gorm.DB, refreshToken string) (int64, error)

	// DeleteByUser removes all sessions belonging to a user.
	// DeleteByUser удаляет все сессии, принадлежащие пользователю.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteExpired removes all sessions whose expiry lies before the cutoff.
	// DeleteExpired удаляет все сессии, срок которых истёк до указанного момента.
	// Returns the number of rows removed.
	// Возвращает количество удалённых строк.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Transaction provides database transaction support.
// Transaction обеспечивает поддержку транзакций базы данных.
//
// Refresh-token rotation deletes the redeemed session and inserts its
// replacement as one atomic pair; a crash can never leave the user with
// neither session.
// Ротация refresh токена удаляет погашенную сессию и вставляет её замену
// как одну атомарную пару; сбой никогда не оставит пользователя без сессии.
type Transaction interface {
	// WithTransaction executes a function within a transaction.
	// WithTransaction выполняет функцию в рамках транзакции.
	// Automatically commits on success or rolls back on error.
	// Автоматически фиксирует при успехе или откатывает при ошибке.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
