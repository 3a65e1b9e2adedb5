package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
)

// SessionRepository implements port.SessionRepository using PostgreSQL.
// SessionRepository реализует интерфейс port.SessionRepository с использованием PostgreSQL.
//
// The sessions table is the single source of truth for refresh tokens;
// rotation relies on the Tx variants running inside one transaction.
// Таблица сессий — единственный источник истины для refresh токенов;
// ротация опирается на Tx варианты, выполняемые в одной транзакции.
type SessionRepository struct {
	db *gorm.DB // Database connection / Подключение к базе данных
}

// NewSessionRepository creates a new SessionRepository instance.
// NewSessionRepository создаёт новый экземпляр SessionRepository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
// Create сохраняет новую сессию.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.CreateTx(ctx, r.db, session)
}

// CreateTx persists a new session within an existing transaction.
// CreateTx сохраняет новую сессию в рамках существующей транзакции.
func (r *SessionRepository) CreateTx(ctx context.Context, tx *gorm.DB, session *domain.Session) error {
	if err := tx.WithContext(ctx).Create(session).Error; err != nil {
		return apperror.Internal("failed to create session", err)
	}
	return nil
}

// FindByToken retrieves a session by its refresh token.
// FindByToken получает сессию по её refresh токену.
func (r *SessionRepository) FindByToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("session", "refresh token")
		}
		return nil, apperror.Internal("failed to find session", err)
	}
	return &session, nil
}

// DeleteByToken removes the session holding the given refresh token.
// DeleteByToken удаляет сессию с указанным refresh токеном.
// Deleting an absent token is not an error.
// Удаление отсутствующего токена не является ошибкой.
func (r *SessionRepository) DeleteByToken(ctx context.Context, refreshToken string) error {
	_, err := r.DeleteByTokenTx(ctx, r.db, refreshToken)
	return err
}

// DeleteByTokenTx removes a session within an existing transaction and
// reports how many rows were removed.
// DeleteByTokenTx удаляет сессию в рамках существующей транзакции и
// сообщает, сколько строк было удалено.
//
// The count is what makes rotation single-use: under concurrent
// redemption only one transaction deletes the row, every other one
// sees zero rows and must abort.
// Счётчик и делает ротацию одноразовой: при конкурентном погашении
// только одна транзакция удаляет строку, все остальные видят ноль
// строк и должны прерваться.
func (r *SessionRepository) DeleteByTokenTx(ctx context.Context, tx *gorm.DB, refreshToken string) (int64, error) {
	result := tx.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		Delete(&domain.Session{})

	if result.Error != nil {
		return 0, apperror.Internal("failed to delete session", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByUser removes all sessions belonging to a user.
// DeleteByUser удаляет все сессии, принадлежащие пользователю.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Session{})

	if result.Error != nil {
		return apperror.Internal("failed to delete user sessions", result.Error)
	}
	return nil
}

// DeleteExpired removes all sessions whose expiry lies before the cutoff.
// DeleteExpired удаляет все сессии, срок которых истёк до указанного момента.
// Returns the number of rows removed.
// Возвращает количество удалённых строк.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&domain.Session{})

	if result.Error != nil {
		return 0, apperror.Internal("failed to delete expired sessions", result.Error)
	}
	return result.RowsAffected, nil
}
