// Package postgres provides PostgreSQL-based repository implementations.
// Пакет postgres предоставляет реализации репозиториев на базе PostgreSQL.
package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/pkg/apperror"
)

// TransactionManager implements port.Transaction interface using GORM.
// TransactionManager реализует интерфейс port.Transaction с использованием GORM.
//
// Refresh-token rotation is its main consumer: delete-old plus
// insert-new must commit or roll back as one unit.
// Основной потребитель — ротация refresh токенов: удаление старой и
// вставка новой сессии фиксируются или откатываются как единое целое.
type TransactionManager struct {
	db *gorm.DB // Database connection / Подключение к базе данных
}

// NewTransactionManager creates a new TransactionManager instance.
// NewTransactionManager создаёт новый экземпляр TransactionManager.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction executes a function within a transaction.
// WithTransaction выполняет функцию в рамках транзакции.
// Automatically commits on success or rolls back on error/panic.
// Автоматически фиксирует при успехе или откатывает при ошибке/панике.
//
// Example usage / Пример использования:
//
//	err := tm.WithTransaction(ctx, func(tx *gorm.DB) error {
//	    deleted, err := sessionRepo.DeleteByTokenTx(ctx, tx, oldToken)
//	    if err != nil {
//	        return err
//	    }
//	    if deleted == 0 {
//	        return apperror.Unauthorized("invalid or expired refresh token")
//	    }
//	    return sessionRepo.CreateTx(ctx, tx, newSession)
//	})
func (t *TransactionManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.Internal("failed to begin transaction", tx.Error)
	}

	// Ensure rollback on panic / Гарантируем откат при панике
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r) // Re-throw panic / Повторно выбрасываем панику
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return apperror.Internal("failed to rollback transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperror.Internal("failed to commit transaction", err)
	}
	return nil
}

// DB returns the underlying database connection.
// DB возвращает базовое подключение к базе данных.
func (t *TransactionManager) DB() *gorm.DB {
	return t.db
}
