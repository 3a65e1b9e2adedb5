// Package port defines interfaces (ports) for the application's external dependencies.
// Пакет port определяет интерфейсы (порты) для внешних зависимостей приложения.
package port

import (
	"context"
	"time"
)

// RateLimitCache defines the interface for counting failed login attempts.
// RateLimitCache определяет интерфейс для подсчёта неудачных попыток входа.
//
// Backed by Redis atomic counters with expiry; counts are best-effort —
// a cache failure degrades the lockout, never the login itself.
// Реализуется атомарными счётчиками Redis с истечением; подсчёт выполняется
// по возможности — сбой кэша ослабляет блокировку, но не сам вход.
type RateLimitCache interface {
	// Increment increments a counter and returns the new value.
	// Increment увеличивает счётчик и возвращает новое значение.
	// Sets the expiration when the key is created.
	// Устанавливает время истечения при создании ключа.
	Increment(ctx context.Context, key string, expiration time.Duration) (int64, error)

	// GetCount retrieves the current counter value (0 for an absent key).
	// GetCount получает текущее значение счётчика (0 для отсутствующего ключа).
	GetCount(ctx context.Context, key string) (int64, error)

	// Reset removes the counter.
	// Reset удаляет счётчик.
	Reset(ctx context.Context, key string) error
}
