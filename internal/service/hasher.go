package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/planwisehq/planwise/internal/pkg/apperror"
)

// BcryptHasher implements port.PasswordHasher using bcrypt.
// BcryptHasher реализует port.PasswordHasher с помощью bcrypt.
//
// The salt is embedded in the hash, so equal passwords produce
// different hashes and no separate salt storage is needed.
// Соль встроена в хэш, поэтому одинаковые пароли дают разные
// хэши и отдельное хранение соли не требуется.
type BcryptHasher struct {
	cost int // Work factor / Фактор стоимости
}

// NewBcryptHasher creates a new BcryptHasher with the given cost.
// NewBcryptHasher создаёт новый BcryptHasher с заданной стоимостью.
// A cost of 0 falls back to the bcrypt default.
// Стоимость 0 означает значение bcrypt по умолчанию.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the plaintext.
// Hash создаёт солёный bcrypt хэш открытого текста.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", apperror.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the hash.
// Verify сообщает, соответствует ли открытый текст хэшу.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
