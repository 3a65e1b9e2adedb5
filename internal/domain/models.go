// Package domain contains core business entities and value objects.
// Пакет domain содержит основные бизнес-сущности и объекты-значения.
package domain

import "time"

// User represents a registered account in the planning workspace.
// User представляет зарегистрированный аккаунт в рабочем пространстве планирования.
//
// Fields:
//   - ID: Unique identifier (primary key)
//   - Email: User's email address (unique, used for authentication)
//   - DisplayName: Name shown in the planning UI
//   - PasswordHash: Bcrypt hash of the user's password, never serialized
//   - Role: Privilege level in the owner > admin > editor > viewer hierarchy
//   - IsActive: Deactivated users cannot obtain new tokens
//   - CreatedAt: Timestamp when the user was created
//   - UpdatedAt: Timestamp when the user was last updated
//
// Поля:
//   - ID: Уникальный идентификатор (первичный ключ)
//   - Email: Email адрес пользователя (уникальный, используется для аутентификации)
//   - DisplayName: Имя, отображаемое в интерфейсе планирования
//   - PasswordHash: Bcrypt хэш пароля пользователя, никогда не сериализуется
//   - Role: Уровень привилегий в иерархии owner > admin > editor > viewer
//   - IsActive: Деактивированные пользователи не могут получать новые токены
//   - CreatedAt: Временная метка создания пользователя
//   - UpdatedAt: Временная метка последнего обновления
type User struct {
	ID           int64     `gorm:"primaryKey"`                       // Primary key / Первичный ключ
	Email        string    `gorm:"uniqueIndex;not null"`             // Unique email / Уникальный email
	DisplayName  string    `gorm:"type:varchar(255)"`                // Display name / Отображаемое имя
	PasswordHash string    `gorm:"not null" json:"-"`                // Bcrypt hash / Bcrypt хэш
	Role         Role      `gorm:"type:varchar(20);default:'viewer'"` // Role in hierarchy / Роль в иерархии
	IsActive     bool      `gorm:"default:true"`                     // Active flag / Флаг активности
	CreatedAt    time.Time `gorm:"not null"`                         // Creation time / Время создания
	UpdatedAt    time.Time `gorm:"not null"`                         // Update time / Время обновления
}

// TableName returns the database table name for User entity.
// TableName возвращает имя таблицы в базе данных для сущности User.
func (User) TableName() string {
	return "users"
}

// PublicUser is the outward-facing projection of a User.
// PublicUser — внешняя проекция сущности User.
//
// It is the only user shape that ever crosses the HTTP boundary;
// it has no password field at all, so no call site can leak the hash.
// Это единственная форма пользователя, пересекающая HTTP границу;
// в ней вообще нет поля пароля, поэтому ни один вызов не может раскрыть хэш.
type PublicUser struct {
	ID          int64     `json:"id"`          // User ID / ID пользователя
	Email       string    `json:"email"`       // User email / Email пользователя
	DisplayName string    `json:"displayName"` // Display name / Отображаемое имя
	Role        Role      `json:"role"`        // Role / Роль
	IsActive    bool      `json:"isActive"`    // Active flag / Флаг активности
	CreatedAt   time.Time `json:"createdAt"`   // Creation time / Время создания
}

// Public returns the outward-facing projection of the user.
// Public возвращает внешнюю проекцию пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// Session represents a refresh-token grant for one device login.
// Session представляет refresh-token грант для входа с одного устройства.
//
// A user may hold several sessions concurrently. A refresh token is valid
// only while the row exists and ExpiresAt lies in the future; redeeming
// it replaces the row with a fresh one (rotation).
// Пользователь может одновременно иметь несколько сессий. Refresh токен
// валиден, только пока строка существует и ExpiresAt лежит в будущем;
// его погашение заменяет строку на новую (ротация).
type Session struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"` // Session UUID / UUID сессии
	UserID       int64     `gorm:"not null;index"`              // Owning user / Владеющий пользователь
	RefreshToken string    `gorm:"uniqueIndex;not null"`        // Opaque token / Непрозрачный токен
	ExpiresAt    time.Time `gorm:"not null;index"`              // Expiry / Истечение
	UserAgent    string    `gorm:"type:text"`                   // Audit metadata / Метаданные аудита
	IPAddress    string    `gorm:"type:varchar(45)"`            // Audit metadata / Метаданные аудита
	CreatedAt    time.Time `gorm:"not null"`                    // Creation time / Время создания
}

// TableName returns the database table name for Session entity.
// TableName возвращает имя таблицы в базе данных для сущности Session.
func (Session) TableName() string {
	return "sessions"
}

// RequestMeta carries per-request client metadata recorded on sessions.
// RequestMeta содержит метаданные клиента, записываемые в сессии.
type RequestMeta struct {
	UserAgent string // Client user agent / User agent клиента
	IPAddress string // Client IP / IP клиента
}
