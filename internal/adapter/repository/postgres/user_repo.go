// Package postgres provides PostgreSQL-based repository implementations.
// Пакет postgres предоставляет реализации репозиториев на базе PostgreSQL.
//
// This package implements all repository interfaces defined in port package
// using GORM as the ORM layer.
// Этот пакет реализует все интерфейсы репозиториев, определённые в пакете port,
// используя GORM в качестве ORM слоя.
package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/port"
)

// UserRepository implements port.UserRepository using PostgreSQL.
// UserRepository реализует интерфейс port.UserRepository с использованием PostgreSQL.
type UserRepository struct {
	db *gorm.DB // Database connection / Подключение к базе данных
}

// NewUserRepository creates a new UserRepository instance.
// NewUserRepository создаёт новый экземпляр UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user in the database.
// Create создаёт нового пользователя в базе данных.
// A unique violation on email surfaces as a conflict error so the
// service layer can treat racing registrations uniformly.
// Нарушение уникальности email выдаётся как ошибка конфликта, чтобы
// сервисный слой единообразно обрабатывал гонки регистраций.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return apperror.Conflict("email is already registered")
		}
		return apperror.Internal("failed to create user", err)
	}
	return nil
}

// FindByID retrieves a user by their unique identifier.
// FindByID получает пользователя по уникальному идентификатору.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal("failed to find user", err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
// FindByEmail получает пользователя по адресу электронной почты.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, apperror.Internal("failed to find user", err)
	}
	return &user, nil
}

// Update updates an existing user in the database.
// Update обновляет существующего пользователя в базе данных.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return apperror.Internal("failed to update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// Count returns the total number of user records.
// Count возвращает общее количество записей пользователей.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, apperror.Internal("failed to count users", err)
	}
	return count, nil
}

// List retrieves users with filtering and pagination.
// List получает пользователей с фильтрацией и пагинацией.
// Returns: users slice, total count, error.
// Возвращает: срез пользователей, общее количество, ошибку.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})

	// Apply status filter / Применяем фильтр по статусу
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "deactivated":
		query = query.Where("is_active = ?", false)
	}

	// Apply search filter (email or display name) / Применяем поисковый фильтр (email или имя)
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR display_name ILIKE ?", search, search)
	}

	// Count total matching records / Подсчитываем общее количество записей
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("failed to count users", err)
	}

	// Calculate offset for pagination / Вычисляем смещение для пагинации
	offset := (filter.Page - 1) * filter.PageSize
	if offset < 0 {
		offset = 0
	}

	// Get paginated results / Получаем результаты с пагинацией
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&users).Error

	if err != nil {
		return nil, 0, apperror.Internal("failed to list users", err)
	}

	return users, total, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL duplicate key violation.
// isDuplicateKeyError проверяет, является ли ошибка нарушением уникального ключа PostgreSQL.
// PostgreSQL error code 23505 indicates unique_violation.
// Код ошибки PostgreSQL 23505 указывает на unique_violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := err.Error()
	return errMsg != "" && (strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505"))
}
