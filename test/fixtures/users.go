// Package fixtures provides reusable test data builders.
// Пакет fixtures предоставляет переиспользуемые построители тестовых данных.
package fixtures

import (
	"fmt"
	"time"

	"github.com/planwisehq/planwise/internal/domain"
)

// UserFixtures provides test user data
type UserFixtures struct{}

// NewUserFixtures creates a new UserFixtures instance
func NewUserFixtures() *UserFixtures {
	return &UserFixtures{}
}

// ValidUser returns an active viewer for testing
func (f *UserFixtures) ValidUser() *domain.User {
	return &domain.User{
		ID:           1,
		Email:        "test@example.com",
		DisplayName:  "Test User",
		PasswordHash: "$2a$10$rQJjO5KFz3v5KTjcPNTmEOl8y7Xz5k7Jw9q5n3YxV1z2A3B4C5D6E", // hashed "correct horse battery"
		Role:         domain.RoleViewer,
		IsActive:     true,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
		UpdatedAt:    time.Now(),
	}
}

// ValidUserWithID returns a valid user with a specific ID
func (f *UserFixtures) ValidUserWithID(id int64) *domain.User {
	user := f.ValidUser()
	user.ID = id
	return user
}

// UserWithRole returns a valid user with a specific role
func (f *UserFixtures) UserWithRole(role domain.Role) *domain.User {
	user := f.ValidUser()
	user.Role = role
	return user
}

// OwnerUser returns the workspace owner for testing
func (f *UserFixtures) OwnerUser() *domain.User {
	user := f.ValidUser()
	user.ID = 2
	user.Email = "owner@example.com"
	user.DisplayName = "Workspace Owner"
	user.Role = domain.RoleOwner
	return user
}

// AdminUser returns an admin user for testing
func (f *UserFixtures) AdminUser() *domain.User {
	user := f.ValidUser()
	user.ID = 3
	user.Email = "admin@example.com"
	user.DisplayName = "Admin User"
	user.Role = domain.RoleAdmin
	return user
}

// DeactivatedUser returns a deactivated user for testing
func (f *UserFixtures) DeactivatedUser() *domain.User {
	user := f.ValidUser()
	user.ID = 4
	user.Email = "inactive@example.com"
	user.IsActive = false
	return user
}

// UsersList returns a list of users for testing pagination
func (f *UserFixtures) UsersList(count int) []domain.User {
	users := make([]domain.User, count)
	for i := 0; i < count; i++ {
		users[i] = domain.User{
			ID:           int64(i + 1),
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			DisplayName:  fmt.Sprintf("User %d", i+1),
			PasswordHash: "$2a$10$rQJjO5KFz3v5KTjcPNTmEOl8y7Xz5k7Jw9q5n3YxV1z2A3B4C5D6E",
			Role:         domain.RoleViewer,
			IsActive:     i%5 != 0, // Every 5th user is deactivated
			CreatedAt:    time.Now().Add(-time.Duration(i) * time.Hour),
			UpdatedAt:    time.Now(),
		}
	}
	return users
}

// SessionFixtures provides test session data
type SessionFixtures struct{}

// NewSessionFixtures creates a new SessionFixtures instance
func NewSessionFixtures() *SessionFixtures {
	return &SessionFixtures{}
}

// ValidSession returns a live session for the given user
func (f *SessionFixtures) ValidSession(userID int64) *domain.Session {
	return &domain.Session{
		ID:           "b3f1c9d2-5d1a-4c7e-9a42-8f0e6d2b1a3c",
		UserID:       userID,
		RefreshToken: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		ExpiresAt:    time.Now().Add(7 * 24 * time.Hour),
		UserAgent:    "Mozilla/5.0",
		IPAddress:    "192.168.1.1",
		CreatedAt:    time.Now(),
	}
}

// ExpiredSession returns a session whose refresh token has lapsed
func (f *SessionFixtures) ExpiredSession(userID int64) *domain.Session {
	session := f.ValidSession(userID)
	session.ID = "7a8e4f10-2b3c-4d5e-8f90-1a2b3c4d5e6f"
	session.RefreshToken = "feedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedface"
	session.ExpiresAt = time.Now().Add(-time.Hour)
	return session
}
