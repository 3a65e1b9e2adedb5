// Package domain contains core business entities and value objects.
// Пакет domain содержит основные бизнес-сущности и объекты-значения.
package domain

import "fmt"

// Role represents a user's privilege level in the system.
// Role представляет уровень привилегий пользователя в системе.
//
// Roles form a total order: owner > admin > editor > viewer.
// All authorization decisions reduce to comparisons on this order.
// Роли образуют полный порядок: owner > admin > editor > viewer.
// Все решения авторизации сводятся к сравнениям на этом порядке.
type Role string

// Role constants, from lowest to highest privilege.
// Константы ролей, от низшей привилегии к высшей.
const (
	// RoleViewer is the lowest role, assigned to every regular registration.
	// RoleViewer — низшая роль, назначается при каждой обычной регистрации.
	RoleViewer Role = "viewer"

	// RoleEditor may create and edit content plans.
	// RoleEditor может создавать и редактировать контент-планы.
	RoleEditor Role = "editor"

	// RoleAdmin may manage other users below its own level.
	// RoleAdmin может управлять пользователями ниже своего уровня.
	RoleAdmin Role = "admin"

	// RoleOwner is the highest role, assigned once to the first registered user.
	// RoleOwner — высшая роль, назначается один раз первому зарегистрированному пользователю.
	RoleOwner Role = "owner"
)

// roleLevels maps each role to its position in the hierarchy.
// The numeric levels never leave this package; callers compare
// roles only through AtLeast and StrictlyBelow.
// roleLevels сопоставляет каждой роли её позицию в иерархии.
// Числовые уровни не покидают этот пакет; вызывающие сравнивают
// роли только через AtLeast и StrictlyBelow.
var roleLevels = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// ParseRole converts a string into a Role.
// ParseRole преобразует строку в Role.
// Returns an error for any value outside the fixed role set.
// Возвращает ошибку для любого значения вне фиксированного набора ролей.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role belongs to the fixed role set.
// Valid сообщает, принадлежит ли роль фиксированному набору ролей.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// String returns the role as a string.
// String возвращает роль в виде строки.
func (r Role) String() string {
	return string(r)
}

// AtLeast reports whether r sits at or above other in the hierarchy.
// AtLeast сообщает, находится ли r на уровне other или выше в иерархии.
// An invalid role is below every valid role.
// Невалидная роль находится ниже любой валидной роли.
func (r Role) AtLeast(other Role) bool {
	return roleLevels[r] >= roleLevels[other] && r.Valid()
}

// StrictlyBelow reports whether r sits strictly below other in the hierarchy.
// StrictlyBelow сообщает, находится ли r строго ниже other в иерархии.
func (r Role) StrictlyBelow(other Role) bool {
	return r.Valid() && other.Valid() && roleLevels[r] < roleLevels[other]
}
