package service

import (
	"context"
	"time"

	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
)

// UserService implements port.UserService interface.
// UserService реализует интерфейс port.UserService.
//
// All admin mutations run through loadMutationTarget and
// requireTargetBelow so that role changes and deactivations obey one
// shared set of rules.
// Все админ-мутации проходят через loadMutationTarget и
// requireTargetBelow, поэтому смена ролей и деактивации подчиняются
// единому набору правил.
type UserService struct {
	userRepo    port.UserRepository    // User repository / Репозиторий пользователей
	sessionRepo port.SessionRepository // Session repository / Репозиторий сессий
	logger      *logger.Logger         // Logger instance / Экземпляр логгера
}

// NewUserService creates a new UserService instance.
// NewUserService создаёт новый экземпляр UserService.
func NewUserService(userRepo port.UserRepository, sessionRepo port.SessionRepository, log *logger.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		logger:      log.WithComponent("user_service"),
	}
}

// GetUserByID retrieves a user's public view by id.
// GetUserByID получает публичную проекцию пользователя по id.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// ListUsers retrieves a paginated list of users.
// ListUsers получает пагинированный список пользователей.
func (s *UserService) ListUsers(ctx context.Context, filter port.UserFilter) ([]domain.PublicUser, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	public := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, total, nil
}

// UpdateUserRole changes a target user's role under hierarchy constraints.
// UpdateUserRole меняет роль целевого пользователя с учётом ограничений иерархии.
//
// The new role must also sit strictly below the actor: an admin can
// hand out editor or viewer, never admin or owner.
// Новая роль тоже должна быть строго ниже актора: admin может выдать
// editor или viewer, но никогда admin или owner.
func (s *UserService) UpdateUserRole(ctx context.Context, actor port.Actor, targetID int64, newRole domain.Role) (*domain.PublicUser, error) {
	log := s.logger.WithContext(ctx)

	if !newRole.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	target, err := s.loadMutationTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	// The grant check runs before the target-level check: handing out a
	// role at or above your own is the more specific violation.
	// Проверка выдачи идёт раньше проверки уровня цели: выдача роли на
	// своём уровне или выше — более специфичное нарушение.
	if !newRole.StrictlyBelow(actor.Role) {
		log.Warn("attempt to grant role at or above own level",
			"actor_id", actor.ID, "target_id", targetID, "new_role", newRole.String())
		return nil, apperror.Forbidden("cannot grant a role at or above your own level")
	}

	if err := s.requireTargetBelow(ctx, actor, target); err != nil {
		return nil, err
	}

	target.Role = newRole
	target.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, target); err != nil {
		log.Error("failed to update user role", "target_id", targetID, "error", err)
		return nil, err
	}

	log.Info("user role updated", "actor_id", actor.ID, "target_id", targetID, "new_role", newRole.String())
	public := target.Public()
	return &public, nil
}

// DeactivateUser sets a target user's IsActive to false under hierarchy constraints.
// DeactivateUser устанавливает IsActive целевого пользователя в false с учётом иерархии.
//
// Already-deactivated targets are accepted as-is. Existing access
// tokens stay valid until expiry, but all sessions are removed so no
// new pair can be minted.
// Уже деактивированные цели принимаются как есть. Существующие access
// токены действительны до истечения, но все сессии удаляются, поэтому
// новая пара выпущена не будет.
func (s *UserService) DeactivateUser(ctx context.Context, actor port.Actor, targetID int64) (*domain.PublicUser, error) {
	log := s.logger.WithContext(ctx)

	target, err := s.loadMutationTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTargetBelow(ctx, actor, target); err != nil {
		return nil, err
	}

	if target.IsActive {
		target.IsActive = false
		target.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, target); err != nil {
			log.Error("failed to deactivate user", "target_id", targetID, "error", err)
			return nil, err
		}
	}

	if err := s.sessionRepo.DeleteByUser(ctx, targetID); err != nil {
		log.Warn("failed to remove sessions of deactivated user", "target_id", targetID, "error", err)
	}

	log.Info("user deactivated", "actor_id", actor.ID, "target_id", targetID)
	public := target.Public()
	return &public, nil
}

// loadMutationTarget loads the target and enforces the leading mutation rules.
// loadMutationTarget загружает цель и применяет начальные правила мутаций.
//
// Rules, in order / Правила, по порядку:
//  1. The actor holds at least the admin role.
//     Актор обладает как минимум ролью admin.
//  2. The actor never modifies itself.
//     Актор никогда не изменяет самого себя.
//  3. The target exists.
//     Цель существует.
//  4. Owners are untouchable.
//     Владельцы неприкосновенны.
//
// The target-below-actor rule lives in requireTargetBelow so that
// UpdateUserRole can run its grant check between the two.
// Правило цель-ниже-актора живёт в requireTargetBelow, чтобы
// UpdateUserRole мог выполнить проверку выдачи между ними.
func (s *UserService) loadMutationTarget(ctx context.Context, actor port.Actor, targetID int64) (*domain.User, error) {
	log := s.logger.WithContext(ctx)

	if !actor.Role.AtLeast(domain.RoleAdmin) {
		log.Warn("non-admin attempted a user mutation", "actor_id", actor.ID, "actor_role", actor.Role.String())
		return nil, apperror.Forbidden("admin role required")
	}

	if actor.ID == targetID {
		return nil, apperror.Forbidden("cannot modify your own account")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == domain.RoleOwner {
		log.Warn("attempt to modify an owner account", "actor_id", actor.ID, "target_id", targetID)
		return nil, apperror.Forbidden("owner accounts cannot be modified")
	}

	return target, nil
}

// requireTargetBelow rejects lateral and upward mutations.
// requireTargetBelow отклоняет горизонтальные и восходящие мутации.
func (s *UserService) requireTargetBelow(ctx context.Context, actor port.Actor, target *domain.User) error {
	if !target.Role.StrictlyBelow(actor.Role) {
		s.logger.WithContext(ctx).Warn("attempt to modify a peer or superior",
			"actor_id", actor.ID, "actor_role", actor.Role.String(),
			"target_id", target.ID, "target_role", target.Role.String())
		return apperror.Forbidden("can only modify users below your own level")
	}
	return nil
}
