package identity

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

// NewStores builds a user store and a role store sharing scope's session.
func NewStores(scope *repository.Scope) (*UserStore, *RoleStore) {
	users := NewUserStore(scope.UnitOfWork, scope.Users, scope.UserLogins, scope.UserClaims, scope.UserRoles, scope.Roles)
	roles := NewRoleStore(scope.UnitOfWork, scope.Roles)
	return users, roles
}

// DefaultRoles are seeded when SeedRoles gets no names.
var DefaultRoles = []string{"manager", "admin"}

// SeedRoles inserts names (DefaultRoles when empty) if no role exists yet
// and reports whether it did. All rows go out in one commit.
func SeedRoles(ctx context.Context, uow repository.UnitOfWork, roles repository.RoleRepository, names ...string) (bool, error) {
	if len(names) == 0 {
		names = DefaultRoles
	}
	existing, err := roles.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, name := range names {
		roles.Add(&entity.Role{Name: name})
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return false, err
	}
	return true, nil
}
