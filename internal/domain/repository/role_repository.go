package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

type RoleRepository interface {
	Repository[entity.Role, int64]
	FindByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]entity.Role, error)
	// GetRoleNamesByUserID joins roles with user_roles in a single query.
	GetRoleNamesByUserID(ctx context.Context, userID int64) ([]string, error)
}
