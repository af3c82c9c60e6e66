package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

type UserRoleRepository interface {
	Repository[entity.UserRole, entity.UserRole]
	IsInRole(ctx context.Context, userID, roleID int64) (bool, error)
	// RemoveByUserAndRole stages deletion of the membership if it exists.
	RemoveByUserAndRole(userID, roleID int64)
}
