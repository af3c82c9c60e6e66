package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

type UserLoginRepository interface {
	Repository[entity.UserLogin, entity.UserLoginKey]
	GetByUserID(ctx context.Context, userID int64) ([]entity.UserLogin, error)
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*entity.UserLogin, error)
	// RemoveByProvider stages deletion of every login of the user issued by
	// loginProvider, whatever its provider key.
	RemoveByProvider(userID int64, loginProvider string)
}
