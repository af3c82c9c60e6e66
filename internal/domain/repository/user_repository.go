package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Repository[entity.User, int64]
	// FindByName matches user names case-insensitively.
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// FindByEmail matches e-mail addresses case-insensitively.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// IncrementAccessFailedCount stages an in-database increment of the
	// counter. On commit u.AccessFailedCount holds the persisted value.
	IncrementAccessFailedCount(u *entity.User)
}
