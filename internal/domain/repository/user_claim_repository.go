package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

type UserClaimRepository interface {
	Repository[entity.UserClaim, int64]
	GetByUserID(ctx context.Context, userID int64) ([]entity.UserClaim, error)
	// RemoveMatching stages deletion of the user's claims equal to c by type and value.
	RemoveMatching(userID int64, c entity.Claim)
}
