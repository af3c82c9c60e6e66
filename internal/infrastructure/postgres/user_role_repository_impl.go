package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type UserRoleRepository struct {
	factory *SessionFactory
}

func NewUserRoleRepository(factory *SessionFactory) *UserRoleRepository {
	return &UserRoleRepository{factory: factory}
}

func (r *UserRoleRepository) Add(ur *entity.UserRole) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, ur.UserID, ur.RoleID)
		},
	})
}

// Update has no non-key column to write; it only asserts the row exists.
func (r *UserRoleRepository) Update(ur *entity.UserRole) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				UPDATE user_roles SET role_id = $2
				WHERE user_id = $1 AND role_id = $2
			`, ur.UserID, ur.RoleID).Exec(expectRows)
		},
	})
}

func (r *UserRoleRepository) Remove(ur *entity.UserRole) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, ur.UserID, ur.RoleID).Exec(expectRows)
		},
	})
}

func (r *UserRoleRepository) RemoveByUserAndRole(userID, roleID int64) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
		},
	})
}

func (r *UserRoleRepository) GetByID(ctx context.Context, key entity.UserRole) (*entity.UserRole, error) {
	ur := &entity.UserRole{}
	err := r.factory.Init().querier().QueryRow(ctx, `
		SELECT user_id, role_id FROM user_roles WHERE user_id = $1 AND role_id = $2
	`, key.UserID, key.RoleID).Scan(&ur.UserID, &ur.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ur, nil
}

func (r *UserRoleRepository) IsInRole(ctx context.Context, userID, roleID int64) (bool, error) {
	var ok bool
	err := r.factory.Init().querier().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)
	`, userID, roleID).Scan(&ok)
	return ok, err
}

var _ repository.UserRoleRepository = (*UserRoleRepository)(nil)
