package memory

import (
	"context"

	"github.com/hashicorp/go-memdb"

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
		apply: func(txn *memdb.Txn) error { return insertUserRole(txn, *ur) },
	})
}

func (r *UserRoleRepository) Update(ur *entity.UserRole) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			prev, err := getUserRole(txn, ur.UserID, ur.RoleID)
			if err != nil {
				return err
			}
			if prev == nil {
				return repository.ErrNoRowsAffected
			}
			return nil
		},
	})
}

func (r *UserRoleRepository) Remove(ur *entity.UserRole) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			prev, err := getUserRole(txn, ur.UserID, ur.RoleID)
			if err != nil {
				return err
			}
			if prev == nil {
				return repository.ErrNoRowsAffected
			}
			return txn.Delete(tableUserRoles, prev)
		},
	})
}

func (r *UserRoleRepository) RemoveByUserAndRole(userID, roleID int64) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			_, err := txn.DeleteAll(tableUserRoles, indexID, userID, roleID)
			return err
		},
	})
}

func (r *UserRoleRepository) GetByID(ctx context.Context, key entity.UserRole) (*entity.UserRole, error) {
	var out *entity.UserRole
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		ur, err := getUserRole(txn, key.UserID, key.RoleID)
		if err != nil || ur == nil {
			return err
		}
		found := *ur
		out = &found
		return nil
	})
	return out, err
}

func (r *UserRoleRepository) IsInRole(ctx context.Context, userID, roleID int64) (bool, error) {
	var ok bool
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		ur, err := getUserRole(txn, userID, roleID)
		ok = ur != nil
		return err
	})
	return ok, err
}

var _ repository.UserRoleRepository = (*UserRoleRepository)(nil)
