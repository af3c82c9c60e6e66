package memory

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type RoleRepository struct {
	factory *SessionFactory
}

func NewRoleRepository(factory *SessionFactory) *RoleRepository {
	return &RoleRepository{factory: factory}
}

func (r *RoleRepository) Add(role *entity.Role) {
	var id int64
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			var err error
			id, err = insertRole(txn, *role)
			return err
		},
		done: func() { role.ID = id },
	})
}

func (r *RoleRepository) Update(role *entity.Role) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error { return updateRole(txn, *role) },
	})
}

func (r *RoleRepository) Remove(role *entity.Role) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error { return deleteRole(txn, role.ID) },
	})
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*entity.Role, error) {
	var out *entity.Role
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		role, err := getRole(txn, id)
		if err != nil || role == nil {
			return err
		}
		found := *role
		out = &found
		return nil
	})
	return out, err
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var out *entity.Role
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tableRoles, indexName, name)
		if err != nil || raw == nil {
			return err
		}
		found := *raw.(*entity.Role)
		out = &found
		return nil
	})
	return out, err
}

func (r *RoleRepository) List(ctx context.Context) ([]entity.Role, error) {
	var out []entity.Role
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableRoles, indexID)
		if err != nil {
			return err
		}
		out = collect[entity.Role](it, nil)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *RoleRepository) GetRoleNamesByUserID(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableUserRoles, indexUserID, userID)
		if err != nil {
			return err
		}
		for _, ur := range collect[entity.UserRole](it, nil) {
			role, err := getRole(txn, ur.RoleID)
			if err != nil {
				return err
			}
			if role != nil {
				names = append(names, role.Name)
			}
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
