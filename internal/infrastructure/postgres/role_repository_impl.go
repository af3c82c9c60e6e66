package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

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
		queue: func(b *pgx.Batch) {
			b.Queue(`INSERT INTO roles (name) VALUES ($1) RETURNING id`, role.Name).
				QueryRow(func(row pgx.Row) error { return row.Scan(&id) })
		},
		done: func() { role.ID = id },
	})
}

func (r *RoleRepository) Update(role *entity.Role) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`UPDATE roles SET name = $1 WHERE id = $2`, role.Name, role.ID).Exec(expectRows)
		},
	})
}

func (r *RoleRepository) Remove(role *entity.Role) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM roles WHERE id = $1`, role.ID).Exec(expectRows)
		},
	})
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*entity.Role, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `
		SELECT id, name
		FROM roles
		WHERE UPPER(name) = UPPER($1)
		LIMIT 1
	`, name)
	return scanRole(row)
}

func (r *RoleRepository) List(ctx context.Context) ([]entity.Role, error) {
	rows, err := r.factory.Init().querier().Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Role, error) {
		var role entity.Role
		err := row.Scan(&role.ID, &role.Name)
		return role, err
	})
}

func (r *RoleRepository) GetRoleNamesByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.factory.Init().querier().Query(ctx, `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	role := &entity.Role{}
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
