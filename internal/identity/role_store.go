package identity

import (
	"context"
	"strconv"
	"strings"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type RoleStore struct {
	uow      repository.UnitOfWork
	roles    repository.RoleRepository
	disposed bool
}

func NewRoleStore(uow repository.UnitOfWork, roles repository.RoleRepository) *RoleStore {
	return &RoleStore{uow: uow, roles: roles}
}

func (s *RoleStore) ready() error {
	if s.disposed {
		return disposedError("RoleStore")
	}
	return nil
}

// Close drops the store's collaborators. Later calls fail with ErrObjectDisposed.
func (s *RoleStore) Close() error {
	if s.disposed {
		return nil
	}
	s.uow = nil
	s.roles = nil
	s.disposed = true
	return nil
}

func (s *RoleStore) Create(ctx context.Context, r *entity.Role) error {
	if err := s.ready(); err != nil {
		return err
	}
	if r == nil {
		return argumentError("role")
	}
	if strings.TrimSpace(r.Name) == "" {
		return argumentError("role.Name")
	}
	s.roles.Add(r)
	return s.uow.SaveChanges(ctx)
}

func (s *RoleStore) Update(ctx context.Context, r *entity.Role) error {
	if err := s.ready(); err != nil {
		return err
	}
	if r == nil {
		return argumentError("role")
	}
	if strings.TrimSpace(r.Name) == "" {
		return argumentError("role.Name")
	}
	s.roles.Update(r)
	return s.uow.SaveChanges(ctx)
}

func (s *RoleStore) Delete(ctx context.Context, r *entity.Role) error {
	if err := s.ready(); err != nil {
		return err
	}
	if r == nil {
		return argumentError("role")
	}
	s.roles.Remove(r)
	return s.uow.SaveChanges(ctx)
}

func (s *RoleStore) FindByID(ctx context.Context, id int64) (*entity.Role, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.roles.GetByID(ctx, id)
}

// FindByStringID resolves a textual role id, as handed over by callers that
// only carry string keys.
func (s *RoleStore) FindByStringID(ctx context.Context, id string) (*entity.Role, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nil, argumentError("roleId")
	}
	return s.roles.GetByID(ctx, n)
}

func (s *RoleStore) FindByName(ctx context.Context, roleName string) (*entity.Role, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(roleName) == "" {
		return nil, argumentError("roleName")
	}
	return s.roles.FindByName(ctx, roleName)
}

var _ Roles = (*RoleStore)(nil)
