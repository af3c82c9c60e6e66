package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/identity"
)

type RoleManager struct {
	Store  identity.Roles
	Logger *logrus.Logger
}

func NewRoleManager(store identity.Roles, logger *logrus.Logger) *RoleManager {
	return &RoleManager{Store: store, Logger: logger}
}

// CreateRole stores a role unless one with the same name exists, compared
// case-insensitively.
func (m *RoleManager) CreateRole(ctx context.Context, name string) (*entity.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if len(name) > 256 {
		return nil, invalid("name", "must be at most 256 characters long")
	}
	existing, err := m.Store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRoleName
	}
	r := &entity.Role{Name: name}
	if err := m.Store.Create(ctx, r); err != nil {
		return nil, err
	}
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{"role_id": r.ID, "role": r.Name}).Info("role created")
	}
	return r, nil
}

func (m *RoleManager) DeleteRole(ctx context.Context, name string) error {
	r, err := m.FindByName(ctx, name)
	if err != nil {
		return err
	}
	return m.Store.Delete(ctx, r)
}

func (m *RoleManager) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "is required")
	}
	r, err := m.Store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRoleNotFound
	}
	return r, nil
}
