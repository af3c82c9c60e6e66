package postgres

import (
	"context"

	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

// UnitOfWork commits the session shared with the repositories built from the
// same factory. The session is opened on first use.
type UnitOfWork struct {
	factory *SessionFactory
}

func NewUnitOfWork(factory *SessionFactory) *UnitOfWork {
	return &UnitOfWork{factory: factory}
}

func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	return u.factory.Init().saveChanges(ctx)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
