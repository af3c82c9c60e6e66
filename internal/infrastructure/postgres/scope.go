package postgres

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

// NewScope builds the repositories and unit of work for one request over a
// fresh session factory. Close on the returned scope releases the session.
func NewScope(db DB, logger *logrus.Logger) *repository.Scope {
	f := NewSessionFactory(db, logger)
	return repository.NewScope(
		NewUnitOfWork(f),
		NewUserRepository(f),
		NewRoleRepository(f),
		NewUserLoginRepository(f),
		NewUserClaimRepository(f),
		NewUserRoleRepository(f),
		f.Close,
	)
}
