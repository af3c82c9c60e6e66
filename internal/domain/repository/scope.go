package repository

// Scope bundles the unit of work and repositories sharing one persistence
// session for the lifetime of a single logical request.
type Scope struct {
	UnitOfWork UnitOfWork
	Users      UserRepository
	Roles      RoleRepository
	UserLogins UserLoginRepository
	UserClaims UserClaimRepository
	UserRoles  UserRoleRepository

	release func() error
}

// NewScope assembles a scope. release is called once by Close.
func NewScope(uow UnitOfWork, users UserRepository, roles RoleRepository, logins UserLoginRepository,
	claims UserClaimRepository, userRoles UserRoleRepository, release func() error) *Scope {
	return &Scope{
		UnitOfWork: uow,
		Users:      users,
		Roles:      roles,
		UserLogins: logins,
		UserClaims: claims,
		UserRoles:  userRoles,
		release:    release,
	}
}

// Close releases the underlying session. Calling it more than once is safe.
func (s *Scope) Close() error {
	if s == nil || s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil
	return release()
}
