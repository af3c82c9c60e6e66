package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a missing reference or an empty required string.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrObjectDisposed reports a call on a store after Close.
	ErrObjectDisposed = errors.New("object disposed")
	// ErrInvalidOperation reports a role-membership call naming a role that does not exist.
	ErrInvalidOperation = errors.New("invalid operation")
)

func argumentError(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, name)
}

func disposedError(typeName string) error {
	return fmt.Errorf("%w: %s", ErrObjectDisposed, typeName)
}

var errRoleNotFound = fmt.Errorf("%w: role not found", ErrInvalidOperation)
