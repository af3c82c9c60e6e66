package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r, err := f.roles.CreateRole(ctx, " admin ")
	require.NoError(t, err)
	assert.Equal(t, "admin", r.Name)

	_, err = f.roles.CreateRole(ctx, "ADMIN")
	assert.ErrorIs(t, err, ErrDuplicateRoleName)

	var verr *ValidationError
	_, err = f.roles.CreateRole(ctx, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Details["name"])

	got, err := f.roles.FindByName(ctx, "Admin")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	require.NoError(t, f.roles.DeleteRole(ctx, "admin"))
	_, err = f.roles.FindByName(ctx, "admin")
	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.ErrorIs(t, f.roles.DeleteRole(ctx, "admin"), ErrRoleNotFound)
}

func TestDeleteRoleDropsMemberships(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.roles.CreateRole(ctx, "manager")
	require.NoError(t, err)
	u := f.create(t, "kim", "kim@example.com")
	require.NoError(t, f.store.AddToRole(ctx, u, "manager"))

	require.NoError(t, f.roles.DeleteRole(ctx, "manager"))
	names, err := f.store.GetRoles(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, names)
}
