package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdojo/backend/internal/domain"
)

func TestAdmin_ListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, e := range []string{"a1@example.com", "a2@example.com", "a3@example.com"} {
		f.signUp(t, e)
	}

	page, err := f.admin.ListUsers(ctx, 1, 2, "", "")
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Users, 2)

	admins, err := f.admin.ListUsers(ctx, 0, 0, domain.RoleAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, 1, admins.Total)
	assert.Equal(t, 1, admins.Page)
	assert.Equal(t, 10, admins.Limit)

	search, err := f.admin.ListUsers(ctx, 1, 10, "", "a2@")
	require.NoError(t, err)
	require.Len(t, search.Users, 1)
}

func TestAdmin_ListUsersHugePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, page := range []int{1<<60 + 1, math.MaxInt} {
		for _, limit := range []int{1, 10, 100} {
			res, err := f.admin.ListUsers(ctx, page, limit, "", "")
			require.NoError(t, err)
			assert.Empty(t, res.Users)
			assert.Equal(t, 2, res.Total)
			assert.Positive(t, res.Page)
		}
	}
}

func TestAdmin_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.signUp(t, "target@example.com").User
	admin, err := f.store.Users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	role := domain.RoleAdmin
	u, err := f.admin.UpdateUser(ctx, admin.ID, target.ID, AdminUserInput{Role: &role})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	bad := "superuser"
	_, err = f.admin.UpdateUser(ctx, admin.ID, target.ID, AdminUserInput{Role: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	details, err := f.admin.GetUser(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, details.ID)
	assert.NotNil(t, details.Progress)

	assert.ErrorIs(t, f.admin.DeleteUser(ctx, admin.ID, admin.ID), domain.ErrInvalidArgument)
	require.NoError(t, f.admin.DeleteUser(ctx, admin.ID, target.ID))
	_, err = f.admin.GetUser(ctx, target.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	logs, err := f.audit.GetRecentLogs(ctx, domain.AuditCategoryAdmin, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
