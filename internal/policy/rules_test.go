package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploypanel/deploypanel/internal/db/models"
)

func TestAllowsClientResource(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleAdmin:     nil,
		models.RoleDeveloper: nil,
		models.RoleClient:    nil,
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	actions := []Action{
		ActionViewAny, ActionView, ActionCreate, ActionUpdate,
		ActionDelete, ActionRestore, ActionForceDelete,
	}

	admin := userWithRole(roles[models.RoleAdmin])
	developer := userWithRole(roles[models.RoleDeveloper])
	client := userWithRole(roles[models.RoleClient])

	// Client records are admin territory, whatever the action.
	for _, action := range actions {
		assert.True(t, engine.Allows(admin, ResourceClient, action, nil), "admin %s", action)
		assert.False(t, engine.Allows(developer, ResourceClient, action, nil), "developer %s", action)
		assert.False(t, engine.Allows(client, ResourceClient, action, nil), "client %s", action)
	}
}

func TestAllowsUsersResource(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleAdmin:     nil,
		models.RoleDeveloper: nil,
		models.RoleClient:    nil,
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	admin := userWithRole(roles[models.RoleAdmin])
	developer := userWithRole(roles[models.RoleDeveloper])
	client := userWithRole(roles[models.RoleClient])

	otherDeveloper := userWithRole(roles[models.RoleDeveloper])
	otherDeveloper.ID = 42

	testCases := []struct {
		name     string
		user     *models.User
		action   Action
		target   any
		expected bool
	}{
		{
			name:     "admin lists users",
			user:     admin,
			action:   ActionViewAny,
			expected: true,
		},
		{
			name:     "developer lists users",
			user:     developer,
			action:   ActionViewAny,
			expected: true,
		},
		{
			name:     "client lists users",
			user:     client,
			action:   ActionViewAny,
			expected: false,
		},
		{
			name:     "developer creates user",
			user:     developer,
			action:   ActionCreate,
			expected: true,
		},
		{
			name:     "admin updates any user",
			user:     admin,
			action:   ActionUpdate,
			target:   otherDeveloper,
			expected: true,
		},
		{
			name:     "developer updates own account",
			user:     developer,
			action:   ActionUpdate,
			target:   developer,
			expected: true,
		},
		{
			name:     "developer updates another user",
			user:     developer,
			action:   ActionUpdate,
			target:   otherDeveloper,
			expected: false,
		},
		{
			name:     "developer updates with nil target",
			user:     developer,
			action:   ActionUpdate,
			target:   nil,
			expected: false,
		},
		{
			name:     "developer deletes own account",
			user:     developer,
			action:   ActionDelete,
			target:   developer,
			expected: false,
		},
		{
			name:     "client updates own account",
			user:     client,
			action:   ActionUpdate,
			target:   client,
			expected: true,
		},
		{
			name:     "user without loaded role",
			user:     &models.User{ID: 99},
			action:   ActionViewAny,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, engine.Allows(tc.user, ResourceUsers, tc.action, tc.target))
		})
	}
}

func TestAllowsClientResourceIgnoresGrants(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleDeveloper: {
			Slug(ResourceClient, ActionViewAny),
			Slug(ResourceClient, ActionUpdate),
		},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	developer := userWithRole(roles[models.RoleDeveloper])

	// The named rule decides for client records; stray slug grants in the
	// database must not widen access.
	assert.True(t, engine.HasPermission(developer, Slug(ResourceClient, ActionViewAny)))
	assert.False(t, engine.Allows(developer, ResourceClient, ActionViewAny, nil))
	assert.False(t, engine.Allows(developer, ResourceClient, ActionUpdate, nil))
}

func TestAllowsFallsBackToGrants(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleClient: {Slug(ResourceDeploy, ActionApprove)},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	client := userWithRole(roles[models.RoleClient])

	// Deploys have no named rule, so the grant map decides.
	assert.True(t, engine.Allows(client, ResourceDeploy, ActionApprove, nil))
	assert.False(t, engine.Allows(client, ResourceDeploy, ActionDelete, nil))
}

func TestAuthorize(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleAdmin:     nil,
		models.RoleDeveloper: nil,
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	admin := userWithRole(roles[models.RoleAdmin])
	developer := userWithRole(roles[models.RoleDeveloper])

	assert.NoError(t, engine.Authorize(admin, ResourceClient, ActionCreate, nil))
	assert.ErrorIs(t, engine.Authorize(developer, ResourceClient, ActionCreate, nil), ErrDenied)
	assert.ErrorIs(t, engine.Authorize(nil, ResourceUsers, ActionViewAny, nil), ErrDenied)
}

func TestCatalog(t *testing.T) {
	entries := Catalog()

	assert.Len(t, entries, 44)

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		assert.Equal(t, GuardWeb, entry.GuardName)
		_, dup := seen[entry.Slug]
		assert.False(t, dup, "duplicate slug %s", entry.Slug)
		seen[entry.Slug] = struct{}{}
	}

	assert.Contains(t, seen, "users-viewAny")
	assert.Contains(t, seen, "client-config-forceDelete")
	assert.Contains(t, seen, "deploy-approve")
	assert.Contains(t, seen, "deploy-reject")
}
