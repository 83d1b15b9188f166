package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedGrants inserts roles, permissions and grants for testing.
func seedGrants(t *testing.T, db *gorm.DB, grants map[string][]string) map[string]models.Role {
	t.Helper()

	roles := make(map[string]models.Role)
	perms := make(map[string]models.Permission)

	for roleSlug, slugs := range grants {
		role := models.Role{Name: roleSlug, Slug: roleSlug}
		require.NoError(t, db.Create(&role).Error, "failed to seed role")
		roles[roleSlug] = role

		for _, slug := range slugs {
			perm, ok := perms[slug]
			if !ok {
				perm = models.Permission{Name: slug, Slug: slug, GuardName: GuardWeb}
				require.NoError(t, db.Create(&perm).Error, "failed to seed permission")
				perms[slug] = perm
			}

			rp := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			require.NoError(t, db.Create(&rp).Error, "failed to seed grant")
		}
	}

	return roles
}

func userWithRole(role models.Role) *models.User {
	roleID := role.ID
	return &models.User{ID: 1, Name: "Tester", RoleID: &roleID, Role: &role}
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	db := setupTestDB(t)
	engine, err := NewEngine(db)
	require.NoError(t, err)
	assert.NotNil(t, engine)
}

func TestHasPermission(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleAdmin:     {"client-viewAny", "client-create"},
		models.RoleDeveloper: {"version-viewAny"},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	admin := userWithRole(roles[models.RoleAdmin])
	developer := userWithRole(roles[models.RoleDeveloper])

	testCases := []struct {
		name       string
		user       *models.User
		permission string
		expected   bool
	}{
		{
			name:       "granted slug",
			user:       admin,
			permission: "client-viewAny",
			expected:   true,
		},
		{
			name:       "slug granted to another role",
			user:       developer,
			permission: "client-viewAny",
			expected:   false,
		},
		{
			name:       "unknown slug",
			user:       admin,
			permission: "no-such-permission",
			expected:   false,
		},
		{
			name:       "nil user",
			user:       nil,
			permission: "client-viewAny",
			expected:   false,
		},
		{
			name:       "user without role",
			user:       &models.User{ID: 7, Name: "Orphan"},
			permission: "client-viewAny",
			expected:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, engine.HasPermission(tc.user, tc.permission))
		})
	}
}

func TestReload(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleAdmin: {"host-viewAny"},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	admin := userWithRole(roles[models.RoleAdmin])
	assert.True(t, engine.HasPermission(admin, "host-viewAny"))

	// Grant an additional permission after the engine loaded.
	perm := models.Permission{Name: "host-create", Slug: "host-create", GuardName: GuardWeb}
	require.NoError(t, db.Create(&perm).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: roles[models.RoleAdmin].ID, PermissionID: perm.ID}).Error)

	assert.False(t, engine.HasPermission(admin, "host-create"), "new grant must not be visible before reload")

	require.NoError(t, engine.Reload())
	assert.True(t, engine.HasPermission(admin, "host-create"))
}

func TestAuthorizeSlug(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleClient: {"deploy-approve"},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	client := userWithRole(roles[models.RoleClient])

	assert.NoError(t, engine.AuthorizeSlug(client, "deploy-approve"))
	assert.ErrorIs(t, engine.AuthorizeSlug(client, "deploy-delete"), ErrDenied)
	assert.ErrorIs(t, engine.AuthorizeSlug(nil, "deploy-approve"), ErrDenied)
}

func TestPermissionsFor(t *testing.T) {
	db := setupTestDB(t)
	roles := seedGrants(t, db, map[string][]string{
		models.RoleDeveloper: {"version-create", "deploy-create", "deploy-view"},
	})

	engine, err := NewEngine(db)
	require.NoError(t, err)

	developer := userWithRole(roles[models.RoleDeveloper])

	assert.Equal(t, []string{"deploy-create", "deploy-view", "version-create"}, engine.PermissionsFor(developer))
	assert.Nil(t, engine.PermissionsFor(nil))
	assert.Empty(t, engine.PermissionsFor(&models.User{ID: 9}))
}
