package role

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

	err = db.AutoMigrate(&models.Role{}, &models.Permission{}, &models.RolePermission{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedRoles(t *testing.T, db *gorm.DB) map[string]models.Role {
	t.Helper()

	out := make(map[string]models.Role)

	for _, r := range []models.Role{
		{Name: "Developer", Slug: models.RoleDeveloper},
		{Name: "Admin", Slug: models.RoleAdmin},
		{Name: "Client", Slug: models.RoleClient},
	} {
		require.NoError(t, db.Create(&r).Error, "failed to seed role")
		out[r.Slug] = r
	}

	return out
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	_, err := GetAll(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	roles, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, roles, 3)

	// ordered by name
	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, "Client", roles[1].Name)
	assert.Equal(t, "Developer", roles[2].Name)
}

func TestFindBySlug(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	role, err := FindBySlug(db, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)

	_, err = FindBySlug(db, "superuser")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = FindBySlug(nil, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestPermissions(t *testing.T) {
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	perms := []models.Permission{
		{Name: "View deploys", Slug: "deploy-view", GuardName: "web"},
		{Name: "Approve deploys", Slug: "deploy-approve", GuardName: "web"},
	}
	for i := range perms {
		require.NoError(t, db.Create(&perms[i]).Error)
	}

	client := roles[models.RoleClient]
	for _, p := range perms {
		require.NoError(t, db.Create(&models.RolePermission{RoleID: client.ID, PermissionID: p.ID}).Error)
	}

	granted, err := Permissions(db, client.ID)
	require.NoError(t, err)
	require.Len(t, granted, 2)

	// ordered by slug
	assert.Equal(t, "deploy-approve", granted[0].Slug)
	assert.Equal(t, "deploy-view", granted[1].Slug)

	granted, err = Permissions(db, roles[models.RoleDeveloper].ID)
	require.NoError(t, err)
	assert.Empty(t, granted)
}
