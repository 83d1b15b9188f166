package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.RolePermission{},
		&models.Client{}, &models.User{}, &models.Host{},
		&models.ClientConfig{}, &models.Version{}, &models.Deploy{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, seed(db))

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(3), roles)

	var permissions int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permissions).Error)
	assert.Equal(t, int64(44), permissions)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, seed(db))
	require.NoError(t, seed(db))

	var permissions int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permissions).Error)
	assert.Equal(t, int64(44), permissions)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestSeedGrants(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, seed(db))

	engine, err := policy.NewEngine(db)
	require.NoError(t, err)

	userWith := func(t *testing.T, slug string) *models.User {
		t.Helper()

		var role models.Role
		require.NoError(t, db.Where("slug = ?", slug).First(&role).Error)

		return &models.User{ID: 1, RoleID: &role.ID, Role: &role}
	}

	admin := userWith(t, models.RoleAdmin)
	developer := userWith(t, models.RoleDeveloper)
	client := userWith(t, models.RoleClient)

	assert.Len(t, engine.PermissionsFor(admin), 44, "admin holds the full catalog")

	// Developer: version and deploy lifecycle, no client management.
	assert.True(t, engine.HasPermission(developer, policy.Slug(policy.ResourceVersion, policy.ActionCreate)))
	assert.True(t, engine.HasPermission(developer, policy.Slug(policy.ResourceDeploy, policy.ActionCreate)))
	assert.False(t, engine.HasPermission(developer, policy.Slug(policy.ResourceClient, policy.ActionViewAny)))
	assert.False(t, engine.HasPermission(developer, policy.Slug(policy.ResourceDeploy, policy.ActionApprove)))

	// Client: deploy review only.
	assert.True(t, engine.HasPermission(client, policy.Slug(policy.ResourceDeploy, policy.ActionViewAny)))
	assert.True(t, engine.HasPermission(client, policy.Slug(policy.ResourceDeploy, policy.ActionApprove)))
	assert.True(t, engine.HasPermission(client, policy.Slug(policy.ResourceDeploy, policy.ActionReject)))
	assert.False(t, engine.HasPermission(client, policy.Slug(policy.ResourceDeploy, policy.ActionCreate)))
	assert.False(t, engine.HasPermission(client, policy.Slug(policy.ResourceUsers, policy.ActionViewAny)))
}

func TestSeedAdminLogin(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, seed(db))

	var admin models.User
	require.NoError(t, db.Where("email = ?", defaultAdminEmail).First(&admin).Error)

	assert.True(t, admin.VerifyPassword(defaultAdminPassword))
	require.NotNil(t, admin.RoleID)
}

func TestSeedDemo(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, seed(db))
	require.NoError(t, SeedDemo(db))
	require.NoError(t, SeedDemo(db), "demo seed must be idempotent")

	var clients int64
	require.NoError(t, db.Model(&models.Client{}).Count(&clients).Error)
	assert.Equal(t, int64(13), clients)

	var configs int64
	require.NoError(t, db.Model(&models.ClientConfig{}).Count(&configs).Error)
	assert.Equal(t, int64(13), configs)

	var host models.Host
	require.NoError(t, db.First(&host).Error)
	assert.JSONEq(t, `{"username":"admin","password":"admin123"}`, host.Credentials)
}
