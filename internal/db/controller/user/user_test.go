package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Role{}, &models.Client{}, &models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedRole(t *testing.T, db *gorm.DB, slug string) models.Role {
	t.Helper()

	role := models.Role{Name: slug, Slug: slug}
	require.NoError(t, db.Create(&role).Error, "failed to seed role")

	return role
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	role := seedRole(t, db, models.RoleDeveloper)

	_, err := Create(db, map[string]any{
		"name": "Danny", "email": "danny@example.com", "password": "secret123", "role_id": &role.ID,
	})
	require.NoError(t, err)
	_, err = Create(db, map[string]any{
		"name": "Helena", "email": "helena@example.com", "password": "secret123",
	})
	require.NoError(t, err)

	t.Run("all users with role preloaded", func(t *testing.T) {
		users, page, err := List(db, controller.ListParams{})
		require.NoError(t, err)

		require.Len(t, users, 2)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, "Danny", users[0].Name)
		require.NotNil(t, users[0].Role)
		assert.Equal(t, models.RoleDeveloper, users[0].Role.Slug)
	})

	t.Run("search matches email", func(t *testing.T) {
		users, _, err := List(db, controller.ListParams{Search: "HELENA@"})
		require.NoError(t, err)

		require.Len(t, users, 1)
		assert.Equal(t, "Helena", users[0].Name)
	})

	t.Run("filter on role_id", func(t *testing.T) {
		users, _, err := List(db, controller.ListParams{
			Filters: map[string]string{"role_id": "1"},
		})
		require.NoError(t, err)

		require.Len(t, users, 1)
		assert.Equal(t, "Danny", users[0].Name)
	})

	t.Run("filter on unknown column is skipped", func(t *testing.T) {
		users, _, err := List(db, controller.ListParams{
			Filters: map[string]string{"department": "ops"},
		})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("nil database", func(t *testing.T) {
		_, _, err := List(nil, controller.ListParams{})
		assert.ErrorIs(t, err, ErrDBNil)
	})
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		data          map[string]any
		expectedError error
	}{
		{
			name:          "missing name",
			data:          map[string]any{"email": "a@example.com", "password": "secret123"},
			expectedError: ErrUserNameEmpty,
		},
		{
			name:          "missing email",
			data:          map[string]any{"name": "A", "password": "secret123"},
			expectedError: ErrUserEmailEmpty,
		},
		{
			name:          "missing password",
			data:          map[string]any{"name": "A", "email": "a@example.com"},
			expectedError: ErrUserPasswordEmpty,
		},
		{
			name: "successful create",
			data: map[string]any{"name": "A", "email": "a@example.com", "password": "secret123"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			created, err := Create(db, tc.data)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, "secret123", created.Password, "password must be stored hashed")
			assert.True(t, created.VerifyPassword("secret123"))
		})
	}
}

func TestCreateIgnoresUnknownFields(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{
		"name":     "B",
		"email":    "b@example.com",
		"password": "secret123",
		"is_admin": true,
		"id":       uint64(555),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uint64(555), created.ID)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{
		"name": "C", "email": "c@example.com", "password": "original-pass",
	})
	require.NoError(t, err)

	t.Run("omitted password keeps stored hash", func(t *testing.T) {
		updated, err := Update(db, created.ID, map[string]any{"name": "C Updated"})
		require.NoError(t, err)

		assert.Equal(t, "C Updated", updated.Name)
		assert.True(t, updated.VerifyPassword("original-pass"))
	})

	t.Run("empty password keeps stored hash", func(t *testing.T) {
		updated, err := Update(db, created.ID, map[string]any{"password": ""})
		require.NoError(t, err)
		assert.True(t, updated.VerifyPassword("original-pass"))
	})

	t.Run("new password is re-hashed", func(t *testing.T) {
		updated, err := Update(db, created.ID, map[string]any{"password": "rotated-pass"})
		require.NoError(t, err)

		assert.True(t, updated.VerifyPassword("rotated-pass"))
		assert.False(t, updated.VerifyPassword("original-pass"))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := Update(db, 9999, map[string]any{"name": "Ghost"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestFindByEmail(t *testing.T) {
	db := setupTestDB(t)
	role := seedRole(t, db, models.RoleAdmin)

	_, err := Create(db, map[string]any{
		"name": "D", "email": "d@example.com", "password": "secret123", "role_id": &role.ID,
	})
	require.NoError(t, err)

	found, err := FindByEmail(db, "d@example.com")
	require.NoError(t, err)
	require.NotNil(t, found.Role)
	assert.Equal(t, models.RoleAdmin, found.Role.Slug)

	_, err = FindByEmail(db, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = FindByEmail(db, "")
	assert.ErrorIs(t, err, ErrUserEmailEmpty)
}

func TestPendingLink(t *testing.T) {
	db := setupTestDB(t)
	adminRole := seedRole(t, db, models.RoleAdmin)
	devRole := seedRole(t, db, models.RoleDeveloper)

	acme := models.Client{Name: "Acme", Status: models.ClientStatusActive}
	require.NoError(t, db.Create(&acme).Error)

	linked, err := Create(db, map[string]any{
		"name": "Linked", "email": "linked@example.com", "password": "secret123",
		"role_id": &devRole.ID, "client_id": &acme.ID,
	})
	require.NoError(t, err)
	noClient, err := Create(db, map[string]any{
		"name": "NoClient", "email": "noclient@example.com", "password": "secret123", "role_id": &devRole.ID,
	})
	require.NoError(t, err)
	noRole, err := Create(db, map[string]any{
		"name": "NoRole", "email": "norole@example.com", "password": "secret123",
	})
	require.NoError(t, err)
	_, err = Create(db, map[string]any{
		"name": "Admin", "email": "admin@example.com", "password": "secret123", "role_id": &adminRole.ID,
	})
	require.NoError(t, err)

	// Make the ordering deterministic regardless of insert timing.
	base := time.Now().Add(-time.Hour)
	for i, u := range []*models.User{linked, noClient, noRole} {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	pending, err := PendingLink(db, 50)
	require.NoError(t, err)

	require.Len(t, pending, 2)
	assert.Equal(t, "NoRole", pending[0].Name, "newest pending account first")
	assert.Equal(t, "NoClient", pending[1].Name)
	require.NotNil(t, pending[1].Role)
	assert.Equal(t, models.RoleDeveloper, pending[1].Role.Slug)

	t.Run("limit", func(t *testing.T) {
		limited, err := PendingLink(db, 1)
		require.NoError(t, err)

		require.Len(t, limited, 1)
		assert.Equal(t, "NoRole", limited[0].Name)
	})

	t.Run("nil database", func(t *testing.T) {
		_, err := PendingLink(nil, 50)
		assert.ErrorIs(t, err, ErrDBNil)
	})
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{
		"name": "E", "email": "e@example.com", "password": "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, Delete(db, created.ID))
	assert.ErrorIs(t, Delete(db, created.ID), ErrUserNotFound)
}

func TestCount(t *testing.T) {
	db := setupTestDB(t)

	_, err := Count(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	total, err := Count(db)
	require.NoError(t, err)
	assert.Zero(t, total)

	for _, u := range []map[string]any{
		{"name": "Helena", "email": "helena@example.com", "password": "secret123"},
		{"name": "Marcos", "email": "marcos@example.com", "password": "secret123"},
	} {
		_, err = Create(db, u)
		require.NoError(t, err)
	}

	total, err = Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
