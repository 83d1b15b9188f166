package client

import (
	"testing"

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

	err = db.AutoMigrate(&models.Client{}, &models.ClientConfig{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedClients inserts test data into the database.
func seedClients(t *testing.T, db *gorm.DB, clients []models.Client) {
	t.Helper()
	for _, c := range clients {
		err := db.Create(&c).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	seedClients(t, db, []models.Client{
		{Name: "Koch", Status: models.ClientStatusActive},
		{Name: "Veneza", Status: models.ClientStatusActive},
		{Name: "Kikker", Status: models.ClientStatusInactive},
	})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		params        controller.ListParams
		expectedError error
		expectedNames []string
		expectedTotal int64
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			expectedError: ErrDBNil,
		},
		{
			name:          "all clients ordered by name",
			dbParam:       db,
			expectedNames: []string{"Kikker", "Koch", "Veneza"},
			expectedTotal: 3,
		},
		{
			name:          "search is case-insensitive",
			dbParam:       db,
			params:        controller.ListParams{Search: "koch"},
			expectedNames: []string{"Koch"},
			expectedTotal: 1,
		},
		{
			name:          "filter on status",
			dbParam:       db,
			params:        controller.ListParams{Filters: map[string]string{"status": "inactive"}},
			expectedNames: []string{"Kikker"},
			expectedTotal: 1,
		},
		{
			name:          "filter on unknown column is skipped",
			dbParam:       db,
			params:        controller.ListParams{Filters: map[string]string{"no_such_column": "x"}},
			expectedNames: []string{"Kikker", "Koch", "Veneza"},
			expectedTotal: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clients, page, err := List(tc.dbParam, tc.params)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, page.Total)

			names := make([]string, 0, len(clients))
			for _, c := range clients {
				names = append(names, c.Name)
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)

	var seed []models.Client
	for i := 0; i < 20; i++ {
		seed = append(seed, models.Client{Name: "Client " + string(rune('A'+i)), Status: models.ClientStatusActive})
	}
	seedClients(t, db, seed)

	clients, page, err := List(db, controller.ListParams{Page: 2})
	require.NoError(t, err)

	assert.Len(t, clients, 5)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, controller.DefaultPageSize, page.PageSize)
	assert.Equal(t, int64(20), page.Total)
	assert.Equal(t, 2, page.LastPage)
}

func TestFind(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{"name": "Mercale"})
	require.NoError(t, err)

	found, err := Find(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mercale", found.Name)
	assert.Equal(t, models.ClientStatusActive, found.Status)

	_, err = Find(db, 9999)
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = Find(nil, created.ID)
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		data          map[string]any
		expectedError error
		check         func(t *testing.T, c *models.Client)
	}{
		{
			name:          "missing name",
			data:          map[string]any{"status": "active"},
			expectedError: ErrClientNameEmpty,
		},
		{
			name: "defaults to active status",
			data: map[string]any{"name": "Dalben"},
			check: func(t *testing.T, c *models.Client) {
				assert.Equal(t, models.ClientStatusActive, c.Status)
			},
		},
		{
			name: "unknown fields are ignored",
			data: map[string]any{"name": "Ivasko", "id": uint(777), "owner": "nobody"},
			check: func(t *testing.T, c *models.Client) {
				assert.NotEqual(t, uint(777), c.ID)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Create(db, tc.data)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			require.NotZero(t, c.ID)
			if tc.check != nil {
				tc.check(t, c)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{"name": "Araujo"})
	require.NoError(t, err)

	updated, err := Update(db, created.ID, map[string]any{"status": "suspended"})
	require.NoError(t, err)
	assert.Equal(t, "Araujo", updated.Name, "omitted fields keep their value")
	assert.Equal(t, models.ClientStatusSuspended, updated.Status)

	_, err = Update(db, 9999, map[string]any{"name": "Ghost"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, map[string]any{"name": "Rede Pas"})
	require.NoError(t, err)

	require.NoError(t, Delete(db, created.ID))
	assert.ErrorIs(t, Delete(db, created.ID), ErrClientNotFound)
	assert.ErrorIs(t, Delete(nil, created.ID), ErrDBNil)
}

func TestCount(t *testing.T) {
	db := setupTestDB(t)

	_, err := Count(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	total, err := Count(db)
	require.NoError(t, err)
	assert.Zero(t, total)

	seedClients(t, db, []models.Client{
		{Name: "Koch", Status: models.ClientStatusActive},
		{Name: "Ivasko", Status: models.ClientStatusInactive},
	})

	total, err = Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
