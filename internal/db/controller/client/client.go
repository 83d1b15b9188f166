// Package client provides CRUD operations for managing clients.
package client

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrClientNotFound is returned when a client is not found.
	ErrClientNotFound = errors.New("client not found")
	// ErrClientNameEmpty is returned when attempting to create a client without a name.
	ErrClientNameEmpty = errors.New("client name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves a page of clients. Search matches the name case-insensitively
// and filters apply exact matches on existing columns only.
func List(db *gorm.DB, params controller.ListParams) ([]models.Client, controller.PageInfo, error) {
	if db == nil {
		return nil, controller.PageInfo{}, ErrDBNil
	}

	params.Normalize()

	query := db.Model(&models.Client{})

	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", controller.SearchClause(params.Search))
	}

	query = controller.ApplyFilters(query, &models.Client{}, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, controller.PageInfo{}, err
	}

	var clients []models.Client
	err := query.Order("name ASC").
		Limit(params.PageSize).Offset(params.Offset()).
		Find(&clients).Error
	if err != nil {
		return nil, controller.PageInfo{}, err
	}

	return clients, controller.NewPageInfo(params, total), nil
}

// Count returns the total number of clients.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Client{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// Find retrieves a client by ID, with its deployment config preloaded.
func Find(db *gorm.DB, id uint) (*models.Client, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var client models.Client
	result := db.Preload("Config").First(&client, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, result.Error
	}

	return &client, nil
}

// Create creates a new client from form data. Unknown fields are ignored.
func Create(db *gorm.DB, data map[string]any) (*models.Client, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	client := &models.Client{Status: models.ClientStatusActive}
	applyFields(client, data)

	if client.Name == "" {
		return nil, ErrClientNameEmpty
	}

	result := db.Create(client)
	if result.Error != nil {
		return nil, result.Error
	}

	return client, nil
}

// Update updates an existing client from form data. Unknown fields are ignored.
func Update(db *gorm.DB, id uint, data map[string]any) (*models.Client, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var client models.Client
	result := db.First(&client, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, result.Error
	}

	applyFields(&client, data)

	if client.Name == "" {
		return nil, ErrClientNameEmpty
	}

	result = db.Save(&client)
	if result.Error != nil {
		return nil, result.Error
	}

	return &client, nil
}

// Delete deletes a client by ID.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Client{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// applyFields copies the allowed form fields onto the model. Fields outside
// the allow list never reach the database.
func applyFields(client *models.Client, data map[string]any) {
	if v, ok := data["name"].(string); ok {
		client.Name = v
	}

	if v, ok := data["status"].(string); ok && v != "" {
		client.Status = models.ClientStatus(v)
	}
}
