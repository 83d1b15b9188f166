// Package host provides CRUD operations for managing deployment hosts.
package host

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrHostNotFound is returned when a host is not found.
	ErrHostNotFound = errors.New("host not found")
	// ErrHostIPEmpty is returned when attempting to create a host without an IP.
	ErrHostIPEmpty = errors.New("host ip cannot be empty")
	// ErrInvalidCredentials is returned when the credentials payload is not valid JSON.
	ErrInvalidCredentials = errors.New("host credentials must be valid JSON")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves a page of hosts. Search matches the IP.
func List(db *gorm.DB, params controller.ListParams) ([]models.Host, controller.PageInfo, error) {
	if db == nil {
		return nil, controller.PageInfo{}, ErrDBNil
	}

	params.Normalize()

	query := db.Model(&models.Host{})

	if params.Search != "" {
		query = query.Where("LOWER(ip) LIKE ?", controller.SearchClause(params.Search))
	}

	query = controller.ApplyFilters(query, &models.Host{}, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, controller.PageInfo{}, err
	}

	var hosts []models.Host
	err := query.Order("created_at DESC").
		Limit(params.PageSize).Offset(params.Offset()).
		Find(&hosts).Error
	if err != nil {
		return nil, controller.PageInfo{}, err
	}

	return hosts, controller.NewPageInfo(params, total), nil
}

// GetAll retrieves every host, for selection dropdowns.
func GetAll(db *gorm.DB) ([]models.Host, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var hosts []models.Host
	if err := db.Order("ip ASC").Find(&hosts).Error; err != nil {
		return nil, err
	}

	return hosts, nil
}

// Find retrieves a host by ID.
func Find(db *gorm.DB, id string) (*models.Host, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var host models.Host
	result := db.Where("id = ?", id).First(&host)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, result.Error
	}

	return &host, nil
}

// Create creates a new host from form data. Unknown fields are ignored.
func Create(db *gorm.DB, data map[string]any) (*models.Host, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	host := &models.Host{}
	if err := applyFields(host, data); err != nil {
		return nil, err
	}

	if host.IP == "" {
		return nil, ErrHostIPEmpty
	}

	result := db.Create(host)
	if result.Error != nil {
		return nil, result.Error
	}

	return host, nil
}

// Update updates an existing host from form data. Unknown fields are ignored.
func Update(db *gorm.DB, id string, data map[string]any) (*models.Host, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	host, err := Find(db, id)
	if err != nil {
		return nil, err
	}

	if err := applyFields(host, data); err != nil {
		return nil, err
	}

	if host.IP == "" {
		return nil, ErrHostIPEmpty
	}

	result := db.Save(host)
	if result.Error != nil {
		return nil, result.Error
	}

	return host, nil
}

// Delete deletes a host by ID.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ?", id).Delete(&models.Host{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHostNotFound
	}

	return nil
}

// applyFields copies the allowed form fields onto the model. Credentials are
// validated as JSON before storage since the column is an opaque blob.
func applyFields(host *models.Host, data map[string]any) error {
	if v, ok := data["ip"].(string); ok {
		host.IP = v
	}

	if v, ok := data["credentials"].(string); ok && v != "" {
		if !json.Valid([]byte(v)) {
			return ErrInvalidCredentials
		}

		host.Credentials = v
	}

	return nil
}
