// Package version provides CRUD operations for managing release versions.
package version

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrVersionNotFound is returned when a version is not found.
	ErrVersionNotFound = errors.New("version not found")
	// ErrVersionTagEmpty is returned when attempting to create a version without a tag.
	ErrVersionTagEmpty = errors.New("version tag cannot be empty")
	// ErrVersionNameEmpty is returned when attempting to create a version without a name.
	ErrVersionNameEmpty = errors.New("version name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves a page of versions, newest first. Search matches name or tag.
func List(db *gorm.DB, params controller.ListParams) ([]models.Version, controller.PageInfo, error) {
	if db == nil {
		return nil, controller.PageInfo{}, ErrDBNil
	}

	params.Normalize()

	query := db.Model(&models.Version{})

	if params.Search != "" {
		pattern := controller.SearchClause(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(tag) LIKE ?", pattern, pattern)
	}

	query = controller.ApplyFilters(query, &models.Version{}, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, controller.PageInfo{}, err
	}

	var versions []models.Version
	err := query.Order("created_at DESC").
		Limit(params.PageSize).Offset(params.Offset()).
		Find(&versions).Error
	if err != nil {
		return nil, controller.PageInfo{}, err
	}

	return versions, controller.NewPageInfo(params, total), nil
}

// Latest retrieves the most recently created version, or nil when none exist.
func Latest(db *gorm.DB) (*models.Version, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var version models.Version
	result := db.Order("created_at DESC").First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &version, nil
}

// Recent retrieves the n most recently created versions.
func Recent(db *gorm.DB, n int) ([]models.Version, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var versions []models.Version
	if err := db.Order("created_at DESC").Limit(n).Find(&versions).Error; err != nil {
		return nil, err
	}

	return versions, nil
}

// Find retrieves a version by ID.
func Find(db *gorm.DB, id string) (*models.Version, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var version models.Version
	result := db.Where("id = ?", id).First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, result.Error
	}

	return &version, nil
}

// Create creates a new version from form data. Unknown fields are ignored.
func Create(db *gorm.DB, data map[string]any) (*models.Version, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	version := &models.Version{}
	applyFields(version, data)

	if version.Name == "" {
		return nil, ErrVersionNameEmpty
	}
	if version.Tag == "" {
		return nil, ErrVersionTagEmpty
	}

	result := db.Create(version)
	if result.Error != nil {
		return nil, result.Error
	}

	return version, nil
}

// Update updates an existing version from form data. Unknown fields are ignored.
func Update(db *gorm.DB, id string, data map[string]any) (*models.Version, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	version, err := Find(db, id)
	if err != nil {
		return nil, err
	}

	applyFields(version, data)

	if version.Name == "" {
		return nil, ErrVersionNameEmpty
	}
	if version.Tag == "" {
		return nil, ErrVersionTagEmpty
	}

	result := db.Save(version)
	if result.Error != nil {
		return nil, result.Error
	}

	return version, nil
}

// Delete deletes a version by ID.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ?", id).Delete(&models.Version{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionNotFound
	}

	return nil
}

func applyFields(version *models.Version, data map[string]any) {
	if v, ok := data["name"].(string); ok {
		version.Name = v
	}

	if v, ok := data["tag"].(string); ok {
		version.Tag = v
	}

	if v, ok := data["notes"].(string); ok {
		version.Notes = v
	}
}
