// Package clientconfig provides operations for per-client deployment configs.
package clientconfig

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrConfigNotFound is returned when a client has no deployment config.
	ErrConfigNotFound = errors.New("client config not found")
	// ErrHostRequired is returned when attempting to save a config without a host.
	ErrHostRequired = errors.New("client config requires a host")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// FindByClient retrieves the deployment config of a client with the host preloaded.
func FindByClient(db *gorm.DB, clientID uint) (*models.ClientConfig, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var config models.ClientConfig
	result := db.Preload("Host").Where("client_id = ?", clientID).First(&config)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, result.Error
	}

	return &config, nil
}

// Set creates or replaces the deployment config of a client. One config per
// client is enforced, so an existing record is updated in place.
func Set(db *gorm.DB, clientID uint, data map[string]any) (*models.ClientConfig, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var config models.ClientConfig
	result := db.Where("client_id = ?", clientID).First(&config)

	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	config.ClientID = clientID
	applyFields(&config, data)

	if config.HostID == "" {
		return nil, ErrHostRequired
	}

	if err := db.Save(&config).Error; err != nil {
		return nil, err
	}

	return &config, nil
}

// Delete removes the deployment config of a client.
func Delete(db *gorm.DB, clientID uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("client_id = ?", clientID).Delete(&models.ClientConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}

	return nil
}

func applyFields(config *models.ClientConfig, data map[string]any) {
	if v, ok := data["host_id"].(string); ok {
		config.HostID = v
	}

	if v, ok := data["config_key"].(string); ok {
		config.ConfigKey = v
	}

	if v, ok := data["db_host"].(string); ok {
		config.DBHost = v
	}

	if v, ok := data["db_port"].(string); ok {
		config.DBPort = v
	}

	if v, ok := data["db_username"].(string); ok {
		config.DBUsername = v
	}

	if v, ok := data["db_password"].(string); ok {
		config.DBPassword = v
	}
}
