package models

import "time"

// ClientConfig holds the per-client deployment target configuration.
// One-to-one with Client; references the host deployments land on.
type ClientConfig struct {
	// ID is the unique identifier for the config.
	ID uint `gorm:"primaryKey"`
	// ClientID is the owning client (one config per client).
	ClientID uint `gorm:"column:client_id;not null;uniqueIndex"`
	// HostID references the deployment target host.
	HostID string `gorm:"column:host_id;size:36;not null"`
	// Host is the associated host (loaded via foreign key).
	Host *Host `gorm:"foreignKey:HostID;references:ID"`
	// ConfigKey identifies the remote configuration entry for this client.
	ConfigKey string `gorm:"size:255;not null"`
	// DBHost is the database host of the client environment.
	DBHost string `gorm:"size:255"`
	// DBPort is the database port of the client environment.
	DBPort string `gorm:"size:10"`
	// DBUsername is the database user of the client environment.
	DBUsername string `gorm:"size:255"`
	// DBPassword is the database password of the client environment.
	DBPassword string `gorm:"size:255"`
	// CreatedAt is the timestamp when the config was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the config was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the ClientConfig model.
func (ClientConfig) TableName() string {
	return "client_configs"
}
