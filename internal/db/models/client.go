package models

import "time"

// ClientStatus represents the lifecycle status of a client.
type ClientStatus string

const (
	// ClientStatusActive indicates the client is active and deployable.
	ClientStatusActive ClientStatus = "active"
	// ClientStatusInactive indicates the client is disabled.
	ClientStatusInactive ClientStatus = "inactive"
	// ClientStatusSuspended indicates the client is suspended.
	ClientStatusSuspended ClientStatus = "suspended"
)

// ClientStatuses lists every valid client status, for form validation.
func ClientStatuses() []ClientStatus {
	return []ClientStatus{ClientStatusActive, ClientStatusInactive, ClientStatusSuspended}
}

// Client represents a customer environment managed through the console.
// A client owns zero-or-more users and exactly one deployment configuration.
type Client struct {
	// ID is the unique identifier for the client.
	ID uint `gorm:"primaryKey"`
	// Name is the client's display name.
	Name string `gorm:"size:255;not null"`
	// Status is the client lifecycle status (active, inactive or suspended).
	Status ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`
	// Users are the accounts scoped to this client.
	Users []User `gorm:"foreignKey:ClientID"`
	// Config is the one-to-one deployment target configuration.
	Config *ClientConfig `gorm:"foreignKey:ClientID"`
	// CreatedAt is the timestamp when the client was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the client was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Client model.
func (Client) TableName() string {
	return "clients"
}
