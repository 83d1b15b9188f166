package models

import "time"

// Permission represents a specific permission in the authorization system.
// Permissions define granular access rights to resources and actions.
// They are seeded once as reference data and assigned to roles.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the human-readable permission name (e.g., "Update Users").
	Name string `gorm:"size:100;not null"`
	// Slug is the unique permission identifier in resource-action format (e.g., "users-update").
	Slug string `gorm:"unique;size:100;not null"`
	// GuardName is the guard/scope tag the permission applies to (e.g., "web").
	GuardName string `gorm:"size:50;not null"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
