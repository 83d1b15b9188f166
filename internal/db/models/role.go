package models

import "time"

// Role slugs seeded at setup. They are immutable reference data and the only
// values the policy rules compare against.
const (
	// RoleAdmin has every permission in the catalog.
	RoleAdmin = "admin"
	// RoleDeveloper manages versions and deploys.
	RoleDeveloper = "developer"
	// RoleClient reviews and approves deploys for its own client.
	RoleClient = "client"
)

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions that can be assigned to users.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the human-readable name of the role (e.g., "Admin").
	Name string `gorm:"size:100;not null"`
	// Slug is the unique machine-readable identifier (e.g., "admin").
	Slug string `gorm:"unique;size:100;not null"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
