package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Version represents a released application version available for deployment.
type Version struct {
	// ID is the generated unique identifier for the version.
	ID string `gorm:"primaryKey;size:36"`
	// Name is the human-readable release name.
	Name string `gorm:"size:255;not null"`
	// Tag is the unique version tag (e.g., "v2.4.1").
	Tag string `gorm:"unique;size:100;not null"`
	// Notes holds free-form release notes.
	Notes string `gorm:"type:text"`
	// CreatedAt is the timestamp when the version was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the version was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Version model.
func (Version) TableName() string {
	return "versions"
}

// BeforeCreate assigns a generated UUID when none was provided.
func (v *Version) BeforeCreate(_ *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	return nil
}
