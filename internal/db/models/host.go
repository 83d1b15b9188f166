package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Host represents a deployment target machine.
// Hosts get a generated UUID primary key instead of a sequential one so ids
// never collide across environments.
type Host struct {
	// ID is the generated unique identifier for the host.
	ID string `gorm:"primaryKey;size:36"`
	// IP is the address deployments connect to.
	IP string `gorm:"size:45;not null"`
	// Credentials is an opaque JSON blob with the host access credentials.
	Credentials string `gorm:"type:text"`
	// CreatedAt is the timestamp when the host was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the host was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Host model.
func (Host) TableName() string {
	return "hosts"
}

// BeforeCreate assigns a generated UUID when none was provided.
func (h *Host) BeforeCreate(_ *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	return nil
}
