package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeployStatus represents the lifecycle status of a deploy.
type DeployStatus string

const (
	// DeployStatusPending is the initial status of a created deploy.
	DeployStatusPending DeployStatus = "pending"
	// DeployStatusApproved marks a deploy cleared for execution.
	DeployStatusApproved DeployStatus = "approved"
	// DeployStatusRejected marks a deploy declined by the client.
	DeployStatusRejected DeployStatus = "rejected"
	// DeployStatusRunning marks a deploy currently executing.
	DeployStatusRunning DeployStatus = "running"
	// DeployStatusFinished marks a completed deploy.
	DeployStatusFinished DeployStatus = "finished"
)

// Deploy represents a request to roll out a version to a client environment.
type Deploy struct {
	// ID is the generated unique identifier for the deploy.
	ID string `gorm:"primaryKey;size:36"`
	// UserID is the user who requested the deploy.
	UserID uint64 `gorm:"column:user_id;not null"`
	// User is the requesting user (loaded via foreign key).
	User *User `gorm:"foreignKey:UserID"`
	// ClientID is the target client environment.
	ClientID uint `gorm:"column:client_id;not null"`
	// Client is the target client (loaded via foreign key).
	Client *Client `gorm:"foreignKey:ClientID"`
	// VersionID is the version being rolled out.
	VersionID string `gorm:"column:version_id;size:36;not null"`
	// Version is the version being rolled out (loaded via foreign key).
	Version *Version `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE"`
	// StartedAt is when execution began (nil until started).
	StartedAt *time.Time
	// FinishedAt is when execution completed (nil until finished).
	FinishedAt *time.Time
	// ApprovedAt is when the deploy was approved (nil until approved).
	ApprovedAt *time.Time
	// Notes holds free-form deployment notes as a JSON blob.
	Notes string `gorm:"type:text"`
	// Log holds the captured execution log as a JSON blob.
	Log string `gorm:"type:text"`
	// Status is the deploy lifecycle status.
	Status DeployStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	// CreatedAt is the timestamp when the deploy was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the deploy was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Deploy model.
func (Deploy) TableName() string {
	return "deploys"
}

// BeforeCreate assigns a generated UUID when none was provided.
func (d *Deploy) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	return nil
}
