// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a staff account in the system.
// Users are assigned a role for permission checks and may be scoped to a
// single client. Both references are nullable: accounts created during
// onboarding stay unlinked until an admin assigns them.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the user's display name.
	Name string `gorm:"size:255;not null"`
	// Email is the unique email address used for login.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// RoleID is the ID of the role assigned to this user (nil while pending link).
	RoleID *uint `gorm:"column:role_id"`
	// Role is the associated role (loaded via foreign key).
	Role *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// ClientID is the ID of the client this user is scoped to (nil for unscoped accounts).
	ClientID *uint `gorm:"column:client_id"`
	// Client is the associated client (loaded via foreign key).
	Client *Client `gorm:"foreignKey:ClientID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// RoleSlug returns the slug of the user's role, or the empty string when the
// user has no role assigned yet.
func (u *User) RoleSlug() string {
	if u.Role == nil {
		return ""
	}

	return u.Role.Slug
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
