// Package user provides CRUD operations for managing user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserNameEmpty is returned when attempting to create a user without a name.
	ErrUserNameEmpty = errors.New("user name cannot be empty")
	// ErrUserEmailEmpty is returned when attempting to create a user without an email.
	ErrUserEmailEmpty = errors.New("user email cannot be empty")
	// ErrUserPasswordEmpty is returned when attempting to create a user without a password.
	ErrUserPasswordEmpty = errors.New("user password cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves a page of users with role and client preloaded. Search
// matches name or email case-insensitively; filters apply exact matches on
// existing columns only.
func List(db *gorm.DB, params controller.ListParams) ([]models.User, controller.PageInfo, error) {
	if db == nil {
		return nil, controller.PageInfo{}, ErrDBNil
	}

	params.Normalize()

	query := db.Model(&models.User{})

	if params.Search != "" {
		pattern := controller.SearchClause(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	query = controller.ApplyFilters(query, &models.User{}, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, controller.PageInfo{}, err
	}

	var users []models.User
	err := query.Preload("Role").Preload("Client").
		Order("name ASC").
		Limit(params.PageSize).Offset(params.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, controller.PageInfo{}, err
	}

	return users, controller.NewPageInfo(params, total), nil
}

// Count returns the total number of users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// Find retrieves a user by ID with role and client preloaded.
func Find(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.Preload("Role").Preload("Client").First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// FindByEmail retrieves a user by email with the role preloaded.
func FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if email == "" {
		return nil, ErrUserEmailEmpty
	}

	var user models.User
	result := db.Preload("Role").Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// PendingLink retrieves users missing a client or role link, newest first.
// Admin accounts never need a client, so they are excluded. These are
// self-registered accounts waiting for an admin to link them.
func PendingLink(db *gorm.DB, limit int) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	err := db.Preload("Role").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Where("users.client_id IS NULL OR users.role_id IS NULL").
		Where("roles.slug IS NULL OR roles.slug <> ?", models.RoleAdmin).
		Order("users.created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// Create creates a new user from form data. The password is hashed before
// storage and unknown fields are ignored.
func Create(db *gorm.DB, data map[string]any) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	user := &models.User{}
	applyFields(user, data)

	switch {
	case user.Name == "":
		return nil, ErrUserNameEmpty
	case user.Email == "":
		return nil, ErrUserEmailEmpty
	case user.Password == "":
		return nil, ErrUserPasswordEmpty
	}

	user.Password = models.HashPassword(user.Password)

	result := db.Create(user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

// Update updates an existing user from form data. An empty or absent
// password keeps the stored hash; a non-empty one is re-hashed.
func Update(db *gorm.DB, id uint64, data map[string]any) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	storedHash := user.Password
	user.Password = ""
	applyFields(&user, data)

	if user.Password == "" {
		user.Password = storedHash
	} else {
		user.Password = models.HashPassword(user.Password)
	}

	if user.Name == "" {
		return nil, ErrUserNameEmpty
	}
	if user.Email == "" {
		return nil, ErrUserEmailEmpty
	}

	result = db.Save(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// Delete deletes a user by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// applyFields copies the allowed form fields onto the model. Fields outside
// the allow list never reach the database.
func applyFields(user *models.User, data map[string]any) {
	if v, ok := data["name"].(string); ok {
		user.Name = v
	}

	if v, ok := data["email"].(string); ok {
		user.Email = v
	}

	if v, ok := data["password"].(string); ok {
		user.Password = v
	}

	if v, ok := data["role_id"].(*uint); ok {
		user.RoleID = v
	}

	if v, ok := data["client_id"].(*uint); ok {
		user.ClientID = v
	}
}
