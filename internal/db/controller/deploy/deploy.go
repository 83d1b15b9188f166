// Package deploy provides CRUD and review operations for deploy requests.
package deploy

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/controller"
	"github.com/deploypanel/deploypanel/internal/db/models"
)

var (
	// ErrDeployNotFound is returned when a deploy is not found.
	ErrDeployNotFound = errors.New("deploy not found")
	// ErrDeployClientRequired is returned when attempting to create a deploy without a client.
	ErrDeployClientRequired = errors.New("deploy requires a target client")
	// ErrDeployVersionRequired is returned when attempting to create a deploy without a version.
	ErrDeployVersionRequired = errors.New("deploy requires a version")
	// ErrNotReviewable is returned when approving or rejecting a deploy that left the pending state.
	ErrNotReviewable = errors.New("deploy is not pending review")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves a page of deploys with user, client and version preloaded,
// newest first. Filters apply exact matches on existing columns only.
func List(db *gorm.DB, params controller.ListParams) ([]models.Deploy, controller.PageInfo, error) {
	if db == nil {
		return nil, controller.PageInfo{}, ErrDBNil
	}

	params.Normalize()

	query := db.Model(&models.Deploy{})

	if params.Search != "" {
		query = query.Where(
			"client_id IN (?)",
			db.Model(&models.Client{}).Select("id").
				Where("LOWER(name) LIKE ?", controller.SearchClause(params.Search)),
		)
	}

	query = controller.ApplyFilters(query, &models.Deploy{}, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, controller.PageInfo{}, err
	}

	var deploys []models.Deploy
	err := query.Preload("User").Preload("Client").Preload("Version").
		Order("created_at DESC").
		Limit(params.PageSize).Offset(params.Offset()).
		Find(&deploys).Error
	if err != nil {
		return nil, controller.PageInfo{}, err
	}

	return deploys, controller.NewPageInfo(params, total), nil
}

// ListForClient retrieves the deploys targeting one client, newest first.
// Client-role users only ever see their own environment's deploys.
func ListForClient(db *gorm.DB, clientID uint, params controller.ListParams) ([]models.Deploy, controller.PageInfo, error) {
	if params.Filters == nil {
		params.Filters = make(map[string]string)
	}

	params.Filters["client_id"] = strconv.FormatUint(uint64(clientID), 10)

	return List(db, params)
}

// Find retrieves a deploy by ID with user, client and version preloaded.
func Find(db *gorm.DB, id string) (*models.Deploy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var deploy models.Deploy
	result := db.Preload("User").Preload("Client").Preload("Version").
		Where("id = ?", id).First(&deploy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDeployNotFound
		}
		return nil, result.Error
	}

	return &deploy, nil
}

// Pending retrieves pending deploys awaiting review, oldest first.
func Pending(db *gorm.DB, limit int) ([]models.Deploy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var deploys []models.Deploy
	err := db.Preload("Client").Preload("Version").
		Where("status = ?", models.DeployStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&deploys).Error
	if err != nil {
		return nil, err
	}

	return deploys, nil
}

// CountByStatus returns the number of deploys per status.
func CountByStatus(db *gorm.DB) (map[models.DeployStatus]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		Status models.DeployStatus
		Total  int64
	}

	err := db.Model(&models.Deploy{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.DeployStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

// Create creates a new pending deploy requested by the given user.
func Create(db *gorm.DB, userID uint64, data map[string]any) (*models.Deploy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	deploy := &models.Deploy{
		UserID: userID,
		Status: models.DeployStatusPending,
	}
	applyFields(deploy, data)

	if deploy.ClientID == 0 {
		return nil, ErrDeployClientRequired
	}
	if deploy.VersionID == "" {
		return nil, ErrDeployVersionRequired
	}

	result := db.Create(deploy)
	if result.Error != nil {
		return nil, result.Error
	}

	return deploy, nil
}

// Update updates the notes of an existing deploy. Target and requester are
// fixed once created; a wrong target means reject-and-recreate.
func Update(db *gorm.DB, id string, data map[string]any) (*models.Deploy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	deploy, err := Find(db, id)
	if err != nil {
		return nil, err
	}

	if v, ok := data["notes"].(string); ok {
		deploy.Notes = v
	}

	result := db.Save(deploy)
	if result.Error != nil {
		return nil, result.Error
	}

	return deploy, nil
}

// Approve marks a pending deploy as approved and stamps the approval time.
func Approve(db *gorm.DB, id string) (*models.Deploy, error) {
	return review(db, id, models.DeployStatusApproved)
}

// Reject marks a pending deploy as rejected.
func Reject(db *gorm.DB, id string) (*models.Deploy, error) {
	return review(db, id, models.DeployStatusRejected)
}

func review(db *gorm.DB, id string, status models.DeployStatus) (*models.Deploy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	deploy, err := Find(db, id)
	if err != nil {
		return nil, err
	}

	if deploy.Status != models.DeployStatusPending {
		return nil, ErrNotReviewable
	}

	deploy.Status = status
	if status == models.DeployStatusApproved {
		now := time.Now()
		deploy.ApprovedAt = &now
	}

	result := db.Save(deploy)
	if result.Error != nil {
		return nil, result.Error
	}

	return deploy, nil
}

// Delete deletes a deploy by ID.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ?", id).Delete(&models.Deploy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDeployNotFound
	}

	return nil
}

func applyFields(deploy *models.Deploy, data map[string]any) {
	if v, ok := data["client_id"].(uint); ok {
		deploy.ClientID = v
	}

	if v, ok := data["version_id"].(string); ok {
		deploy.VersionID = v
	}

	if v, ok := data["notes"].(string); ok {
		deploy.Notes = v
	}
}
