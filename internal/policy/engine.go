package policy

import (
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/models"
)

// Engine decides whether an acting user may perform an action. It holds the
// role-permission grant map loaded from the database; grants only change at
// seed time, so a load-at-startup cache is sufficient. Reload exists for
// tests and re-seeding.
type Engine struct {
	db *gorm.DB

	mu     sync.RWMutex
	grants map[uint]map[string]struct{} // role id -> permission slugs
}

// NewEngine creates an authorization engine and loads the grant map.
func NewEngine(db *gorm.DB) (*Engine, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	e := &Engine{db: db}
	if err := e.Reload(); err != nil {
		return nil, err
	}

	return e, nil
}

// Reload re-reads the role-permission grant map from the database.
func (e *Engine) Reload() error {
	var rows []struct {
		RoleID uint
		Slug   string
	}

	err := e.db.Table("role_permissions").
		Select("role_permissions.role_id, permissions.slug").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load role permission grants: %w", err)
	}

	grants := make(map[uint]map[string]struct{})

	for _, row := range rows {
		if grants[row.RoleID] == nil {
			grants[row.RoleID] = make(map[string]struct{})
		}

		grants[row.RoleID][row.Slug] = struct{}{}
	}

	e.mu.Lock()
	e.grants = grants
	e.mu.Unlock()

	return nil
}

// HasPermission checks the slug-based path: allow iff the acting user's role
// holds the permission slug. A user without a role is denied everything.
func (e *Engine) HasPermission(user *models.User, slug string) bool {
	if user == nil || user.RoleID == nil {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.grants[*user.RoleID][slug]

	return ok
}

// Allows checks the named-policy path: a single dispatch over
// (resource, action, role) plus the self-access override. Resources without
// a named rule fall back to the slug-based grant lookup so both styles can
// be used side by side.
func (e *Engine) Allows(user *models.User, resource Resource, action Action, target any) bool {
	if user == nil || user.Role == nil {
		return false
	}

	actions, ok := namedRules[resource]
	if !ok {
		return e.HasPermission(user, Slug(resource, action))
	}

	if slices.Contains(actions[action], user.Role.Slug) {
		return true
	}

	return allowsSelf(user, resource, action, target)
}

// Authorize evaluates the named-policy path and returns ErrDenied on deny.
func (e *Engine) Authorize(user *models.User, resource Resource, action Action, target any) error {
	if !e.Allows(user, resource, action, target) {
		return ErrDenied
	}

	return nil
}

// AuthorizeSlug evaluates the slug-based path and returns ErrDenied on deny.
func (e *Engine) AuthorizeSlug(user *models.User, slug string) error {
	if !e.HasPermission(user, slug) {
		return ErrDenied
	}

	return nil
}

// PermissionsFor returns every permission slug the user's role grants.
// Used to expose the permission set to templates for conditional rendering.
func (e *Engine) PermissionsFor(user *models.User) []string {
	if user == nil || user.RoleID == nil {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	slugs := make([]string, 0, len(e.grants[*user.RoleID]))
	for slug := range e.grants[*user.RoleID] {
		slugs = append(slugs, slug)
	}

	slices.Sort(slugs)

	return slugs
}
