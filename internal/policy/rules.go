package policy

import (
	"github.com/deploypanel/deploypanel/internal/db/models"
)

// namedRules is the fixed dispatch table for the named-policy path:
// (resource, action) -> role slugs allowed. Resources without an entry fall
// back to the slug-based grant lookup.
var namedRules = map[Resource]map[Action][]string{
	ResourceClient: {
		ActionViewAny:     {models.RoleAdmin},
		ActionView:        {models.RoleAdmin},
		ActionCreate:      {models.RoleAdmin},
		ActionUpdate:      {models.RoleAdmin},
		ActionDelete:      {models.RoleAdmin},
		ActionRestore:     {models.RoleAdmin},
		ActionForceDelete: {models.RoleAdmin},
	},
	ResourceUsers: {
		ActionViewAny:     {models.RoleAdmin, models.RoleDeveloper},
		ActionView:        {models.RoleAdmin, models.RoleDeveloper},
		ActionCreate:      {models.RoleAdmin, models.RoleDeveloper},
		ActionUpdate:      {models.RoleAdmin},
		ActionDelete:      {models.RoleAdmin},
		ActionRestore:     {models.RoleAdmin},
		ActionForceDelete: {models.RoleAdmin},
	},
}

// allowsSelf reports whether the action is permitted because the acting user
// targets their own record. The only self-service rule is editing one's own
// user account.
func allowsSelf(user *models.User, resource Resource, action Action, target any) bool {
	if resource != ResourceUsers || action != ActionUpdate {
		return false
	}

	targetUser, ok := target.(*models.User)
	if !ok || targetUser == nil {
		return false
	}

	return user.ID == targetUser.ID
}
