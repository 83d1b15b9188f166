package policy

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific permission slug.
func RequirePermission(engine *Engine, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := userFromSession(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if !engine.HasPermission(user, permission) {
			log.Warn().Uint64("user_id", user.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permission slugs.
func RequireAnyPermission(engine *Engine, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := userFromSession(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		for _, permission := range permissions {
			if engine.HasPermission(user, permission) {
				return c.Next()
			}
		}

		log.Warn().Uint64("user_id", user.ID).Strs("permissions", permissions).
			Msg("User lacks required permissions")

		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
	}
}

// AddPermissionsToLocals is a Fiber middleware that adds user permissions to fiber.Locals.
// This allows templates to access permissions for conditional rendering.
func AddPermissionsToLocals(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := userFromSession(c)
		if !ok {
			// Not authenticated, continue without permissions
			return c.Next()
		}

		c.Locals("permissions", engine.PermissionsFor(user))
		c.Locals("hasPermission", func(perm string) bool {
			return engine.HasPermission(user, perm)
		})

		return c.Next()
	}
}

// userFromSession resolves the acting user from the request's session cookie.
func userFromSession(c *fiber.Ctx) (*models.User, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil, false
	}

	if sessionData.User.ID == 0 {
		return nil, false
	}

	return &sessionData.User, true
}
