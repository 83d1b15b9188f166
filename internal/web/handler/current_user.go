package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/web/session"
)

// CurrentUser resolves the acting user from the request's session cookie.
// The auth middleware guarantees a valid session on protected routes, so a
// nil result means the route was registered outside its protection.
func CurrentUser(c *fiber.Ctx) *models.User {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil
	}

	if sessionData.User.ID == 0 {
		return nil
	}

	return &sessionData.User
}
