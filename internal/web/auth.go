package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deploypanel/deploypanel/internal/web/handler/login"
	"github.com/deploypanel/deploypanel/internal/web/session"
)

// AuthMiddleware is a Fiber middleware that checks for user authentication.
func AuthMiddleware(c *fiber.Ctx) error {
	var (
		isLoginPage   = IsLoginPage(c)
		sessDataValid bool
	)

	originalURL := strings.ToLower(c.OriginalURL())
	if strings.HasPrefix(originalURL, "/static") || originalURL == CheckAlivePath {
		return c.Next()
	}

	loginCookie := c.Cookies("session")

	// without a session cookie, everything redirects to the login page
	if loginCookie == "" && !isLoginPage {
		return c.Redirect(login.Path)
	}

	sessData := new(session.Data)
	_ = sessData.Read(loginCookie)

	if sessData.User.ID > 0 {
		sessDataValid = true
	}

	if !sessDataValid && !isLoginPage {
		return c.Redirect(login.Path)
	}

	if sessDataValid && isLoginPage {
		return c.Redirect("/dashboard")
	}

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, login.Path)
}
