// Package role provides read-only handlers for browsing roles and their
// permission grants in the admin area. Roles are seeded reference data, so
// there is no create or update surface.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	rolectl "github.com/deploypanel/deploypanel/internal/db/controller/role"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for role browsing.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateShow is the template for a single role with its grants.
	TemplateShow = "admin/role/show"
)

// Service provides read-only role browsing.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	engine *policy.Engine
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Role browsing belongs to the user management
// surface, so the users policy gates it.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, engine *policy.Engine) {
	if app == nil || cfg == nil || db == nil || engine == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.engine = engine

	app.Get(Path, s.requireView, s.List)
	app.Get(Path+"/:slug", s.requireView, s.Show)
}

func (s *Service) requireView(c *fiber.Ctx) error {
	actor := handler.CurrentUser(c)
	if err := s.engine.Authorize(actor, policy.ResourceUsers, policy.ActionViewAny, nil); err != nil {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
	}

	return c.Next()
}

// List shows all roles.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Roles", navigation.SectionAdmin, "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Roles", Path, true)

	roles, err := rolectl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Roles":      roles,
	}, handler.BaseLayout)
}

// Show renders a single role with the permissions its grants cover.
func (s *Service) Show(c *fiber.Ctx) error {
	role, err := rolectl.FindBySlug(s.db, c.Params("slug"))
	if err != nil {
		if errors.Is(err, rolectl.ErrRoleNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	permissions, err := rolectl.Permissions(s.db, role.ID)
	if err != nil {
		log.Error().Err(err).Str("role", role.Slug).Msg("failed to load role permissions")
	}

	nav := navigation.NewContext(role.Name, navigation.SectionAdmin, "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb(role.Name, "#", true)

	return c.Render(TemplateShow, fiber.Map{
		"Navigation":  nav,
		"Role":        role,
		"Permissions": permissions,
	}, handler.BaseLayout)
}
