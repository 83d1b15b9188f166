// Package version provides handlers for managing release versions.
package version

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller"
	versionctl "github.com/deploypanel/deploypanel/internal/db/controller/version"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/flash"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for version management.
	Path = handler.RootPath + "admin/version"

	// TemplateList is the template for listing versions.
	TemplateList = "admin/version/list"
	// TemplateForm is the template for creating/updating a version.
	TemplateForm = "admin/version/form"
)

// form is the version create/update payload.
type form struct {
	Name  string `form:"name" validate:"required,max=255"`
	Tag   string `form:"tag" validate:"required,max=100"`
	Notes string `form:"notes"`
}

// Service provides CRUD operations for versions.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, engine *policy.Engine) {
	if app == nil || cfg == nil || db == nil || engine == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionViewAny)),
		s.List,
	)
	app.Get(Path+"/new",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionCreate)),
		s.New,
	)
	app.Post(Path,
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionCreate)),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionUpdate)),
		s.Edit,
	)
	app.Post(Path+"/:id",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionUpdate)),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceVersion, policy.ActionDelete)),
		s.Delete,
	)
}

// List shows versions with pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Versions", navigation.SectionAdmin, "version").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Versions", Path, true)

	params := controller.ListParams{
		Search: c.Query("search", ""),
		Page:   c.QueryInt("page", 1),
	}

	versions, page, err := versionctl.List(s.db, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to list versions")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load versions",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Versions":   versions,
		"Page":       page,
		"Search":     params.Search,
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// New shows the create form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New Version", navigation.SectionAdmin, "version").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Versions", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// Create handles the create form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid version data")
		return c.Redirect(Path + "/new")
	}

	created, err := versionctl.Create(s.db, map[string]any{
		"name":  in.Name,
		"tag":   in.Tag,
		"notes": in.Notes,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create version")
		flash.Error(c, "Failed to create version")

		return c.Redirect(Path + "/new")
	}

	log.Info().Str("version_id", created.ID).Str("tag", created.Tag).Msg("version created")
	flash.Success(c, "Version created")

	return c.Redirect(Path)
}

// Edit shows the update form.
func (s *Service) Edit(c *fiber.Ctx) error {
	version, err := versionctl.Find(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, versionctl.ErrVersionNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	nav := navigation.NewContext("Edit Version", navigation.SectionAdmin, "version").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Versions", Path, false).
		AddBreadcrumb(version.Tag, "#", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Version":    version,
	}, handler.BaseLayout)
}

// Update handles the update form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid version data")
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	if _, err := versionctl.Update(s.db, c.Params("id"), map[string]any{
		"name":  in.Name,
		"tag":   in.Tag,
		"notes": in.Notes,
	}); err != nil {
		if errors.Is(err, versionctl.ErrVersionNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("version_id", c.Params("id")).Msg("failed to update version")
		flash.Error(c, "Failed to update version")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	flash.Success(c, "Version updated")

	return c.Redirect(Path)
}

// Delete handles version deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := versionctl.Delete(s.db, c.Params("id")); err != nil {
		if errors.Is(err, versionctl.ErrVersionNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("version_id", c.Params("id")).Msg("failed to delete version")
		flash.Error(c, "Failed to delete version")

		return c.Redirect(Path)
	}

	flash.Success(c, "Version deleted")

	return c.Redirect(Path)
}
