// Package host provides handlers for managing deployment hosts in the admin area.
package host

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller"
	hostctl "github.com/deploypanel/deploypanel/internal/db/controller/host"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/flash"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for host management.
	Path = handler.RootPath + "admin/host"

	// TemplateList is the template for listing hosts.
	TemplateList = "admin/host/list"
	// TemplateForm is the template for creating/updating a host.
	TemplateForm = "admin/host/form"
)

// form is the host create/update payload.
type form struct {
	IP          string `form:"ip" validate:"required,ip"`
	Credentials string `form:"credentials" validate:"omitempty,json"`
}

// Service provides CRUD operations for hosts.
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
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionViewAny)),
		s.List,
	)
	app.Get(Path+"/new",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionCreate)),
		s.New,
	)
	app.Post(Path,
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionCreate)),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionUpdate)),
		s.Edit,
	)
	app.Post(Path+"/:id",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionUpdate)),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceHost, policy.ActionDelete)),
		s.Delete,
	)
}

// List shows hosts with pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Hosts", navigation.SectionAdmin, "host").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Hosts", Path, true)

	params := controller.ListParams{
		Search: c.Query("search", ""),
		Page:   c.QueryInt("page", 1),
	}

	hosts, page, err := hostctl.List(s.db, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to list hosts")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load hosts",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Hosts":      hosts,
		"Page":       page,
		"Search":     params.Search,
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// New shows the create form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New Host", navigation.SectionAdmin, "host").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Hosts", Path, false).
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
		flash.Error(c, "Invalid host data")
		return c.Redirect(Path + "/new")
	}

	created, err := hostctl.Create(s.db, map[string]any{
		"ip":          in.IP,
		"credentials": in.Credentials,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create host")
		flash.Error(c, "Failed to create host")

		return c.Redirect(Path + "/new")
	}

	log.Info().Str("host_id", created.ID).Str("ip", created.IP).Msg("host created")
	flash.Success(c, "Host created")

	return c.Redirect(Path)
}

// Edit shows the update form.
func (s *Service) Edit(c *fiber.Ctx) error {
	host, err := hostctl.Find(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, hostctl.ErrHostNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	nav := navigation.NewContext("Edit Host", navigation.SectionAdmin, "host").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Hosts", Path, false).
		AddBreadcrumb(host.IP, "#", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Host":       host,
	}, handler.BaseLayout)
}

// Update handles the update form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid host data")
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	if _, err := hostctl.Update(s.db, c.Params("id"), map[string]any{
		"ip":          in.IP,
		"credentials": in.Credentials,
	}); err != nil {
		if errors.Is(err, hostctl.ErrHostNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("host_id", c.Params("id")).Msg("failed to update host")
		flash.Error(c, "Failed to update host")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	flash.Success(c, "Host updated")

	return c.Redirect(Path)
}

// Delete handles host deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := hostctl.Delete(s.db, c.Params("id")); err != nil {
		if errors.Is(err, hostctl.ErrHostNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("host_id", c.Params("id")).Msg("failed to delete host")
		flash.Error(c, "Failed to delete host")

		return c.Redirect(Path)
	}

	flash.Success(c, "Host deleted")

	return c.Redirect(Path)
}
