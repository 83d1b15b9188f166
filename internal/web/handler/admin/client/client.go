// Package client provides handlers for managing clients (CRUD) in the admin area.
package client

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller"
	clientctl "github.com/deploypanel/deploypanel/internal/db/controller/client"
	"github.com/deploypanel/deploypanel/internal/db/controller/clientconfig"
	"github.com/deploypanel/deploypanel/internal/db/controller/host"
	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/flash"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for client management.
	Path = handler.RootPath + "admin/client"

	// TemplateList is the template for listing clients.
	TemplateList = "admin/client/list"
	// TemplateForm is the template for creating/updating a client.
	TemplateForm = "admin/client/form"
	// TemplateConfig is the template for the deployment config form.
	TemplateConfig = "admin/client/config"
)

// form is the client create/update payload.
type form struct {
	Name   string `form:"name" validate:"required,max=255"`
	Status string `form:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// configForm is the deployment config payload.
type configForm struct {
	HostID     string `form:"host_id" validate:"required,uuid4"`
	ConfigKey  string `form:"config_key" validate:"required,max=255"`
	DBHost     string `form:"db_host" validate:"omitempty,max=255"`
	DBPort     string `form:"db_port" validate:"omitempty,numeric"`
	DBUsername string `form:"db_username" validate:"omitempty,max=255"`
	DBPassword string `form:"db_password" validate:"omitempty,max=255"`
}

// Service provides CRUD operations for clients.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	engine    *policy.Engine
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
	s.engine = engine
	s.validator = validator.New()

	app.Get(Path, s.requireAction(policy.ResourceClient, policy.ActionViewAny), s.List)
	app.Get(Path+"/new", s.requireAction(policy.ResourceClient, policy.ActionCreate), s.New)
	app.Post(Path, s.requireAction(policy.ResourceClient, policy.ActionCreate), s.Create)
	app.Get(Path+"/:id/edit", s.requireAction(policy.ResourceClient, policy.ActionUpdate), s.Edit)
	app.Post(Path+"/:id", s.requireAction(policy.ResourceClient, policy.ActionUpdate), s.Update)
	app.Post(Path+"/:id/delete", s.requireAction(policy.ResourceClient, policy.ActionDelete), s.Delete)
	app.Get(Path+"/:id/config", s.requireAction(policy.ResourceClientConfig, policy.ActionView), s.Config)
	app.Post(Path+"/:id/config", s.requireAction(policy.ResourceClientConfig, policy.ActionUpdate), s.SaveConfig)
}

// requireAction guards a route with the named client policy. Client records
// have no per-target checks, so the rules need no record loaded.
func (s *Service) requireAction(resource policy.Resource, action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := handler.CurrentUser(c)
		if err := s.engine.Authorize(actor, resource, action, nil); err != nil {
			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// List shows clients with pagination, search and status filter.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Clients", navigation.SectionAdmin, "client").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Clients", Path, true)

	params := controller.ListParams{
		Search: c.Query("search", ""),
		Page:   c.QueryInt("page", 1),
	}

	if status := c.Query("status", ""); status != "" {
		params.Filters = map[string]string{"status": status}
	}

	clients, page, err := clientctl.List(s.db, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to list clients")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load clients",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Clients":    clients,
		"Page":       page,
		"Search":     params.Search,
		"Status":     c.Query("status", ""),
		"Statuses":   models.ClientStatuses(),
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// New shows the create form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New Client", navigation.SectionAdmin, "client").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Clients", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Statuses":   models.ClientStatuses(),
	}, handler.BaseLayout)
}

// Create handles the create form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid client data")
		return c.Redirect(Path + "/new")
	}

	created, err := clientctl.Create(s.db, map[string]any{
		"name":   in.Name,
		"status": in.Status,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create client")
		flash.Error(c, "Failed to create client")

		return c.Redirect(Path + "/new")
	}

	log.Info().Uint("client_id", created.ID).Str("name", created.Name).Msg("client created")
	flash.Success(c, "Client created")

	return c.Redirect(Path)
}

// Edit shows the update form.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	client, err := clientctl.Find(s.db, uint(id))
	if err != nil {
		if errors.Is(err, clientctl.ErrClientNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	nav := navigation.NewContext("Edit Client", navigation.SectionAdmin, "client").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Clients", Path, false).
		AddBreadcrumb(client.Name, "#", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Client":     client,
		"Statuses":   models.ClientStatuses(),
	}, handler.BaseLayout)
}

// Update handles the update form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var in form
	if err = c.BodyParser(&in); err != nil {
		return err
	}

	if err = s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid client data")
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	if _, err = clientctl.Update(s.db, uint(id), map[string]any{
		"name":   in.Name,
		"status": in.Status,
	}); err != nil {
		if errors.Is(err, clientctl.ErrClientNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Int("client_id", id).Msg("failed to update client")
		flash.Error(c, "Failed to update client")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	flash.Success(c, "Client updated")

	return c.Redirect(Path)
}

// Delete handles client deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err = clientctl.Delete(s.db, uint(id)); err != nil {
		if errors.Is(err, clientctl.ErrClientNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Int("client_id", id).Msg("failed to delete client")
		flash.Error(c, "Failed to delete client")

		return c.Redirect(Path)
	}

	flash.Success(c, "Client deleted")

	return c.Redirect(Path)
}

// Config shows the deployment config form of a client.
func (s *Service) Config(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	client, err := clientctl.Find(s.db, uint(id))
	if err != nil {
		if errors.Is(err, clientctl.ErrClientNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	hosts, err := host.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load hosts")
	}

	nav := navigation.NewContext("Deployment Config", navigation.SectionAdmin, "client").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Clients", Path, false).
		AddBreadcrumb(client.Name, "#", true)

	return c.Render(TemplateConfig, fiber.Map{
		"Navigation": nav,
		"Client":     client,
		"Config":     client.Config,
		"Hosts":      hosts,
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// SaveConfig handles the deployment config form submission.
func (s *Service) SaveConfig(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var in configForm
	if err = c.BodyParser(&in); err != nil {
		return err
	}

	if err = s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid config data")
		return c.Redirect(Path + "/" + c.Params("id") + "/config")
	}

	if _, err = clientconfig.Set(s.db, uint(id), map[string]any{
		"host_id":     in.HostID,
		"config_key":  in.ConfigKey,
		"db_host":     in.DBHost,
		"db_port":     in.DBPort,
		"db_username": in.DBUsername,
		"db_password": in.DBPassword,
	}); err != nil {
		log.Error().Err(err).Int("client_id", id).Msg("failed to save client config")
		flash.Error(c, "Failed to save config")

		return c.Redirect(Path + "/" + c.Params("id") + "/config")
	}

	flash.Success(c, "Config saved")

	return c.Redirect(Path + "/" + c.Params("id") + "/config")
}
