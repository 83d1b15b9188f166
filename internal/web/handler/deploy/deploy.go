// Package deploy provides handlers for requesting and reviewing deploys.
// Unlike the admin area it is shared by developers (who request) and client
// users (who approve or reject for their own environment).
package deploy

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller"
	clientctl "github.com/deploypanel/deploypanel/internal/db/controller/client"
	deployctl "github.com/deploypanel/deploypanel/internal/db/controller/deploy"
	versionctl "github.com/deploypanel/deploypanel/internal/db/controller/version"
	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/flash"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for deploy management.
	Path = handler.RootPath + "deploy"

	// TemplateList is the template for listing deploys.
	TemplateList = "deploy/list"
	// TemplateShow is the template for a single deploy.
	TemplateShow = "deploy/show"
	// TemplateForm is the template for requesting a deploy.
	TemplateForm = "deploy/form"
)

// form is the deploy request payload.
type form struct {
	ClientID  uint   `form:"client_id" validate:"required"`
	VersionID string `form:"version_id" validate:"required,uuid4"`
	Notes     string `form:"notes"`
}

// Service provides deploy request and review operations.
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

	app.Get(Path,
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionViewAny)),
		s.List,
	)
	app.Get(Path+"/new",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionCreate)),
		s.New,
	)
	app.Post(Path,
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionCreate)),
		s.Create,
	)
	app.Get(Path+"/:id",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionView)),
		s.Show,
	)
	app.Post(Path+"/:id/notes",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionUpdate)),
		s.UpdateNotes,
	)
	app.Post(Path+"/:id/approve",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionApprove)),
		s.Approve,
	)
	app.Post(Path+"/:id/reject",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionReject)),
		s.Reject,
	)
	app.Post(Path+"/:id/delete",
		policy.RequirePermission(engine, policy.Slug(policy.ResourceDeploy, policy.ActionDelete)),
		s.Delete,
	)
}

// List shows deploys. Client-scoped users only see their own environment.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Deploys", navigation.SectionDeploys, "deploy").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Deploys", Path, true)

	params := controller.ListParams{
		Search:  c.Query("search", ""),
		Page:    c.QueryInt("page", 1),
		Filters: map[string]string{},
	}

	if status := c.Query("status", ""); status != "" {
		params.Filters["status"] = status
	}

	var (
		deploys []models.Deploy
		page    controller.PageInfo
		err     error
	)

	actor := handler.CurrentUser(c)
	if actor != nil && actor.ClientID != nil {
		deploys, page, err = deployctl.ListForClient(s.db, *actor.ClientID, params)
	} else {
		deploys, page, err = deployctl.List(s.db, params)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to list deploys")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load deploys",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Deploys":    deploys,
		"Page":       page,
		"Search":     params.Search,
		"Status":     c.Query("status", ""),
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// New shows the deploy request form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("Request Deploy", navigation.SectionDeploys, "deploy").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Deploys", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	clients, _, err := clientctl.List(s.db, controller.ListParams{
		PageSize: 1000,
		Filters:  map[string]string{"status": string(models.ClientStatusActive)},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to load clients")
	}

	versions, err := versionctl.Recent(s.db, 50)
	if err != nil {
		log.Error().Err(err).Msg("failed to load versions")
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Clients":    clients,
		"Versions":   versions,
	}, handler.BaseLayout)
}

// Create handles the deploy request submission.
func (s *Service) Create(c *fiber.Ctx) error {
	actor := handler.CurrentUser(c)
	if actor == nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid deploy request")
		return c.Redirect(Path + "/new")
	}

	created, err := deployctl.Create(s.db, actor.ID, map[string]any{
		"client_id":  in.ClientID,
		"version_id": in.VersionID,
		"notes":      in.Notes,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create deploy")
		flash.Error(c, "Failed to create deploy")

		return c.Redirect(Path + "/new")
	}

	log.Info().Str("deploy_id", created.ID).Uint("client_id", created.ClientID).
		Str("version_id", created.VersionID).Msg("deploy requested")
	flash.Success(c, "Deploy requested, awaiting client approval")

	return c.Redirect(Path)
}

// Show renders a single deploy with its execution log.
func (s *Service) Show(c *fiber.Ctx) error {
	deploy, status := s.findScoped(c)
	if status != 0 {
		return c.SendStatus(status)
	}

	nav := navigation.NewContext("Deploy", navigation.SectionDeploys, "deploy").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Deploys", Path, false).
		AddBreadcrumb(deploy.ID, "#", true)

	return c.Render(TemplateShow, fiber.Map{
		"Navigation": nav,
		"Deploy":     deploy,
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// UpdateNotes replaces the notes of a deploy. Target and requester are fixed
// once created, so notes are the only editable field.
func (s *Service) UpdateNotes(c *fiber.Ctx) error {
	deploy, status := s.findScoped(c)
	if status != 0 {
		return c.SendStatus(status)
	}

	if _, err := deployctl.Update(s.db, deploy.ID, map[string]any{
		"notes": c.FormValue("notes"),
	}); err != nil {
		log.Error().Err(err).Str("deploy_id", deploy.ID).Msg("failed to update deploy notes")
		flash.Error(c, "Failed to update notes")

		return c.Redirect(Path + "/" + deploy.ID)
	}

	flash.Success(c, "Notes updated")

	return c.Redirect(Path + "/" + deploy.ID)
}

// Approve marks a pending deploy as approved.
func (s *Service) Approve(c *fiber.Ctx) error {
	return s.review(c, deployctl.Approve, "Deploy approved")
}

// Reject marks a pending deploy as rejected.
func (s *Service) Reject(c *fiber.Ctx) error {
	return s.review(c, deployctl.Reject, "Deploy rejected")
}

func (s *Service) review(c *fiber.Ctx, action func(*gorm.DB, string) (*models.Deploy, error), message string) error {
	deploy, status := s.findScoped(c)
	if status != 0 {
		return c.SendStatus(status)
	}

	if _, err := action(s.db, deploy.ID); err != nil {
		if errors.Is(err, deployctl.ErrNotReviewable) {
			flash.Warning(c, "Deploy already reviewed")
			return c.Redirect(Path + "/" + deploy.ID)
		}

		log.Error().Err(err).Str("deploy_id", deploy.ID).Msg("failed to review deploy")
		flash.Error(c, "Failed to review deploy")

		return c.Redirect(Path + "/" + deploy.ID)
	}

	flash.Success(c, message)

	return c.Redirect(Path + "/" + deploy.ID)
}

// Delete handles deploy deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := deployctl.Delete(s.db, c.Params("id")); err != nil {
		if errors.Is(err, deployctl.ErrDeployNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("deploy_id", c.Params("id")).Msg("failed to delete deploy")
		flash.Error(c, "Failed to delete deploy")

		return c.Redirect(Path)
	}

	flash.Success(c, "Deploy deleted")

	return c.Redirect(Path)
}

// findScoped loads the deploy addressed by :id and enforces client scoping:
// a client-scoped actor can only touch deploys of their own environment.
// The second return value is a non-zero HTTP status on failure.
func (s *Service) findScoped(c *fiber.Ctx) (*models.Deploy, int) {
	deploy, err := deployctl.Find(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, deployctl.ErrDeployNotFound) {
			return nil, fiber.StatusNotFound
		}

		log.Error().Err(err).Str("deploy_id", c.Params("id")).Msg("failed to load deploy")

		return nil, fiber.StatusInternalServerError
	}

	actor := handler.CurrentUser(c)
	if actor != nil && actor.ClientID != nil && deploy.ClientID != *actor.ClientID {
		return nil, fiber.StatusForbidden
	}

	return deploy, 0
}
