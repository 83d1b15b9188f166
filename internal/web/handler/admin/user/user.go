// Package user provides handlers for managing user accounts in the admin area.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller"
	clientctl "github.com/deploypanel/deploypanel/internal/db/controller/client"
	"github.com/deploypanel/deploypanel/internal/db/controller/role"
	userctl "github.com/deploypanel/deploypanel/internal/db/controller/user"
	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/flash"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"
)

// form is the user create/update payload. An empty password on update keeps
// the current one.
type form struct {
	Name     string `form:"name" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"omitempty,min=8"`
	RoleID   uint   `form:"role_id"`
	ClientID uint   `form:"client_id"`
}

// Service provides CRUD operations for users.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	engine    *policy.Engine
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. User routes are decided by the named policy rules
// instead of slug grants, so each handler authorizes against the engine with
// the acting user and, for updates, the target record.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, engine *policy.Engine) {
	if app == nil || cfg == nil || db == nil || engine == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.engine = engine
	s.validator = validator.New()

	app.Get(Path, s.requireAction(policy.ActionViewAny), s.List)
	app.Get(Path+"/new", s.requireAction(policy.ActionCreate), s.New)
	app.Post(Path, s.requireAction(policy.ActionCreate), s.Create)
	app.Get(Path+"/:id/edit", s.Edit)
	app.Post(Path+"/:id", s.Update)
	app.Post(Path+"/:id/delete", s.requireAction(policy.ActionDelete), s.Delete)
}

// requireAction guards a route with the named users policy for actions that
// need no target record.
func (s *Service) requireAction(action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := handler.CurrentUser(c)
		if err := s.engine.Authorize(actor, policy.ResourceUsers, action, nil); err != nil {
			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// List shows users with pagination, search and role/client filters.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Users", navigation.SectionAdmin, "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Users", Path, true)

	params := controller.ListParams{
		Search:  c.Query("search", ""),
		Page:    c.QueryInt("page", 1),
		Filters: map[string]string{},
	}

	if v := c.Query("role_id", ""); v != "" {
		params.Filters["role_id"] = v
	}

	if v := c.Query("client_id", ""); v != "" {
		params.Filters["client_id"] = v
	}

	users, page, err := userctl.List(s.db, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Users":      users,
		"Page":       page,
		"Search":     params.Search,
		"Flash":      flash.Pop(c),
	}, handler.BaseLayout)
}

// New shows the create form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New User", navigation.SectionAdmin, "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	roles, clients := s.formOptions()

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Roles":      roles,
		"Clients":    clients,
	}, handler.BaseLayout)
}

// Create handles the create form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if in.Password == "" || s.validator.Struct(&in) != nil {
		flash.Error(c, "Invalid user data")
		return c.Redirect(Path + "/new")
	}

	created, err := userctl.Create(s.db, s.formData(&in, true))
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		flash.Error(c, "Failed to create user")

		return c.Redirect(Path + "/new")
	}

	log.Info().Uint64("user_id", created.ID).Str("email", created.Email).Msg("user created")
	flash.Success(c, "User created")

	return c.Redirect(Path)
}

// Edit shows the update form. Admins edit anyone, everyone else only their
// own account.
func (s *Service) Edit(c *fiber.Ctx) error {
	target, status := s.findTarget(c)
	if status != 0 {
		return c.SendStatus(status)
	}

	actor := handler.CurrentUser(c)
	if err := s.engine.Authorize(actor, policy.ResourceUsers, policy.ActionUpdate, target); err != nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	nav := navigation.NewContext("Edit User", navigation.SectionAdmin, "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(target.Name, "#", true)

	roles, clients := s.formOptions()

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       target,
		"Roles":      roles,
		"Clients":    clients,
	}, handler.BaseLayout)
}

// Update handles the update form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	target, status := s.findTarget(c)
	if status != 0 {
		return c.SendStatus(status)
	}

	actor := handler.CurrentUser(c)
	if err := s.engine.Authorize(actor, policy.ResourceUsers, policy.ActionUpdate, target); err != nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	var in form
	if err := c.BodyParser(&in); err != nil {
		return err
	}

	if err := s.validator.Struct(&in); err != nil {
		flash.Error(c, "Invalid user data")
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	// Only admins reassign roles and clients.
	allowAssign := s.engine.Allows(actor, policy.ResourceUsers, policy.ActionDelete, nil)

	if _, err := userctl.Update(s.db, target.ID, s.formData(&in, allowAssign)); err != nil {
		log.Error().Err(err).Uint64("user_id", target.ID).Msg("failed to update user")
		flash.Error(c, "Failed to update user")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	flash.Success(c, "User updated")

	return c.Redirect(Path)
}

// Delete handles user deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err = userctl.Delete(s.db, id); err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to delete user")
		flash.Error(c, "Failed to delete user")

		return c.Redirect(Path)
	}

	flash.Success(c, "User deleted")

	return c.Redirect(Path)
}

// findTarget loads the user addressed by the :id route parameter. The second
// return value is a non-zero HTTP status on failure.
func (s *Service) findTarget(c *fiber.Ctx) (*models.User, int) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fiber.StatusBadRequest
	}

	target, err := userctl.Find(s.db, id)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return nil, fiber.StatusNotFound
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to load user")

		return nil, fiber.StatusInternalServerError
	}

	return target, 0
}

// formOptions loads the role and client dropdown contents.
func (s *Service) formOptions() (roles any, clients any) {
	allRoles, err := role.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")
	}

	allClients, _, err := clientctl.List(s.db, controller.ListParams{PageSize: 1000})
	if err != nil {
		log.Error().Err(err).Msg("failed to load clients")
	}

	return allRoles, allClients
}

// formData converts the form payload into controller input. Role and client
// assignment is dropped unless the actor may assign them.
func (s *Service) formData(in *form, allowAssign bool) map[string]any {
	data := map[string]any{
		"name":     in.Name,
		"email":    in.Email,
		"password": in.Password,
	}

	if !allowAssign {
		return data
	}

	if in.RoleID > 0 {
		roleID := in.RoleID
		data["role_id"] = &roleID
	}

	if in.ClientID > 0 {
		clientID := in.ClientID
		data["client_id"] = &clientID
	}

	return data
}
