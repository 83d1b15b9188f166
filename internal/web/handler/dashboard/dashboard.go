// Package dashboard renders the landing page with deployment activity and
// onboarding state.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/controller/client"
	"github.com/deploypanel/deploypanel/internal/db/controller/deploy"
	"github.com/deploypanel/deploypanel/internal/db/controller/user"
	"github.com/deploypanel/deploypanel/internal/db/controller/version"
	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web/handler"
	"github.com/deploypanel/deploypanel/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// RecentVersionCount is how many versions the release feed shows.
	RecentVersionCount = 10

	// PendingUserLimit caps the unlinked-accounts panel.
	PendingUserLimit = 50

	// PendingDeployLimit caps the review queue panel.
	PendingDeployLimit = 10
)

// Service is the dashboard handler service.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	engine *policy.Engine
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, engine *policy.Engine) {
	if app == nil || cfg == nil || db == nil || engine == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.engine = engine

	app.Get(Path, s.Get)
}

// Get renders the dashboard.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", navigation.SectionDashboard, "dashboard").
		AddBreadcrumb("Home", Path, true)

	actor := handler.CurrentUser(c)

	data := fiber.Map{
		"Navigation": nav,
		"User":       actor,
	}

	latest, err := version.Latest(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load latest version")
	} else {
		data["LatestVersion"] = latest
	}

	recent, err := version.Recent(s.db, RecentVersionCount)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent versions")
	} else {
		data["RecentVersions"] = recent
	}

	if clients, err := client.Count(s.db); err != nil {
		log.Error().Err(err).Msg("failed to count clients")
	} else {
		data["ClientCount"] = clients
	}

	if users, err := user.Count(s.db); err != nil {
		log.Error().Err(err).Msg("failed to count users")
	} else {
		data["UserCount"] = users
	}

	counts, err := deploy.CountByStatus(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count deploys")
	} else {
		// string keys so templates can index the map directly
		byName := make(map[string]int64, len(counts))
		for status, n := range counts {
			byName[string(status)] = n
		}
		data["DeployCounts"] = byName
	}

	// Client users get a scoped review queue, everyone else the global one.
	if s.engine.HasPermission(actor, policy.Slug(policy.ResourceDeploy, policy.ActionApprove)) ||
		s.engine.HasPermission(actor, policy.Slug(policy.ResourceDeploy, policy.ActionViewAny)) {
		pending, err := deploy.Pending(s.db, PendingDeployLimit)
		if err != nil {
			log.Error().Err(err).Msg("failed to load pending deploys")
		} else {
			data["PendingDeploys"] = s.scopeDeploys(actor, pending)
		}
	}

	// Unlinked accounts only concern users who manage users.
	if s.engine.Allows(actor, policy.ResourceUsers, policy.ActionViewAny, nil) {
		pendingUsers, err := user.PendingLink(s.db, PendingUserLimit)
		if err != nil {
			log.Error().Err(err).Msg("failed to load pending users")
		} else {
			data["PendingUsers"] = pendingUsers
		}
	}

	return c.Render(TemplateName, data, handler.BaseLayout)
}

// scopeDeploys narrows the pending queue to the actor's client when the
// actor is client-scoped.
func (s *Service) scopeDeploys(actor *models.User, deploys []models.Deploy) []models.Deploy {
	if actor == nil || actor.ClientID == nil {
		return deploys
	}

	scoped := make([]models.Deploy, 0, len(deploys))
	for _, d := range deploys {
		if d.ClientID == *actor.ClientID {
			scoped = append(scoped, d)
		}
	}

	return scoped
}
