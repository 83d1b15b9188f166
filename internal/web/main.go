// Package web implements the server-rendered admin console.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	fiberlogger "github.com/deploypanel/deploypanel/internal/logger/adapter/fiber"
	"github.com/deploypanel/deploypanel/internal/policy"
	adminclient "github.com/deploypanel/deploypanel/internal/web/handler/admin/client"
	adminhost "github.com/deploypanel/deploypanel/internal/web/handler/admin/host"
	adminrole "github.com/deploypanel/deploypanel/internal/web/handler/admin/role"
	adminuser "github.com/deploypanel/deploypanel/internal/web/handler/admin/user"
	adminversion "github.com/deploypanel/deploypanel/internal/web/handler/admin/version"
	"github.com/deploypanel/deploypanel/internal/web/handler/dashboard"
	"github.com/deploypanel/deploypanel/internal/web/handler/deploy"
	"github.com/deploypanel/deploypanel/internal/web/handler/login"
	"github.com/deploypanel/deploypanel/internal/web/handler/logout"
)

// CheckAlivePath is the liveness probe endpoint, excluded from auth and
// (depending on config) from the access log.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	engine       *policy.Engine
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the console.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: mark this instance not alive
	// and give the load balancer time to drain.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: waiting %d seconds before stopping",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, engine *policy.Engine) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if engine == nil {
		panic("engine cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use the local filesystem so template edits reload
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	// uintVal unwraps nullable foreign keys so templates can compare them
	// against dropdown option ids.
	templateEngine.AddFunc("uintVal", func(v *uint) uint {
		if v == nil {
			return 0
		}

		return *v
	})

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "DeployPanel",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// access log with per-request performance header
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	app.Use(AuthMiddleware)

	// expose the acting user's permissions to templates
	app.Use(policy.AddPermissionsToLocals(engine))

	service := &Service{
		cfg:    cfg,
		App:    app,
		db:     db,
		engine: engine,
	}
	service.alive.Store(true)

	// liveness probe, returns 503 once a graceful shutdown started
	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("ok")
	})

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)
	dashboard.Handler.Init(app, cfg, db, engine)
	adminclient.Handler.Init(app, cfg, db, engine)
	adminuser.Handler.Init(app, cfg, db, engine)
	adminrole.Handler.Init(app, cfg, db, engine)
	adminhost.Handler.Init(app, cfg, db, engine)
	adminversion.Handler.Init(app, cfg, db, engine)
	deploy.Handler.Init(app, cfg, db, engine)

	// redirect root to dashboard
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service
}
