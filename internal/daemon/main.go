// Package daemon wires the database, session store, authorization engine and
// web service together and runs them.
package daemon

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/config"
	"github.com/deploypanel/deploypanel/internal/db/dsn"
	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
	"github.com/deploypanel/deploypanel/internal/web"
	"github.com/deploypanel/deploypanel/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService web.Service
}

// Start runs the web service and blocks until it stops. A signal watcher
// drives the graceful shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Client{},
		&models.User{},
		&models.Host{},
		&models.ClientConfig{},
		&models.Version{},
		&models.Deploy{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if err = seed(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	if cfg.DevMode {
		if err = SeedDemo(db); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// The engine loads its grant map after seeding so first boot sees the
	// full catalog.
	engine, err := policy.NewEngine(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create authorization engine")
	}

	session.Init(openSessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: *web.New(cfg, db, engine),
	}
}

// openDialector selects the gorm driver from the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == dsn.EnginePostgres {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// openSessionStorage creates the fiber session storage on the same database
// engine the application uses.
func openSessionStorage(cfg *config.Config) fiber.Storage {
	if cfg.DB.GormEngine == dsn.EnginePostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
