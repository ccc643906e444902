package router

import (
	"context"
	"errors"
	"fmt"

	authsvc "churchflow-backend/internal/application/auth"
	churchsvc "churchflow-backend/internal/application/churches"
	leavesvc "churchflow-backend/internal/application/leaves"
	leavingsvc "churchflow-backend/internal/application/leaving"
	membersvc "churchflow-backend/internal/application/members"
	"churchflow-backend/internal/config"
	"churchflow-backend/internal/infrastructure/cache"
	"churchflow-backend/internal/infrastructure/database"
	authhandler "churchflow-backend/internal/interfaces/handlers/auth"
	churchhandler "churchflow-backend/internal/interfaces/handlers/churches"
	healthhandler "churchflow-backend/internal/interfaces/handlers/health"
	leavehandler "churchflow-backend/internal/interfaces/handlers/leaves"
	leavinghandler "churchflow-backend/internal/interfaces/handlers/leaving"
	memberhandler "churchflow-backend/internal/interfaces/handlers/members"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/constants"
	"churchflow-backend/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) PingContext(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateApp opens the database and Redis from cfg, migrates the schema and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, errors.New("database url is not configured")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = cache.Open(cfg.RedisURL); err != nil {
			return nil, nil, nil, fmt.Errorf("open redis: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewApp(cfg, db, rdb, reg), db, rdb, nil
}

// NewApp wires services, middleware and routes on top of already opened stores.
// rdb may be nil; token revocation and request stats are then disabled.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reg *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// Auth
	auth := &authsvc.Service{
		DB: db,
		Token: authsvc.TokenConfig{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.JWTExpiresIn,
		},
		Revoker: &authsvc.Revoker{Rdb: rdb},
	}
	ah := &authhandler.Handlers{
		Service: auth,
		Cookie: middleware.CookieConfig{
			AllowCrossSiteDev: cfg.AllowCrossSiteDev,
			IsProduction:      cfg.IsProduction(),
		},
	}
	requireAuth := middleware.RequireAuth(auth)
	ag := app.Group("/api/v1/auth")
	ag.Post("/register", ah.Register)
	ag.Post("/login", ah.Login)
	ag.Get("/me", requireAuth, ah.Me)
	ag.Post("/logout", requireAuth, ah.Logout)

	api := app.Group("/api/v1")

	// Churches
	ch := &churchhandler.Handlers{Service: &churchsvc.Service{DB: db}}
	cg := api.Group("/churches", requireAuth)
	cg.Get("/", middleware.AuthorizePermission(constants.ViewRoster), ch.List)
	cg.Get("/me", middleware.AuthorizePermission(constants.ViewRoster), ch.Mine)
	cg.Patch("/:id", middleware.AuthorizePermission(constants.UpdateChurch), ch.Update)

	// Members
	members := &membersvc.Service{DB: db}
	mh := &memberhandler.Handlers{Service: members}
	mg := api.Group("/members", requireAuth)
	mg.Get("/", middleware.AuthorizePermission(constants.ViewRoster), mh.List)
	mg.Post("/", middleware.AuthorizePermission(constants.ManageMembers), mh.Create)
	mg.Get("/search", middleware.AuthorizePermission(constants.ViewRoster), mh.Search)
	mg.Get("/:id", middleware.AuthorizePermission(constants.ViewRoster), mh.Get)
	mg.Patch("/:id", middleware.AuthorizePermission(constants.ManageMembers), mh.Update)
	mg.Delete("/:id", middleware.AuthorizePermission(constants.ManageMembers), mh.Delete)

	// Leave requests
	lh := &leavehandler.Handlers{Service: &leavesvc.Service{DB: db}}
	lg := api.Group("/leaves", requireAuth, middleware.AuthorizePermission(constants.ManageLeaves))
	lg.Post("/", lh.Create)
	lg.Get("/", lh.List)
	lg.Get("/:id", lh.Get)
	lg.Put("/:id", lh.Update)
	lg.Patch("/:id", lh.SetStatus)
	lg.Delete("/:id", lh.Delete)

	// Leaving certificates
	leaving := &leavingsvc.Service{
		Store:       database.NewCertificateStore(db),
		DB:          db,
		Scope:       cfg.SequenceScope,
		MaxAttempts: cfg.MaxIssueAttempts,
		Metrics:     metrics.NewCertificateMetrics(registerer(reg)),
	}
	vh := &leavinghandler.Handlers{Service: leaving, Members: members}
	vg := api.Group("/leaving", requireAuth)
	vg.Post("/", middleware.AuthorizePermission(constants.IssueCertificates), vh.Issue)
	vg.Get("/", middleware.AuthorizePermission(constants.ViewRoster), vh.List)
	vg.Get("/stats", middleware.AuthorizePermission(constants.ViewRoster), vh.Stats)
	vg.Get("/summary", middleware.AuthorizePermission(constants.ViewRoster), vh.Summary)
	vg.Get("/search", middleware.AuthorizePermission(constants.ViewRoster), vh.SearchMembers)
	vg.Get("/preview-number", middleware.AuthorizePermission(constants.IssueCertificates), vh.PreviewNumber)
	vg.Post("/generate", middleware.AuthorizePermission(constants.ViewRoster), vh.Generate)
	vg.Get("/:id", middleware.AuthorizePermission(constants.ViewRoster), vh.Get)
	vg.Patch("/:id", middleware.AuthorizePermission(constants.ManageCertificates), vh.Update)
	vg.Delete("/:id", middleware.AuthorizePermission(constants.ManageCertificates), vh.Delete)
	vg.Get("/:id/events", middleware.AuthorizePermission(constants.ViewRoster), vh.Events)

	return app
}

// registerer avoids handing a typed nil registry to the metrics package.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}
