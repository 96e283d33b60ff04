package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	auditsvc "stocktracker-backend/internal/application/audit"
	authsvc "stocktracker-backend/internal/application/auth"
	catalogsvc "stocktracker-backend/internal/application/catalog"
	ledgersvc "stocktracker-backend/internal/application/ledger"
	txsvc "stocktracker-backend/internal/application/transactions"
	usersvc "stocktracker-backend/internal/application/user"
	"stocktracker-backend/internal/config"
	"stocktracker-backend/internal/infrastructure/database"
	adminhandler "stocktracker-backend/internal/interfaces/handlers/admin"
	authhandler "stocktracker-backend/internal/interfaces/handlers/auth"
	healthhandler "stocktracker-backend/internal/interfaces/handlers/health"
	portfoliohandler "stocktracker-backend/internal/interfaces/handlers/portfolio"
	stockshandler "stocktracker-backend/internal/interfaces/handlers/stocks"
	txhandler "stocktracker-backend/internal/interfaces/handlers/transactions"
	userhandler "stocktracker-backend/internal/interfaces/handlers/user"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	errMissingSessionSecret = errors.New("SESSION_SECRET is required")
	errMissingRedisURL      = errors.New("REDIS_URL is required")
)

// CreateApp opens the database and Redis, migrates, optionally seeds the catalog and
// mounts every route.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.SessionSecret == "" {
		return nil, nil, nil, errMissingSessionSecret
	}
	if cfg.RedisURL == "" {
		return nil, nil, nil, errMissingRedisURL
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		rdb.Close()
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		rdb.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	catalog := &catalogsvc.Service{DB: db, Strict: cfg.StrictIngest}
	if cfg.SeedFile != "" {
		if _, err := catalog.IngestFile(context.Background(), cfg.SeedFile); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		rdb.Close()
		return nil, nil, nil, err
	}

	sessions := &middleware.SessionStore{
		Rdb:               rdb,
		Secret:            []byte(cfg.SessionSecret),
		TTL:               cfg.SessionTTL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(sessions.Session())

	hh := &healthhandler.Handlers{Rdb: rdb, DB: sqlDB, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	users := &usersvc.Service{DB: db, Sessions: sessions}
	audit := &auditsvc.Service{DB: db}
	ledger := &ledgersvc.Service{DB: db}

	ah := &authhandler.Handlers{Service: &authsvc.Service{Users: &authsvc.GormUserFinder{DB: db}}, Sessions: sessions}
	app.Post("/login", ah.Login)
	app.Get("/me", middleware.RequireAuth(), ah.Me)
	app.Delete("/logout", middleware.RequireAuth(), ah.Logout)

	uh := &userhandler.Handlers{Service: users}
	app.Post("/users", uh.CreateUser)
	app.Get("/users/:username", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnData), uh.GetUser)
	app.Put("/users/:username", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnData), uh.UpdateUser)
	app.Delete("/users/:username", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnData), uh.DeleteUser)

	sh := &stockshandler.Handlers{Service: catalog}
	app.Get("/stocks", sh.ListStocks)
	app.Get("/stocks/:ticker", sh.GetStock)
	app.Get("/stocks/:ticker/history", sh.GetHistory)
	app.Post("/stocks", middleware.RequireAuth(), middleware.AuthorizePermission(constants.IngestQuotes), sh.IngestStock)

	ph := &portfoliohandler.Handlers{Service: ledger}
	app.Post("/portfolios", middleware.RequireAuth(), middleware.AuthorizePermission(constants.TradeOwn), ph.Buy)
	app.Post("/portfolio/remove", middleware.RequireAuth(), middleware.AuthorizePermission(constants.TradeOwn), ph.Sell)
	app.Get("/portfolio/:user_id", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnData), ph.GetPortfolio)

	txh := &txhandler.Handlers{Service: &txsvc.Service{DB: db}}
	app.Get("/transactions/:user_id", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnData), txh.GetTransactions)

	adh := &adminhandler.Handlers{Users: users, Audit: audit}
	ag := app.Group("/admin", middleware.RequireAuth())
	ag.Get("/profiles", middleware.AuthorizePermission(constants.ManageProfiles), adh.ListProfiles)
	ag.Delete("/profiles/:id", middleware.AuthorizePermission(constants.ManageProfiles), adh.DeleteProfile)
	ag.Get("/actions", middleware.AuthorizePermission(constants.ViewAuditLog), adh.ListActions)
	ag.Post("/actions", middleware.AuthorizePermission(constants.ViewAuditLog), adh.RecordAction)

	return app, db, rdb, nil
}

// Handler adapts the Fiber app to net/http.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
