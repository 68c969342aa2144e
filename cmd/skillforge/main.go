package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/skillforge/skillforge/internal/app"
	"github.com/skillforge/skillforge/internal/authz"
	"github.com/skillforge/skillforge/internal/persons"
	"github.com/skillforge/skillforge/internal/platform/cache"
	"github.com/skillforge/skillforge/internal/platform/db"
	"github.com/skillforge/skillforge/internal/roles"
	"github.com/skillforge/skillforge/internal/shared"
	"github.com/skillforge/skillforge/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	permCache := authz.NewPermissionCache(redisClient, cfg.PermCacheTTL)

	rolesRepo := roles.NewPostgresRepository(pool)
	rolesService := roles.NewService(rolesRepo, logger)
	rolesService.SetAuditLogger(auditLogger)
	rolesService.SetInvalidator(permCache)
	statsService := roles.NewStatsService(rolesRepo, logger)

	catalog := authz.DefaultCatalog()
	permRepo := authz.NewPostgresPermissionRepository(pool)
	authzService := authz.NewService(catalog, rolesService, permRepo, logger, authz.Config{
		DefaultAllow: cfg.AuthzDefaultAllow,
	})
	authzService.SetCache(permCache)
	authzMiddleware := authz.Middleware{Service: authzService, Logger: logger}

	personsRepo := persons.NewPostgresRepository(pool)
	personsService := persons.NewService(personsRepo, logger)

	rolesHandler := roles.NewHandler(logger, rolesService, statsService)
	personsHandler := persons.NewHandler(logger, personsService)
	permissionsHandler := authz.NewPermissionsHandler(logger, catalog, authzService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		RolesHandler:       rolesHandler,
		PersonsHandler:     personsHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Authz:              authzMiddleware,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
