package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/versusleague/internal/api"
	"github.com/mcoot/versusleague/internal/config"
	"github.com/mcoot/versusleague/internal/factory"
	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
	redisstorage "github.com/mcoot/versusleague/internal/storage/redis"
	"github.com/mcoot/versusleague/internal/storage/sqlstore"
	"github.com/mcoot/versusleague/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run serves until ctx ends, a signal arrives or the server fails. Deferred
// cleanup runs on every return path.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint, version)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	factoryCfg, err := factoryConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("storage close error", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		LeagueService: app.LeagueService,
		HubManager:    app.HubManager,
		IDs:           app.IDs,
		Metrics:       app.Metrics,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTPHost
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
		slog.String("registry", app.LeagueService.Address().String()),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// factoryConfig maps the environment configuration onto the factory
func factoryConfig(cfg config.Config, logger *slog.Logger) (factory.Config, error) {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(cfg.AuthSecret)
	authCfg.SessionDuration = cfg.SessionDuration

	hostCfg := host.DefaultConfig()
	hostCfg.MaxEventsPerCall = cfg.MaxEventsPerCall
	hostCfg.MaxEventSize = cfg.MaxEventSize
	hostCfg.SupportedVersions = cfg.SupportedVersions

	out := factory.Config{
		Logger:         logger,
		StorageType:    cfg.Storage,
		AuthConfig:     authCfg,
		HostConfig:     hostCfg,
		AdminAccount:   model.AccountID(cfg.AdminAccount),
		RegistryModule: cfg.RegistryModule,
	}

	switch cfg.Storage {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.MaxEventsPerContract = cfg.RedisMaxEvents
		out.RedisConfig = &redisCfg
	case factory.StorageTypeSQL:
		dialect, err := sqlstore.ParseDialect(cfg.SQLDialect)
		if err != nil {
			return factory.Config{}, err
		}
		out.SQLConfig = &sqlstore.Config{Dialect: dialect, DSN: cfg.SQLDSN}
	}
	return out, nil
}
