package factory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/versusleague/internal/api/stream"
	"github.com/mcoot/versusleague/internal/dependencies/clock"
	"github.com/mcoot/versusleague/internal/dependencies/idgen"
	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/league"
	"github.com/mcoot/versusleague/internal/metrics"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
	"github.com/mcoot/versusleague/internal/storage"
	"github.com/mcoot/versusleague/internal/storage/memory"
	redisstorage "github.com/mcoot/versusleague/internal/storage/redis"
	"github.com/mcoot/versusleague/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// Registry module names
const (
	ModuleCounters = "counters"
	ModuleOutcomes = "outcomes"
)

// RegistryAddress is where the server keeps its league registry
var RegistryAddress = model.ContractAddress{Index: 0, Subindex: 0}

// App contains all wired application components
type App struct {
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Contract host
	Catalog *host.Catalog
	Runtime *host.Runtime
	Modules map[string]model.ModuleRef

	// Services
	LeagueService *leaguesvc.Service
	AuthService   *auth.Service
	HubManager    *stream.HubManager
	Metrics       *metrics.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger. If nil, a no-op logger is used.
	Logger *slog.Logger
	// StorageType selects the storage backend. Defaults to memory.
	StorageType string
	// RedisConfig is required when StorageType is redis
	RedisConfig *redisstorage.Config
	// SQLConfig is required when StorageType is sql
	SQLConfig *sqlstore.Config
	// AuthConfig holds the token settings. A missing secret is replaced by
	// a random one, which invalidates tokens on restart.
	AuthConfig auth.Config
	// HostConfig holds runtime limits. Zero value means host.DefaultConfig().
	HostConfig host.Config
	// AdminAccount administers a newly created registry. Defaults to "admin".
	AdminAccount model.AccountID
	// RegistryModule is the module a new registry starts on. Defaults to counters.
	RegistryModule string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.AuthConfig.Secret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		cfg.AuthConfig.Secret = secret
		logger.Warn("no token secret configured, tokens will not survive a restart")
	}

	app, err := newWithDependencies(ctx, store, clock.New(), idgen.New(), cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		return sqlstore.Open(ctx, *cfg.SQLConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sql'", storageType)
	}
}

// newWithDependencies wires an App around the given dependencies, deploys
// both registry modules and creates the registry if the store has none
func newWithDependencies(
	ctx context.Context,
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	cfg Config,
	logger *slog.Logger,
) (*App, error) {
	hostCfg := cfg.HostConfig
	if hostCfg == (host.Config{}) {
		hostCfg = host.DefaultConfig()
	}

	catalog := host.NewCatalog(clk)
	modules := make(map[string]model.ModuleRef, 2)
	for name, m := range map[string]host.Module{
		ModuleCounters: league.ModuleV1(),
		ModuleOutcomes: league.ModuleV2(),
	} {
		ref, err := catalog.Deploy(m)
		if err != nil {
			return nil, fmt.Errorf("deploy %s module: %w", name, err)
		}
		modules[name] = ref
	}

	runtime, err := host.NewRuntime(store, catalog, hostCfg, clk, ids, logger.With(slog.String("component", "host")))
	if err != nil {
		return nil, err
	}

	moduleName := cfg.RegistryModule
	if moduleName == "" {
		moduleName = ModuleCounters
	}
	initial, ok := modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("unknown registry module %q", moduleName)
	}
	admin := cfg.AdminAccount
	if admin == "" {
		admin = "admin"
	}

	addr, created, err := leaguesvc.Bootstrap(ctx, runtime, RegistryAddress, admin, initial)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("league registry created",
			slog.String("address", addr.String()),
			slog.String("admin", string(admin)),
			slog.String("module", moduleName),
		)
	}

	authService, err := auth.New(store, clk, ids, cfg.AuthConfig)
	if err != nil {
		return nil, err
	}

	hubManager := stream.NewHubManager(logger)
	runtime.OnCommit(hubManager.Publish)
	m := metrics.New()
	runtime.OnCommit(m.ObserveCommit)

	return &App{
		Storage:       store,
		Clock:         clk,
		IDs:           ids,
		Catalog:       catalog,
		Runtime:       runtime,
		Modules:       modules,
		LeagueService: leaguesvc.New(runtime, store, addr, logger.With(slog.String("component", "league"))),
		AuthService:   authService,
		HubManager:    hubManager,
		Metrics:       m,
	}, nil
}

// Close stops the event stream and releases the store
func (a *App) Close() error {
	a.HubManager.Close()
	return a.Storage.Close()
}
