package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/versusleague/internal/api/handler"
	"github.com/mcoot/versusleague/internal/api/middleware"
	"github.com/mcoot/versusleague/internal/api/stream"
	"github.com/mcoot/versusleague/internal/dependencies/idgen"
	"github.com/mcoot/versusleague/internal/metrics"
	basemw "github.com/mcoot/versusleague/internal/middleware"
	"github.com/mcoot/versusleague/internal/services/auth"
	"github.com/mcoot/versusleague/internal/services/league"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	LeagueService *league.Service
	HubManager    *stream.HubManager
	IDs           idgen.Generator

	// Metrics enables /metrics and per-route request metrics when set
	Metrics *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	ids := cfg.IDs
	if ids == nil {
		ids = idgen.New()
	}

	accountHandler := handler.NewAccountHandler(cfg.AuthService)
	registryHandler := handler.NewRegistryHandler(cfg.LeagueService)
	playerHandler := handler.NewPlayerHandler(cfg.LeagueService)
	standardsHandler := handler.NewStandardsHandler(cfg.LeagueService)
	streamHandler := handler.NewStreamHandler(cfg.LeagueService, cfg.HubManager, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(basemw.RequestID(ids))
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(basemw.Logging(cfg.Logger))
	api.Use(basemw.Tracing())
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Accounts
	api.HandleFunc("/accounts", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Public reads
	api.HandleFunc("/registry", registryHandler.View).Methods(http.MethodGet)
	api.HandleFunc("/registry/paused", registryHandler.GetPaused).Methods(http.MethodGet)
	api.HandleFunc("/registry/modules", registryHandler.Modules).Methods(http.MethodGet)
	api.HandleFunc("/registry/events", registryHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/registry/events/stream", streamHandler.Stream).Methods(http.MethodGet)
	api.HandleFunc("/players/{address}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{address}/added", playerHandler.IsAdded).Methods(http.MethodGet)
	api.HandleFunc("/standards/supports", standardsHandler.Supports).Methods(http.MethodPost)

	// Mutations run as the token's account
	protected := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }
	api.Handle("/registry/paused", protected(registryHandler.SetPaused)).Methods(http.MethodPut)
	api.Handle("/registry/admin", protected(registryHandler.UpdateAdmin)).Methods(http.MethodPut)
	api.Handle("/registry/metadata-url", protected(registryHandler.SetMetadataURL)).Methods(http.MethodPut)
	api.Handle("/registry/upgrade", protected(registryHandler.Upgrade)).Methods(http.MethodPost)
	api.Handle("/players/{address}/status", protected(playerHandler.SetStatus)).Methods(http.MethodPut)
	api.Handle("/players/{address}/results", protected(playerHandler.RecordResult)).Methods(http.MethodPost)
	api.Handle("/standards/{id}/implementors", protected(standardsHandler.SetImplementors)).Methods(http.MethodPut)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
