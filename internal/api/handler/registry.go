package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/versusleague/internal/api/middleware"
	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	"github.com/mcoot/versusleague/internal/league"
	"github.com/mcoot/versusleague/internal/model"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// RegistryHandler handles governance endpoints
type RegistryHandler struct {
	league *leaguesvc.Service
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(league *leaguesvc.Service) *RegistryHandler {
	return &RegistryHandler{league: league}
}

// View handles GET /api/v1/registry
func (h *RegistryHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.league.View(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	module, err := h.league.CurrentModule(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RegistryFromView(h.league.Address(), view, module))
}

// GetPaused handles GET /api/v1/registry/paused
func (h *RegistryHandler) GetPaused(w http.ResponseWriter, r *http.Request) {
	paused, err := h.league.GetPaused(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Paused{Paused: paused})
}

// SetPaused handles PUT /api/v1/registry/paused
func (h *RegistryHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req request.SetPausedRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Paused == nil {
		WriteError(w, NewInvalidRequestError("paused is required"))
		return
	}

	receipt, err := h.league.SetPaused(r.Context(), middleware.MustGetSender(r.Context()), *req.Paused)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}

// UpdateAdmin handles PUT /api/v1/registry/admin
func (h *RegistryHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateAdminRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	newAdmin, err := model.ParseAddress(req.NewAdmin)
	if err != nil {
		WriteError(w, NewInvalidRequestError("new_admin: "+err.Error()))
		return
	}

	receipt, err := h.league.UpdateAdmin(r.Context(), middleware.MustGetSender(r.Context()), newAdmin)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}

// SetMetadataURL handles PUT /api/v1/registry/metadata-url
func (h *RegistryHandler) SetMetadataURL(w http.ResponseWriter, r *http.Request) {
	var req request.SetMetadataURLRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	receipt, err := h.league.SetMetadataURL(r.Context(), middleware.MustGetSender(r.Context()), req.URL)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}

// Upgrade handles POST /api/v1/registry/upgrade
func (h *RegistryHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req request.UpgradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var migrate *league.MigrationCall
	if req.Migrate != nil {
		migrate = &league.MigrationCall{Entrypoint: req.Migrate.Entrypoint, Parameter: req.Migrate.Parameter}
	}
	receipt, err := h.league.Upgrade(r.Context(), middleware.MustGetSender(r.Context()), model.ModuleRef(req.Module), migrate)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}

// Modules handles GET /api/v1/registry/modules
func (h *RegistryHandler) Modules(w http.ResponseWriter, r *http.Request) {
	current, err := h.league.CurrentModule(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Modules{
		Current: string(current.Ref),
		Modules: h.league.Modules(),
	})
}

// Events handles GET /api/v1/registry/events?limit=N
func (h *RegistryHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	events, err := h.league.Events(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	response.JSON(w, http.StatusOK, response.Events{Events: events})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultEventLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxEventLimit {
		return 0, NewInvalidRequestError("limit must be between 1 and " + strconv.Itoa(maxEventLimit))
	}
	return limit, nil
}
