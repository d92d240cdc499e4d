package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/versusleague/internal/api/middleware"
	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	"github.com/mcoot/versusleague/internal/model"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

// StandardsHandler handles standards discovery
type StandardsHandler struct {
	league *leaguesvc.Service
}

// NewStandardsHandler creates a new standards handler
func NewStandardsHandler(league *leaguesvc.Service) *StandardsHandler {
	return &StandardsHandler{league: league}
}

// Supports handles POST /api/v1/standards/supports
func (h *StandardsHandler) Supports(w http.ResponseWriter, r *http.Request) {
	var req request.SupportsRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	ids := make([]model.StandardID, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = model.StandardID(id)
	}
	results, err := h.league.Supports(r.Context(), ids)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Supports{Results: results})
}

// SetImplementors handles PUT /api/v1/standards/{id}/implementors
func (h *StandardsHandler) SetImplementors(w http.ResponseWriter, r *http.Request) {
	id := model.StandardID(mux.Vars(r)["id"])

	var req request.SetImplementorsRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Implementors == nil {
		WriteError(w, NewInvalidRequestError("implementors is required"))
		return
	}

	implementors := make([]model.ContractAddress, len(req.Implementors))
	for i, raw := range req.Implementors {
		addr, err := model.ParseContractAddress(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("implementors: "+err.Error()))
			return
		}
		implementors[i] = addr
	}

	receipt, err := h.league.SetImplementors(r.Context(), middleware.MustGetSender(r.Context()), id, implementors)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}
