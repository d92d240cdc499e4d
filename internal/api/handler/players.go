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

// PlayerHandler handles the player roster
type PlayerHandler struct {
	league *leaguesvc.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(league *leaguesvc.Service) *PlayerHandler {
	return &PlayerHandler{league: league}
}

// accountFromPath reads the {address} path variable, which must name an
// account ("alice" or "account:alice")
func accountFromPath(r *http.Request) (model.AccountID, error) {
	addr, err := model.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		return "", NewInvalidRequestError("address: " + err.Error())
	}
	if addr.Kind != model.AddressAccount {
		return "", NewInvalidRequestError("address must be an account")
	}
	return addr.Account, nil
}

// Get handles GET /api/v1/players/{address}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	data, err := h.league.PlayerData(r.Context(), account)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(account, data))
}

// IsAdded handles GET /api/v1/players/{address}/added
func (h *PlayerHandler) IsAdded(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	added, err := h.league.IsAdded(r.Context(), account)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Added{Account: string(account), Added: added})
}

// SetStatus handles PUT /api/v1/players/{address}/status
func (h *PlayerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	var req request.SetStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	receipt, err := h.league.SetPlayerStatus(r.Context(), middleware.MustGetSender(r.Context()), account, model.PlayerStatus(req.Status))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, receipt)
}

// RecordResult handles POST /api/v1/players/{address}/results
func (h *PlayerHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	var req request.RecordResultRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	receipt, err := h.league.RecordResult(r.Context(), middleware.MustGetSender(r.Context()), account, model.BattleOutcome(req.Outcome))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, receipt)
}
