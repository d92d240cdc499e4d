package handler

import (
	"net/http"

	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
)

// AccountHandler handles account registration and login
type AccountHandler struct {
	authService *auth.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Register handles POST /api/v1/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Account == "" {
		WriteError(w, NewInvalidRequestError("account is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Register(r.Context(), model.AccountID(req.Account), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Account == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("account and password are required"))
		return
	}

	session, err := h.authService.Login(r.Context(), model.AccountID(req.Account), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}
