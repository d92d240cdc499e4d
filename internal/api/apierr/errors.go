package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeParseError                = "PARSE_ERROR"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeContractPaused            = "CONTRACT_PAUSED"
	CodePlayerNotFound            = "PLAYER_NOT_FOUND"
	CodeEventSinkFull             = "EVENT_SINK_FULL"
	CodeEventSinkMalformed        = "EVENT_SINK_MALFORMED"
	CodeInvokeContractError       = "INVOKE_CONTRACT_ERROR"
	CodeUpgradeMissingModule      = "UPGRADE_MISSING_MODULE"
	CodeUpgradeMissingContract    = "UPGRADE_MISSING_CONTRACT"
	CodeUpgradeUnsupportedVersion = "UPGRADE_UNSUPPORTED_VERSION"
	CodeStateLayoutMismatch       = "STATE_LAYOUT_MISMATCH"
	CodeInvalidRequest            = "INVALID_REQUEST"
	CodeAccountExists             = "ACCOUNT_EXISTS"
	CodeInvalidCredentials        = "INVALID_CREDENTIALS"
	CodeNotFound                  = "NOT_FOUND"
	CodeInternalError             = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. A failed sub-call is
// reported as such even though it also matches its cause.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrStateLayout) && !errors.Is(err, model.ErrInvokeContract):
		return &httpError{http.StatusConflict, APIError{CodeStateLayoutMismatch, "Module cannot read the registry's stored state layout"}}
	case errors.Is(err, model.ErrInvokeContract):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvokeContractError, err.Error()}}

	case errors.Is(err, model.ErrParse):
		return &httpError{http.StatusBadRequest, APIError{CodeParseError, err.Error()}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusForbidden, APIError{CodeUnauthorized, "Sender is not the registry admin"}}
	case errors.Is(err, model.ErrContractPaused):
		return &httpError{http.StatusConflict, APIError{CodeContractPaused, "Registry is paused"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrEventSinkFull):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeEventSinkFull, "Too many events in one call"}}
	case errors.Is(err, model.ErrEventSinkMalformed):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeEventSinkMalformed, err.Error()}}
	case errors.Is(err, model.ErrUpgradeMissingModule):
		return &httpError{http.StatusNotFound, APIError{CodeUpgradeMissingModule, "Module does not exist"}}
	case errors.Is(err, model.ErrUpgradeMissingContract):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeUpgradeMissingContract, "Module does not contain the registry contract"}}
	case errors.Is(err, model.ErrUpgradeUnsupportedVersion):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeUpgradeUnsupportedVersion, "Module version is not supported"}}

	case errors.Is(err, model.ErrInstanceNotFound),
		errors.Is(err, model.ErrEntrypointNotFound),
		errors.Is(err, host.ErrModuleNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid account or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, model.ErrAccountExists):
		return &httpError{http.StatusConflict, APIError{CodeAccountExists, "Account already exists"}}
	case errors.Is(err, auth.ErrInvalidAccountID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Account id must be 1-64 printable characters without ':', ',' or '/'"}}
	case errors.Is(err, auth.ErrWeakPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Password must be at least 8 characters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an error for a missing bearer token
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
