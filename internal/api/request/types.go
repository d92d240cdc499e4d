package request

import "encoding/json"

// Field values the registry validates itself (statuses, outcomes, module
// refs) are kept as plain strings so malformed input surfaces as the
// registry's parse error rather than a request decoding error.

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// SetPausedRequest is the request body for pausing or unpausing
type SetPausedRequest struct {
	Paused *bool `json:"paused"`
}

// UpdateAdminRequest is the request body for rotating the admin
type UpdateAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// SetMetadataURLRequest is the request body for setting the metadata URL
type SetMetadataURLRequest struct {
	URL string `json:"url"`
}

// MigrationRequest names the entrypoint run on the new code after upgrade
type MigrationRequest struct {
	Entrypoint string          `json:"entrypoint"`
	Parameter  json.RawMessage `json:"parameter,omitempty"`
}

// UpgradeRequest is the request body for upgrading the registry's code
type UpgradeRequest struct {
	Module  string            `json:"module"`
	Migrate *MigrationRequest `json:"migrate,omitempty"`
}

// SetStatusRequest is the request body for setting a player's status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// RecordResultRequest is the request body for recording a battle outcome
type RecordResultRequest struct {
	Outcome string `json:"outcome"`
}

// SupportsRequest is the request body for a standards query
type SupportsRequest struct {
	IDs []string `json:"ids"`
}

// SetImplementorsRequest is the request body for replacing the implementor
// list of a standard. Addresses use the "<index>,<subindex>" form.
type SetImplementorsRequest struct {
	Implementors []string `json:"implementors"`
}
