package response

import (
	"time"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
)

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Account   string    `json:"account"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Account:   string(s.Account),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// Registry is the governance summary of the registry
type Registry struct {
	Address     string `json:"address"`
	Admin       string `json:"admin"`
	Paused      bool   `json:"paused"`
	MetadataURL string `json:"metadata_url"`
	Module      string `json:"module"`
	Version     string `json:"version"`
}

// RegistryFromView converts a registry view and its current module
func RegistryFromView(addr model.ContractAddress, v *model.RegistryView, module model.ModuleInfo) Registry {
	return Registry{
		Address:     addr.String(),
		Admin:       v.Admin.String(),
		Paused:      v.Paused,
		MetadataURL: v.MetadataURL,
		Module:      string(module.Ref),
		Version:     module.Version,
	}
}

// Paused reports the pause flag
type Paused struct {
	Paused bool `json:"paused"`
}

// Added reports whether an account has a player record
type Added struct {
	Account string `json:"account"`
	Added   bool   `json:"added"`
}

// Player is a player's status and battle record
type Player struct {
	Account  string                `json:"account"`
	Status   model.PlayerStatus    `json:"status"`
	Wins     uint64                `json:"wins"`
	Losses   uint64                `json:"losses"`
	Outcomes []model.BattleOutcome `json:"outcomes,omitempty"`
}

// PlayerFromModel converts model.PlayerData
func PlayerFromModel(account model.AccountID, d *model.PlayerData) Player {
	return Player{
		Account:  string(account),
		Status:   d.Status,
		Wins:     d.Wins,
		Losses:   d.Losses,
		Outcomes: d.Outcomes,
	}
}

// Supports answers a standards query, in query order
type Supports struct {
	Results []model.SupportResult `json:"results"`
}

// Events is a page of the committed event log, oldest first
type Events struct {
	Events []model.Event `json:"events"`
}

// Modules lists deployed modules and the one the registry runs
type Modules struct {
	Current string             `json:"current"`
	Modules []model.ModuleInfo `json:"modules"`
}
