package league

import (
	"encoding/json"

	"github.com/mcoot/versusleague/internal/model"
)

// Entrypoint names
const (
	EntrypointSetPlayerStatus = "setPlayerStatus"
	EntrypointRecordResult    = "recordResult"
	EntrypointGetPlayerData   = "getPlayerData"
	EntrypointGetStatus       = "getStatus"
	EntrypointGetRecord       = "getRecord"
	EntrypointIsAdded         = "isAdded"
	EntrypointGetPaused       = "getPaused"
	EntrypointView            = "view"
	EntrypointUpdateAdmin     = "updateAdmin"
	EntrypointSetPaused       = "setPaused"
	EntrypointSetMetadataURL  = "setMetadataUrl"
	EntrypointSupports        = "supports"
	EntrypointSetImplementors = "setImplementors"
	EntrypointUpgrade         = "upgrade"
	EntrypointMigrate         = "migrate"
)

type SetPlayerStatusParams struct {
	Account model.AccountID    `json:"account"`
	Status  model.PlayerStatus `json:"status"`
}

type RecordResultParams struct {
	Account model.AccountID     `json:"account"`
	Outcome model.BattleOutcome `json:"outcome"`
}

type AccountParams struct {
	Account model.AccountID `json:"account"`
}

type UpdateAdminParams struct {
	NewAdmin model.Address `json:"newAdmin"`
}

type SetPausedParams struct {
	Paused bool `json:"paused"`
}

type SetMetadataURLParams struct {
	URL string `json:"url"`
}

type SupportsParams struct {
	IDs []model.StandardID `json:"ids"`
}

type SetImplementorsParams struct {
	ID           model.StandardID        `json:"id"`
	Implementors []model.ContractAddress `json:"implementors"`
}

// MigrationCall names the entrypoint invoked on the new code after an upgrade
type MigrationCall struct {
	Entrypoint string          `json:"entrypoint"`
	Parameter  json.RawMessage `json:"parameter,omitempty"`
}

type UpgradeParams struct {
	Module  model.ModuleRef `json:"module"`
	Migrate *MigrationCall  `json:"migrate,omitempty"`
}

// PlayerRecordView is the return value of getRecord
type PlayerRecordView struct {
	Wins     uint64                `json:"wins"`
	Losses   uint64                `json:"losses"`
	Outcomes []model.BattleOutcome `json:"outcomes,omitempty"`
}
