package model

import (
	"encoding/json"
	"time"
)

// EventType identifies the type of event
type EventType string

const (
	// Registry events
	EventAdminChanged EventType = "AdminChanged"
	EventBattleResult EventType = "BattleResult"

	// Host events
	EventUpgraded EventType = "Upgraded"
)

// Event is a committed log entry emitted by a contract during a call
type Event struct {
	TxID      string          `json:"txId"`
	Contract  ContractAddress `json:"contract"`
	Seq       int             `json:"seq"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// AdminChangedPayload contains data for admin changed events
type AdminChangedPayload struct {
	NewAdmin Address `json:"newAdmin"`
}

// BattleResultPayload contains data for battle result events
type BattleResultPayload struct {
	Player AccountID `json:"player"`
	IsWin  bool      `json:"isWin"`
}

// UpgradedPayload contains data for upgraded events
type UpgradedPayload struct {
	From ModuleRef `json:"from"`
	To   ModuleRef `json:"to"`
}
