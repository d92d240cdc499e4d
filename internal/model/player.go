package model

import (
	"encoding/json"
	"fmt"
)

// PlayerStatus is the eligibility of a player in the league
type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "Active"
	PlayerSuspended PlayerStatus = "Suspended"
)

// Valid reports whether s is one of the stored statuses
func (s PlayerStatus) Valid() bool {
	return s == PlayerActive || s == PlayerSuspended
}

func (s *PlayerStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !PlayerStatus(raw).Valid() {
		return fmt.Errorf("unknown player status %q", raw)
	}
	*s = PlayerStatus(raw)
	return nil
}

// BattleOutcome is the result of a single battle
type BattleOutcome string

const (
	OutcomeWin  BattleOutcome = "Win"
	OutcomeLoss BattleOutcome = "Loss"
)

func (o BattleOutcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLoss
}

func (o *BattleOutcome) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !BattleOutcome(raw).Valid() {
		return fmt.Errorf("unknown battle outcome %q", raw)
	}
	*o = BattleOutcome(raw)
	return nil
}

// PlayerData is the externally visible record of a player. Outcomes is only
// populated by registries that keep a per-battle history.
type PlayerData struct {
	Status   PlayerStatus    `json:"status"`
	Wins     uint64          `json:"wins"`
	Losses   uint64          `json:"losses"`
	Outcomes []BattleOutcome `json:"outcomes,omitempty"`
}

// RegistryView is the governance summary returned by the view entrypoint
type RegistryView struct {
	Admin       Address `json:"admin"`
	Paused      bool    `json:"paused"`
	MetadataURL string  `json:"metadataUrl"`
}
