package league

import (
	"fmt"

	"github.com/mcoot/versusleague/internal/model"
)

// Layout versions of the persisted registry state
const (
	LayoutCounters = 1
	LayoutOutcomes = 2
)

// Governance is shared by every state layout
type Governance struct {
	Admin        model.Address                                `json:"admin"`
	Paused       bool                                         `json:"paused"`
	MetadataURL  string                                       `json:"metadataUrl"`
	Implementors map[model.StandardID][]model.ContractAddress `json:"implementors"`
}

func newGovernance(admin model.Address) Governance {
	return Governance{
		Admin:        admin,
		Implementors: make(map[model.StandardID][]model.ContractAddress),
	}
}

// PlayerRecord is a player in the counters layout
type PlayerRecord struct {
	Status model.PlayerStatus `json:"status"`
	Wins   uint64             `json:"wins"`
	Losses uint64             `json:"losses"`
}

// StateV1 is the counters layout served by module 1.0.0
type StateV1 struct {
	Layout int `json:"layout"`
	Governance
	Players map[model.AccountID]PlayerRecord `json:"players"`
}

// Tally holds cumulative counters in the outcomes layout
type Tally struct {
	Wins   uint64 `json:"wins"`
	Losses uint64 `json:"losses"`
}

// PlayerEntry is a player in the outcomes layout
type PlayerEntry struct {
	Status   model.PlayerStatus    `json:"status"`
	Tally    Tally                 `json:"tally"`
	Outcomes []model.BattleOutcome `json:"outcomes"`
}

// StateV2 is the outcomes layout served by module 1.1.0
type StateV2 struct {
	Layout int `json:"layout"`
	Governance
	Players map[model.AccountID]PlayerEntry `json:"players"`
}

// layout is satisfied by pointers to the state layouts so that handlers
// shared between module versions can reach the governance fields
type layout[S any] interface {
	*S
	gov() *Governance
	ensureMaps()
	checkLayout() error
}

func (s *StateV1) gov() *Governance { return &s.Governance }
func (s *StateV2) gov() *Governance { return &s.Governance }

func (s *StateV1) checkLayout() error { return expectLayout(s.Layout, LayoutCounters) }
func (s *StateV2) checkLayout() error { return expectLayout(s.Layout, LayoutOutcomes) }

// expectLayout refuses state written in another layout. Decoding it anyway
// would read every player with zero counters.
func expectLayout(stored, served int) error {
	if stored != served {
		return fmt.Errorf("%w: stored layout %d, module serves %d", model.ErrStateLayout, stored, served)
	}
	return nil
}

func (s *StateV1) ensureMaps() {
	if s.Players == nil {
		s.Players = make(map[model.AccountID]PlayerRecord)
	}
	if s.Implementors == nil {
		s.Implementors = make(map[model.StandardID][]model.ContractAddress)
	}
}

func (s *StateV2) ensureMaps() {
	if s.Players == nil {
		s.Players = make(map[model.AccountID]PlayerEntry)
	}
	if s.Implementors == nil {
		s.Implementors = make(map[model.StandardID][]model.ContractAddress)
	}
}
