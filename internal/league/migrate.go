package league

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// MigrateV1ToV2 converts the counters layout to the outcomes layout.
// Counters move into the tally and the outcome history starts empty.
func MigrateV1ToV2(old *StateV1) *StateV2 {
	old.ensureMaps()
	next := &StateV2{
		Layout:     LayoutOutcomes,
		Governance: old.Governance,
		Players:    make(map[model.AccountID]PlayerEntry, len(old.Players)),
	}
	for account, rec := range old.Players {
		next.Players[account] = PlayerEntry{
			Status:   rec.Status,
			Tally:    Tally{Wins: rec.Wins, Losses: rec.Losses},
			Outcomes: []model.BattleOutcome{},
		}
	}
	return next
}

// migrate is low-level and only the instance itself may call it, which in
// practice means the upgrade entrypoint invoking it after the code swap.
// Running it on state that is already in the outcomes layout is a no-op.
func migrate(ctx context.Context, call *host.Call) (any, error) {
	if call.Sender() != model.ContractAddr(call.Self()) {
		return nil, model.ErrUnauthorized
	}

	raw, err := call.ReadRoot(ctx)
	if err != nil {
		return nil, err
	}
	var header struct {
		Layout int `json:"layout"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("read state layout: %w", err)
	}
	switch header.Layout {
	case LayoutOutcomes:
		return nil, nil
	case LayoutCounters:
	default:
		return nil, fmt.Errorf("unknown state layout %d", header.Layout)
	}

	var old StateV1
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decode counters layout: %w", err)
	}
	data, err := json.Marshal(MigrateV1ToV2(&old))
	if err != nil {
		return nil, err
	}
	return nil, call.WriteRoot(ctx, data)
}
