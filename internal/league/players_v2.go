package league

import (
	"context"
	"slices"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// Outcomes layout (module 1.1.0). The tally is kept alongside the outcome
// list so counters survive the migration from the counters layout, where no
// history exists.

func setPlayerStatusV2(ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[StateV2](ctx, call)
	if err != nil {
		return nil, err
	}
	if err := st.guard(call.Sender(), false); err != nil {
		return nil, err
	}

	var p SetPlayerStatusParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	entry, ok := st.Players[p.Account]
	if !ok {
		entry.Outcomes = []model.BattleOutcome{}
	}
	entry.Status = p.Status
	st.Players[p.Account] = entry
	return nil, nil
}

func recordResultV2(ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[StateV2](ctx, call)
	if err != nil {
		return nil, err
	}
	if err := st.guard(call.Sender(), false); err != nil {
		return nil, err
	}

	var p RecordResultParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	entry, ok := st.Players[p.Account]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	isWin := p.Outcome == model.OutcomeWin
	if isWin {
		entry.Tally.Wins++
	} else {
		entry.Tally.Losses++
	}
	entry.Outcomes = append(entry.Outcomes, p.Outcome)
	st.Players[p.Account] = entry
	return nil, call.Log(model.EventBattleResult, model.BattleResultPayload{Player: p.Account, IsWin: isWin})
}

func lookupV2(ctx context.Context, call *host.Call) (PlayerEntry, error) {
	var p AccountParams
	if err := call.Parameter(&p); err != nil {
		return PlayerEntry{}, err
	}
	st, err := snapshot[StateV2](ctx, call)
	if err != nil {
		return PlayerEntry{}, err
	}
	entry, ok := st.Players[p.Account]
	if !ok {
		return PlayerEntry{}, model.ErrPlayerNotFound
	}
	return entry, nil
}

func getPlayerDataV2(ctx context.Context, call *host.Call) (any, error) {
	entry, err := lookupV2(ctx, call)
	if err != nil {
		return nil, err
	}
	return model.PlayerData{
		Status:   entry.Status,
		Wins:     entry.Tally.Wins,
		Losses:   entry.Tally.Losses,
		Outcomes: slices.Clone(entry.Outcomes),
	}, nil
}

func getStatusV2(ctx context.Context, call *host.Call) (any, error) {
	entry, err := lookupV2(ctx, call)
	if err != nil {
		return nil, err
	}
	return entry.Status, nil
}

func getRecordV2(ctx context.Context, call *host.Call) (any, error) {
	entry, err := lookupV2(ctx, call)
	if err != nil {
		return nil, err
	}
	return PlayerRecordView{
		Wins:     entry.Tally.Wins,
		Losses:   entry.Tally.Losses,
		Outcomes: slices.Clone(entry.Outcomes),
	}, nil
}

func isAddedV2(ctx context.Context, call *host.Call) (any, error) {
	var p AccountParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	st, err := snapshot[StateV2](ctx, call)
	if err != nil {
		return nil, err
	}
	_, ok := st.Players[p.Account]
	return ok, nil
}
