package league

import (
	"context"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// Counters layout (module 1.0.0)

func setPlayerStatusV1(ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[StateV1](ctx, call)
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
	rec := st.Players[p.Account]
	rec.Status = p.Status
	st.Players[p.Account] = rec
	return nil, nil
}

func recordResultV1(ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[StateV1](ctx, call)
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
	rec, ok := st.Players[p.Account]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	isWin := p.Outcome == model.OutcomeWin
	if isWin {
		rec.Wins++
	} else {
		rec.Losses++
	}
	st.Players[p.Account] = rec
	return nil, call.Log(model.EventBattleResult, model.BattleResultPayload{Player: p.Account, IsWin: isWin})
}

func lookupV1(ctx context.Context, call *host.Call) (PlayerRecord, error) {
	var p AccountParams
	if err := call.Parameter(&p); err != nil {
		return PlayerRecord{}, err
	}
	st, err := snapshot[StateV1](ctx, call)
	if err != nil {
		return PlayerRecord{}, err
	}
	rec, ok := st.Players[p.Account]
	if !ok {
		return PlayerRecord{}, model.ErrPlayerNotFound
	}
	return rec, nil
}

func getPlayerDataV1(ctx context.Context, call *host.Call) (any, error) {
	rec, err := lookupV1(ctx, call)
	if err != nil {
		return nil, err
	}
	return model.PlayerData{Status: rec.Status, Wins: rec.Wins, Losses: rec.Losses}, nil
}

func getStatusV1(ctx context.Context, call *host.Call) (any, error) {
	rec, err := lookupV1(ctx, call)
	if err != nil {
		return nil, err
	}
	return rec.Status, nil
}

func getRecordV1(ctx context.Context, call *host.Call) (any, error) {
	rec, err := lookupV1(ctx, call)
	if err != nil {
		return nil, err
	}
	return PlayerRecordView{Wins: rec.Wins, Losses: rec.Losses}, nil
}

func isAddedV1(ctx context.Context, call *host.Call) (any, error) {
	var p AccountParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	st, err := snapshot[StateV1](ctx, call)
	if err != nil {
		return nil, err
	}
	_, ok := st.Players[p.Account]
	return ok, nil
}
