package league

import (
	"context"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// ContractName is the contract both module versions export
const ContractName = "versus_league"

const moduleName = "versus-league"

// Module versions
const (
	VersionCounters = "1.0.0"
	VersionOutcomes = "1.1.0"
)

func initV1(ctx context.Context, call *host.Call) (any, error) {
	st, err := host.Snapshot[StateV1](ctx, call)
	if err != nil {
		return nil, err
	}
	*st = StateV1{
		Layout:     LayoutCounters,
		Governance: newGovernance(call.Sender()),
		Players:    make(map[model.AccountID]PlayerRecord),
	}
	return nil, call.Log(model.EventAdminChanged, model.AdminChangedPayload{NewAdmin: call.Sender()})
}

func initV2(ctx context.Context, call *host.Call) (any, error) {
	st, err := host.Snapshot[StateV2](ctx, call)
	if err != nil {
		return nil, err
	}
	*st = StateV2{
		Layout:     LayoutOutcomes,
		Governance: newGovernance(call.Sender()),
		Players:    make(map[model.AccountID]PlayerEntry),
	}
	return nil, call.Log(model.EventAdminChanged, model.AdminChangedPayload{NewAdmin: call.Sender()})
}

// governanceEntrypoints are identical across layouts
func governanceEntrypoints[S any, P layout[S]]() []host.Entrypoint {
	return []host.Entrypoint{
		{Name: EntrypointGetPaused, Mode: host.ModeView, Handler: getPaused[S, P]},
		{Name: EntrypointView, Mode: host.ModeView, Handler: view[S, P]},
		{Name: EntrypointUpdateAdmin, Mode: host.ModeMutable, ParamSchema: updateAdminSchema, Handler: updateAdmin[S, P]},
		{Name: EntrypointSetPaused, Mode: host.ModeMutable, ParamSchema: setPausedSchema, Handler: setPaused[S, P]},
		{Name: EntrypointSetMetadataURL, Mode: host.ModeMutable, ParamSchema: setMetadataURLSchema, Handler: setMetadataURL[S, P]},
		{Name: EntrypointSupports, Mode: host.ModeView, ParamSchema: supportsSchema, Handler: supports[S, P]},
		{Name: EntrypointSetImplementors, Mode: host.ModeMutable, ParamSchema: setImplementorsSchema, Handler: setImplementors[S, P]},
		{Name: EntrypointUpgrade, Mode: host.ModeLowLevel, Handler: upgrade},
	}
}

// ModuleV1 is the counters layout module
func ModuleV1() host.Module {
	entrypoints := append(governanceEntrypoints[StateV1](),
		host.Entrypoint{Name: EntrypointSetPlayerStatus, Mode: host.ModeMutable, ParamSchema: setPlayerStatusSchema, Handler: setPlayerStatusV1},
		host.Entrypoint{Name: EntrypointRecordResult, Mode: host.ModeMutable, ParamSchema: recordResultSchema, Handler: recordResultV1},
		host.Entrypoint{Name: EntrypointGetPlayerData, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getPlayerDataV1},
		host.Entrypoint{Name: EntrypointGetStatus, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getStatusV1},
		host.Entrypoint{Name: EntrypointGetRecord, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getRecordV1},
		host.Entrypoint{Name: EntrypointIsAdded, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: isAddedV1},
	)
	return host.Module{
		Name:    moduleName,
		Version: VersionCounters,
		Contracts: []host.Contract{{
			Name:        ContractName,
			Init:        host.Entrypoint{Name: "init", Handler: initV1},
			Entrypoints: entrypoints,
		}},
	}
}

// ModuleV2 is the outcomes layout module. It adds the migrate entrypoint
// used when upgrading an instance from ModuleV1.
func ModuleV2() host.Module {
	entrypoints := append(governanceEntrypoints[StateV2](),
		host.Entrypoint{Name: EntrypointSetPlayerStatus, Mode: host.ModeMutable, ParamSchema: setPlayerStatusSchema, Handler: setPlayerStatusV2},
		host.Entrypoint{Name: EntrypointRecordResult, Mode: host.ModeMutable, ParamSchema: recordResultSchema, Handler: recordResultV2},
		host.Entrypoint{Name: EntrypointGetPlayerData, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getPlayerDataV2},
		host.Entrypoint{Name: EntrypointGetStatus, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getStatusV2},
		host.Entrypoint{Name: EntrypointGetRecord, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: getRecordV2},
		host.Entrypoint{Name: EntrypointIsAdded, Mode: host.ModeView, ParamSchema: accountParamsSchema, Handler: isAddedV2},
		host.Entrypoint{Name: EntrypointMigrate, Mode: host.ModeLowLevel, Handler: migrate},
	)
	return host.Module{
		Name:    moduleName,
		Version: VersionOutcomes,
		Contracts: []host.Contract{{
			Name:        ContractName,
			Init:        host.Entrypoint{Name: "init", Handler: initV2},
			Entrypoints: entrypoints,
		}},
	}
}
