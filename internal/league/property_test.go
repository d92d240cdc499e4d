package league

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mcoot/versusleague/internal/model"
)

// op is one randomly generated registry call
type op struct {
	Kind    int // 0 set status, 1 record result, 2 toggle pause
	Account int
	Flag    bool
}

func genOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 2),
		gen.IntRange(0, 3),
		gen.Bool(),
	).Map(func(vals []interface{}) op {
		return op{Kind: vals[0].(int), Account: vals[1].(int), Flag: vals[2].(bool)}
	})
}

var propAccounts = []model.AccountID{"a", "b", "c", "d"}

// model of the registry the real one is checked against
type shadow struct {
	paused  bool
	players map[model.AccountID]*model.PlayerData
}

func applyOps(h *harness, ops []op) (*shadow, bool) {
	admin := model.AccountAddress("admin")
	sh := &shadow{players: make(map[model.AccountID]*model.PlayerData)}

	for _, o := range ops {
		account := propAccounts[o.Account]
		switch o.Kind {
		case 0:
			status := model.PlayerActive
			if o.Flag {
				status = model.PlayerSuspended
			}
			_, err := h.call(admin, EntrypointSetPlayerStatus, SetPlayerStatusParams{Account: account, Status: status})
			if sh.paused {
				if !errors.Is(err, model.ErrContractPaused) {
					return sh, false
				}
				continue
			}
			if err != nil {
				return sh, false
			}
			rec, ok := sh.players[account]
			if !ok {
				rec = &model.PlayerData{}
				sh.players[account] = rec
			}
			rec.Status = status
		case 1:
			outcome := model.OutcomeLoss
			if o.Flag {
				outcome = model.OutcomeWin
			}
			_, err := h.call(admin, EntrypointRecordResult, RecordResultParams{Account: account, Outcome: outcome})
			rec, ok := sh.players[account]
			switch {
			case sh.paused:
				if !errors.Is(err, model.ErrContractPaused) {
					return sh, false
				}
			case !ok:
				if !errors.Is(err, model.ErrPlayerNotFound) {
					return sh, false
				}
			default:
				if err != nil {
					return sh, false
				}
				if o.Flag {
					rec.Wins++
				} else {
					rec.Losses++
				}
			}
		case 2:
			if _, err := h.call(admin, EntrypointSetPaused, SetPausedParams{Paused: o.Flag}); err != nil {
				return sh, false
			}
			sh.paused = o.Flag
		}
	}
	return sh, true
}

func TestRegistryMatchesShadowModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("isAdded iff getPlayerData succeeds, and counters match recorded results", prop.ForAll(
		func(ops []op) bool {
			h, err := newHarness(func(h *harness) model.ModuleRef { return h.v1 })
			if err != nil {
				return false
			}
			sh, ok := applyOps(h, ops)
			if !ok {
				return false
			}

			for _, account := range propAccounts {
				raw, err := h.call(model.AccountAddress("x"), EntrypointIsAdded, AccountParams{Account: account})
				if err != nil {
					return false
				}
				var added bool
				if err := json.Unmarshal(raw, &added); err != nil {
					return false
				}

				data, err := h.playerData(account)
				want, exists := sh.players[account]
				if added != exists || added != (err == nil) {
					return false
				}
				if exists && (data.Status != want.Status || data.Wins != want.Wins || data.Losses != want.Losses) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.TestingRun(t)
}

func TestCountersSurviveMigration(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("upgrade with migration keeps every player's status and counters", prop.ForAll(
		func(ops []op) bool {
			h, err := newHarness(func(h *harness) model.ModuleRef { return h.v1 })
			if err != nil {
				return false
			}
			sh, ok := applyOps(h, ops)
			if !ok {
				return false
			}

			admin := model.AccountAddress("admin")
			if _, err := h.call(admin, EntrypointUpgrade, UpgradeParams{Module: h.v2, Migrate: &MigrationCall{Entrypoint: EntrypointMigrate}}); err != nil {
				return false
			}
			for account, want := range sh.players {
				data, err := h.playerData(account)
				if err != nil {
					return false
				}
				if data.Status != want.Status || data.Wins != want.Wins || data.Losses != want.Losses || len(data.Outcomes) != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.TestingRun(t)
}

func TestSupportsAnswersInQueryOrder(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("one answer per id, in order, SupportBy only for registered ids", prop.ForAll(
		func(registered []int, queries []int) bool {
			g := newGovernance(model.AccountAddress("admin"))
			for i, id := range registered {
				g.SetImplementors(standardName(id), make([]model.ContractAddress, i%3))
			}

			ids := make([]model.StandardID, len(queries))
			for i, q := range queries {
				ids[i] = standardName(q)
			}
			results := g.Supports(ids)
			if len(results) != len(ids) {
				return false
			}
			for i, id := range ids {
				_, present := g.Implementors[id]
				if present != (results[i].Kind == model.SupportBy) {
					return false
				}
				if !present && results[i].Kind != model.NoSupport {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.IntRange(0, 7)),
	))

	properties.TestingRun(t)
}

func standardName(n int) model.StandardID {
	return model.StandardID(fmt.Sprintf("CIS-%d", n))
}
