package league

import (
	"context"
	"slices"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// nativeStandards lists the standards the registry implements itself
var nativeStandards = []model.StandardID{}

// Supports answers each query in order: native standards first, then the
// discovery table
func (g *Governance) Supports(ids []model.StandardID) []model.SupportResult {
	results := make([]model.SupportResult, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(nativeStandards, id) {
			results = append(results, model.SupportResult{Kind: model.Support})
			continue
		}
		list, ok := g.Implementors[id]
		if !ok {
			results = append(results, model.SupportResult{Kind: model.NoSupport})
			continue
		}
		results = append(results, model.SupportResult{
			Kind:         model.SupportBy,
			Implementors: slices.Clone(list),
		})
	}
	return results
}

// SetImplementors replaces the entry for id. An empty list is stored as
// present and empty.
func (g *Governance) SetImplementors(id model.StandardID, implementors []model.ContractAddress) {
	if g.Implementors == nil {
		g.Implementors = make(map[model.StandardID][]model.ContractAddress)
	}
	list := make([]model.ContractAddress, len(implementors))
	copy(list, implementors)
	g.Implementors[id] = list
}

func supports[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	var p SupportsParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	return st.gov().Supports(p.IDs), nil
}

func setImplementors[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	g := st.gov()
	if err := g.guard(call.Sender(), false); err != nil {
		return nil, err
	}

	var p SetImplementorsParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	g.SetImplementors(p.ID, p.Implementors)
	return nil, nil
}
