package league

import (
	"context"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// snapshot takes the frame's snapshot, checks it is in the layout this
// module serves and makes sure its maps are usable
func snapshot[S any, P layout[S]](ctx context.Context, call *host.Call) (P, error) {
	st, err := host.Snapshot[S](ctx, call)
	if err != nil {
		return nil, err
	}
	p := P(st)
	if err := p.checkLayout(); err != nil {
		return nil, err
	}
	p.ensureMaps()
	return p, nil
}

func getPaused[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	return st.gov().Paused, nil
}

func view[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	g := st.gov()
	return model.RegistryView{
		Admin:       g.Admin,
		Paused:      g.Paused,
		MetadataURL: g.MetadataURL,
	}, nil
}

// updateAdmin is pause-exempt so a paused registry can still be handed over
func updateAdmin[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	g := st.gov()
	if err := g.guard(call.Sender(), true); err != nil {
		return nil, err
	}

	var p UpdateAdminParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	g.Admin = p.NewAdmin
	return nil, call.Log(model.EventAdminChanged, model.AdminChangedPayload{NewAdmin: p.NewAdmin})
}

func setPaused[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	g := st.gov()
	if err := g.guard(call.Sender(), true); err != nil {
		return nil, err
	}

	var p SetPausedParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	g.Paused = p.Paused
	return nil, nil
}

func setMetadataURL[S any, P layout[S]](ctx context.Context, call *host.Call) (any, error) {
	st, err := snapshot[S, P](ctx, call)
	if err != nil {
		return nil, err
	}
	g := st.gov()
	if err := g.guard(call.Sender(), false); err != nil {
		return nil, err
	}

	var p SetMetadataURLParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	g.MetadataURL = p.URL
	return nil, nil
}
