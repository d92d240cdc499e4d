package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/model"
)

// upgrade runs as a low-level entrypoint: it never takes a snapshot, so the
// dispatcher has nothing to write back over state the migration produced.
// The admin is read from the root as the transaction currently holds it.
// The new code must be able to read the state it ends up with, so an upgrade
// across layouts without a migration that converts the state is refused.
func upgrade(ctx context.Context, call *host.Call) (any, error) {
	raw, err := call.ReadRoot(ctx)
	if err != nil {
		return nil, err
	}
	var root struct {
		Admin model.Address `json:"admin"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("read admin from root: %w", err)
	}
	if call.Sender() != root.Admin {
		return nil, model.ErrUnauthorized
	}

	var p UpgradeParams
	if err := call.Parameter(&p); err != nil {
		return nil, err
	}
	if p.Module == "" {
		return nil, fmt.Errorf("%w: module is required", model.ErrParse)
	}
	if p.Migrate != nil && p.Migrate.Entrypoint == "" {
		return nil, fmt.Errorf("%w: migrate.entrypoint is required", model.ErrParse)
	}

	if err := call.Upgrade(ctx, p.Module); err != nil {
		return nil, err
	}
	if p.Migrate != nil {
		var param any
		if len(p.Migrate.Parameter) > 0 {
			param = p.Migrate.Parameter
		}
		if _, err := call.Invoke(ctx, call.Self(), p.Migrate.Entrypoint, param); err != nil {
			return nil, err
		}
	}
	if _, err := call.Invoke(ctx, call.Self(), EntrypointGetPaused, nil); err != nil {
		if errors.Is(err, model.ErrStateLayout) {
			return nil, fmt.Errorf("upgrade to %s: %w", p.Module, model.ErrStateLayout)
		}
		return nil, err
	}
	return nil, nil
}
