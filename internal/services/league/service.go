package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/versusleague/internal/host"
	"github.com/mcoot/versusleague/internal/league"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// anonymous is the sender used for read-only queries
var anonymous = model.AccountAddress("anonymous")

// Receipt describes a committed mutation
type Receipt struct {
	TxID   string        `json:"txId"`
	Events []model.Event `json:"events"`
}

// Service is a typed client for a single league registry instance
type Service struct {
	runtime *host.Runtime
	store   storage.Storage
	addr    model.ContractAddress
	logger  *slog.Logger
}

// New creates a service bound to the registry at addr
func New(runtime *host.Runtime, store storage.Storage, addr model.ContractAddress, logger *slog.Logger) *Service {
	return &Service{
		runtime: runtime,
		store:   store,
		addr:    addr,
		logger:  logger,
	}
}

// Bootstrap returns the registry at addr, creating it from module with
// admin as its first administrator when no instance exists there yet
func Bootstrap(
	ctx context.Context,
	runtime *host.Runtime,
	addr model.ContractAddress,
	admin model.AccountID,
	module model.ModuleRef,
) (model.ContractAddress, bool, error) {
	inst, err := runtime.Instance(ctx, addr)
	if err == nil {
		if inst.ContractName != league.ContractName {
			return addr, false, fmt.Errorf("instance %s runs %q, not a league registry", addr, inst.ContractName)
		}
		return addr, false, nil
	}
	if !errors.Is(err, model.ErrInstanceNotFound) {
		return addr, false, err
	}

	res, err := runtime.Init(ctx, host.InitRequest{
		Sender:   admin,
		Module:   module,
		Contract: league.ContractName,
	})
	if err != nil {
		return addr, false, fmt.Errorf("create registry: %w", err)
	}
	if res.Address != addr {
		return res.Address, true, fmt.Errorf("registry created at %s, expected %s", res.Address, addr)
	}
	return res.Address, true, nil
}

// Address returns the registry's contract address
func (s *Service) Address() model.ContractAddress {
	return s.addr
}

// View returns the governance summary
func (s *Service) View(ctx context.Context) (*model.RegistryView, error) {
	var out model.RegistryView
	if err := s.query(ctx, league.EntrypointView, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPaused reports whether mutations are blocked
func (s *Service) GetPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.query(ctx, league.EntrypointGetPaused, nil, &paused)
	return paused, err
}

// SetPaused sets or clears the pause flag
func (s *Service) SetPaused(ctx context.Context, sender model.Address, paused bool) (*Receipt, error) {
	return s.mutate(ctx, sender, league.EntrypointSetPaused, league.SetPausedParams{Paused: paused})
}

// UpdateAdmin hands administration to newAdmin
func (s *Service) UpdateAdmin(ctx context.Context, sender model.Address, newAdmin model.Address) (*Receipt, error) {
	return s.mutate(ctx, sender, league.EntrypointUpdateAdmin, league.UpdateAdminParams{NewAdmin: newAdmin})
}

// SetMetadataURL sets the registry's metadata link
func (s *Service) SetMetadataURL(ctx context.Context, sender model.Address, url string) (*Receipt, error) {
	return s.mutate(ctx, sender, league.EntrypointSetMetadataURL, league.SetMetadataURLParams{URL: url})
}

// Upgrade replaces the registry's code, then runs migrate on the new code
// when it is given
func (s *Service) Upgrade(ctx context.Context, sender model.Address, module model.ModuleRef, migrate *league.MigrationCall) (*Receipt, error) {
	receipt, err := s.mutate(ctx, sender, league.EntrypointUpgrade, league.UpgradeParams{Module: module, Migrate: migrate})
	if err != nil {
		return nil, err
	}
	s.logger.Info("registry upgraded",
		slog.String("address", s.addr.String()),
		slog.String("module", string(module)),
		slog.String("tx_id", receipt.TxID),
	)
	return receipt, nil
}

// Modules lists every deployed module
func (s *Service) Modules() []model.ModuleInfo {
	return s.runtime.Catalog().List()
}

// CurrentModule returns the module the registry runs
func (s *Service) CurrentModule(ctx context.Context) (model.ModuleInfo, error) {
	inst, err := s.runtime.Instance(ctx, s.addr)
	if err != nil {
		return model.ModuleInfo{}, err
	}
	info, ok := s.runtime.Catalog().Module(inst.ModuleRef)
	if !ok {
		return model.ModuleInfo{}, fmt.Errorf("%w: %s", host.ErrModuleNotFound, inst.ModuleRef)
	}
	return info, nil
}

// Events returns the newest committed events of the registry, oldest first
func (s *Service) Events(ctx context.Context, limit int) ([]model.Event, error) {
	return s.store.ListEvents(ctx, s.addr, limit)
}

// PlayerData returns a player's status and battle record
func (s *Service) PlayerData(ctx context.Context, account model.AccountID) (*model.PlayerData, error) {
	var out model.PlayerData
	if err := s.query(ctx, league.EntrypointGetPlayerData, league.AccountParams{Account: account}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsAdded reports whether the account has a record
func (s *Service) IsAdded(ctx context.Context, account model.AccountID) (bool, error) {
	var added bool
	err := s.query(ctx, league.EntrypointIsAdded, league.AccountParams{Account: account}, &added)
	return added, err
}

// SetPlayerStatus adds a player or changes its status
func (s *Service) SetPlayerStatus(ctx context.Context, sender model.Address, account model.AccountID, status model.PlayerStatus) (*Receipt, error) {
	return s.mutate(ctx, sender, league.EntrypointSetPlayerStatus, league.SetPlayerStatusParams{Account: account, Status: status})
}

// RecordResult records a battle outcome for an existing player
func (s *Service) RecordResult(ctx context.Context, sender model.Address, account model.AccountID, outcome model.BattleOutcome) (*Receipt, error) {
	return s.mutate(ctx, sender, league.EntrypointRecordResult, league.RecordResultParams{Account: account, Outcome: outcome})
}

// Supports answers a batch of standards queries in order
func (s *Service) Supports(ctx context.Context, ids []model.StandardID) ([]model.SupportResult, error) {
	if ids == nil {
		ids = []model.StandardID{}
	}
	var out []model.SupportResult
	if err := s.query(ctx, league.EntrypointSupports, league.SupportsParams{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetImplementors replaces the implementor list of a standard
func (s *Service) SetImplementors(ctx context.Context, sender model.Address, id model.StandardID, implementors []model.ContractAddress) (*Receipt, error) {
	if implementors == nil {
		implementors = []model.ContractAddress{}
	}
	return s.mutate(ctx, sender, league.EntrypointSetImplementors, league.SetImplementorsParams{ID: id, Implementors: implementors})
}

func (s *Service) query(ctx context.Context, entrypoint string, param any, out any) error {
	res, err := s.invoke(ctx, anonymous, entrypoint, param)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Value, out); err != nil {
		return fmt.Errorf("decode %s result: %w", entrypoint, err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, sender model.Address, entrypoint string, param any) (*Receipt, error) {
	res, err := s.invoke(ctx, sender, entrypoint, param)
	if err != nil {
		return nil, err
	}
	events := res.Events
	if events == nil {
		events = []model.Event{}
	}
	return &Receipt{TxID: res.TxID, Events: events}, nil
}

func (s *Service) invoke(ctx context.Context, sender model.Address, entrypoint string, param any) (*host.InvokeResult, error) {
	var raw json.RawMessage
	if param != nil {
		data, err := json.Marshal(param)
		if err != nil {
			return nil, fmt.Errorf("encode %s parameter: %w", entrypoint, err)
		}
		raw = data
	}
	return s.runtime.Invoke(ctx, host.InvokeRequest{
		Sender:     sender,
		Contract:   s.addr,
		Entrypoint: entrypoint,
		Parameter:  raw,
	})
}
