package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/versusleague/internal/dependencies/clock"
	"github.com/mcoot/versusleague/internal/dependencies/idgen"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

const tracerName = "github.com/mcoot/versusleague/internal/host"

// CommitHook receives the events of every committed top-level call
type CommitHook func(events []model.Event)

// InitRequest creates a new contract instance
type InitRequest struct {
	Sender    model.AccountID
	Module    model.ModuleRef
	Contract  string
	Parameter json.RawMessage
}

// InitResult describes a created instance
type InitResult struct {
	Address model.ContractAddress
	TxID    string
	Events  []model.Event
}

// InvokeRequest calls an entrypoint of an existing instance
type InvokeRequest struct {
	Sender     model.Address
	Contract   model.ContractAddress
	Entrypoint string
	Parameter  json.RawMessage
}

// InvokeResult is the outcome of a committed call
type InvokeResult struct {
	TxID   string
	Value  json.RawMessage
	Events []model.Event
}

// Runtime executes calls against contract instances. One top-level call
// runs at a time; sub-calls re-enter on the same goroutine.
type Runtime struct {
	mu sync.Mutex

	store       storage.Storage
	catalog     *Catalog
	cfg         Config
	constraints *semver.Constraints
	clock       clock.Clock
	ids         idgen.Generator
	logger      *slog.Logger
	tracer      trace.Tracer

	hooksMu sync.RWMutex
	hooks   []CommitHook
}

// NewRuntime creates a runtime over the given store and catalog
func NewRuntime(
	store storage.Storage,
	catalog *Catalog,
	cfg Config,
	clk clock.Clock,
	ids idgen.Generator,
	logger *slog.Logger,
) (*Runtime, error) {
	constraints, err := semver.NewConstraint(cfg.SupportedVersions)
	if err != nil {
		return nil, fmt.Errorf("invalid supported version range %q: %w", cfg.SupportedVersions, err)
	}
	return &Runtime{
		store:       store,
		catalog:     catalog,
		cfg:         cfg,
		constraints: constraints,
		clock:       clk,
		ids:         ids,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// Catalog returns the module catalog
func (r *Runtime) Catalog() *Catalog {
	return r.catalog
}

// OnCommit registers a hook that runs after each successful commit
func (r *Runtime) OnCommit(hook CommitHook) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Instance returns the committed state of an instance
func (r *Runtime) Instance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error) {
	return r.store.GetInstance(ctx, addr)
}

// Init creates a new instance of a contract and runs its init function
func (r *Runtime) Init(ctx context.Context, req InitRequest) (*InitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "host.Init", trace.WithAttributes(
		attribute.String("vlm.module", string(req.Module)),
		attribute.String("vlm.contract", req.Contract),
		attribute.String("vlm.sender", string(req.Sender)),
	))
	defer span.End()

	mod, ok := r.catalog.lookup(req.Module)
	if !ok {
		return nil, r.fail(span, fmt.Errorf("%w: %s", ErrModuleNotFound, req.Module))
	}
	contract, ok := mod.contracts[req.Contract]
	if !ok {
		return nil, r.fail(span, fmt.Errorf("%w: %s", ErrContractNotFound, req.Contract))
	}

	index, err := r.store.NextContractIndex(ctx)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("allocate contract address: %w", err))
	}
	addr := model.ContractAddress{Index: index}

	txID := r.ids.NewID()
	root := newTxn(r.store)
	root.put(&model.Instance{
		Address:      addr,
		ContractName: contract.name,
		ModuleRef:    req.Module,
	})

	sender := model.AccountAddress(req.Sender)
	call := r.newCall(root, txID, addr, sender, req.Sender, contract.init, req.Parameter, 0)
	if _, err := r.run(ctx, call); err != nil {
		r.logger.Info("init aborted",
			"tx_id", txID,
			"contract", req.Contract,
			"sender", sender.String(),
			"error", err,
		)
		return nil, r.fail(span, err)
	}

	batch := root.batch()
	if err := r.store.Commit(ctx, batch); err != nil {
		return nil, r.fail(span, fmt.Errorf("commit: %w", err))
	}
	r.logger.Info("contract initialized",
		"tx_id", txID,
		"address", addr.String(),
		"contract", req.Contract,
		"module", string(req.Module),
		"sender", sender.String(),
	)
	r.publish(batch.Events)

	return &InitResult{Address: addr, TxID: txID, Events: batch.Events}, nil
}

// Invoke runs an entrypoint as a top-level call. On success every write
// and event of the call tree is committed atomically; on failure nothing is.
func (r *Runtime) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "host.Invoke", trace.WithAttributes(
		attribute.String("vlm.contract", req.Contract.String()),
		attribute.String("vlm.entrypoint", req.Entrypoint),
		attribute.String("vlm.sender", req.Sender.String()),
	))
	defer span.End()

	origin := req.Sender.Account
	txID := r.ids.NewID()
	root := newTxn(r.store)

	value, err := r.dispatch(ctx, root, txID, req.Contract, req.Entrypoint, req.Sender, origin, req.Parameter, 0)
	if err != nil {
		r.logger.Debug("call aborted",
			"tx_id", txID,
			"contract", req.Contract.String(),
			"entrypoint", req.Entrypoint,
			"sender", req.Sender.String(),
			"error", err,
		)
		return nil, r.fail(span, err)
	}

	batch := root.batch()
	if err := r.store.Commit(ctx, batch); err != nil {
		return nil, r.fail(span, fmt.Errorf("commit: %w", err))
	}
	if !batch.Empty() {
		r.logger.Info("call committed",
			"tx_id", txID,
			"contract", req.Contract.String(),
			"entrypoint", req.Entrypoint,
			"sender", req.Sender.String(),
			"events", len(batch.Events),
		)
	}
	r.publish(batch.Events)

	return &InvokeResult{TxID: txID, Value: value, Events: batch.Events}, nil
}

// dispatch resolves an entrypoint under the code the instance has in this
// transaction and runs it in a child overlay of parent
func (r *Runtime) dispatch(
	ctx context.Context,
	parent *txn,
	txID string,
	addr model.ContractAddress,
	entrypoint string,
	sender model.Address,
	origin model.AccountID,
	param []byte,
	depth int,
) (json.RawMessage, error) {
	if depth > r.cfg.MaxCallDepth {
		return nil, ErrCallDepthExceeded
	}

	frame := parent
	if depth > 0 {
		frame = parent.child()
	}

	inst, err := frame.instance(ctx, addr)
	if err != nil {
		return nil, err
	}
	mod, ok := r.catalog.lookup(inst.ModuleRef)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, inst.ModuleRef)
	}
	contract, ok := mod.contracts[inst.ContractName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, inst.ContractName)
	}
	entry, ok := contract.entrypoints[entrypoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", model.ErrEntrypointNotFound, inst.ContractName, entrypoint)
	}

	call := r.newCall(frame, txID, addr, sender, origin, entry, param, depth)
	value, err := r.run(ctx, call)
	if err != nil {
		return nil, err
	}
	if depth > 0 {
		frame.merge()
	}
	return value, nil
}

// run runs the handler and, for mutable entrypoints, writes back the
// snapshot the handler took
func (r *Runtime) run(ctx context.Context, call *Call) (json.RawMessage, error) {
	ctx, span := r.tracer.Start(ctx, "host.call "+call.entry.Name, trace.WithAttributes(
		attribute.String("vlm.mode", call.entry.Mode.String()),
		attribute.Int("vlm.depth", call.depth),
	))
	defer span.End()

	result, err := call.entry.Handler(ctx, call)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if call.entry.Mode == ModeMutable {
		if err := call.flushSnapshot(ctx); err != nil {
			return nil, err
		}
	}

	if result == nil {
		return nil, nil
	}
	value, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode return value: %w", err)
	}
	return value, nil
}

func (r *Runtime) newCall(
	t *txn,
	txID string,
	self model.ContractAddress,
	sender model.Address,
	origin model.AccountID,
	entry *deployedEntrypoint,
	param []byte,
	depth int,
) *Call {
	return &Call{
		rt:     r,
		txn:    t,
		txID:   txID,
		self:   self,
		sender: sender,
		origin: origin,
		entry:  entry,
		param:  param,
		depth:  depth,
	}
}

func (r *Runtime) publish(events []model.Event) {
	if len(events) == 0 {
		return
	}
	r.hooksMu.RLock()
	hooks := append([]CommitHook(nil), r.hooks...)
	r.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(events)
	}
}

func (r *Runtime) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
