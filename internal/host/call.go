package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/versusleague/internal/model"
)

// Call is the handle an entrypoint uses to reach its state, its parameter
// and the rest of the runtime
type Call struct {
	rt     *Runtime
	txn    *txn
	txID   string
	self   model.ContractAddress
	sender model.Address
	origin model.AccountID
	entry  *deployedEntrypoint
	param  []byte
	depth  int

	snapshot any
	logged   int
}

// Self is the address of the running instance
func (c *Call) Self() model.ContractAddress {
	return c.self
}

// Sender is the immediate caller: an account for top-level calls, a
// contract for sub-calls
func (c *Call) Sender() model.Address {
	return c.sender
}

// Origin is the account that started the top-level call
func (c *Call) Origin() model.AccountID {
	return c.origin
}

// TxID identifies the top-level call this frame belongs to
func (c *Call) TxID() string {
	return c.txID
}

// RawParameter returns the parameter bytes as received
func (c *Call) RawParameter() []byte {
	return c.param
}

// Parameter checks the parameter against the entrypoint's schema and
// decodes it strictly into v. Any failure is ErrParse. Handlers call it after
// their guards so authorization failures win over malformed input.
func (c *Call) Parameter(v any) error {
	if err := c.entry.validate(c.param); err != nil {
		return err
	}
	if len(bytes.TrimSpace(c.param)) == 0 {
		return fmt.Errorf("%w: parameter is required", model.ErrParse)
	}
	dec := json.NewDecoder(bytes.NewReader(c.param))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrParse, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after parameter", model.ErrParse)
	}
	return nil
}

// ReadRoot reads the instance's state from the transaction, bypassing any
// snapshot this frame holds
func (c *Call) ReadRoot(ctx context.Context) ([]byte, error) {
	inst, err := c.txn.instance(ctx, c.self)
	if err != nil {
		return nil, err
	}
	return inst.State, nil
}

// WriteRoot replaces the instance's state in the transaction
func (c *Call) WriteRoot(ctx context.Context, state []byte) error {
	if c.entry.Mode == ModeView {
		return model.ErrReadOnly
	}
	inst, err := c.txn.instance(ctx, c.self)
	if err != nil {
		return err
	}
	inst.State = append([]byte(nil), state...)
	c.txn.put(inst)
	return nil
}

// Snapshot returns the decoded state of the running instance. The value is
// cached on the call; for mutable entrypoints it is written back at normal
// return. Pointers taken before Invoke are stale afterwards: call Snapshot
// again.
func Snapshot[S any](ctx context.Context, c *Call) (*S, error) {
	if c.entry.Mode == ModeLowLevel {
		return nil, ErrSnapshotNotAllowed
	}
	if c.snapshot != nil {
		s, ok := c.snapshot.(*S)
		if !ok {
			return nil, fmt.Errorf("snapshot already taken as %T", c.snapshot)
		}
		return s, nil
	}

	raw, err := c.ReadRoot(ctx)
	if err != nil {
		return nil, err
	}
	s := new(S)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("decode state of %s: %w", c.self, err)
		}
	}
	c.snapshot = s
	return s, nil
}

func (c *Call) flushSnapshot(ctx context.Context) error {
	if c.snapshot == nil || c.entry.Mode != ModeMutable {
		return nil
	}
	data, err := json.Marshal(c.snapshot)
	if err != nil {
		return fmt.Errorf("encode state of %s: %w", c.self, err)
	}
	return c.WriteRoot(ctx, data)
}

// Log appends an event to the call's log
func (c *Call) Log(eventType model.EventType, payload any) error {
	if c.rt.cfg.MaxEventsPerCall > 0 && c.logged >= c.rt.cfg.MaxEventsPerCall {
		return model.ErrEventSinkFull
	}
	if eventType == "" {
		return fmt.Errorf("%w: event type is required", model.ErrEventSinkMalformed)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrEventSinkMalformed, err)
	}
	if c.rt.cfg.MaxEventSize > 0 && len(data) > c.rt.cfg.MaxEventSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", model.ErrEventSinkMalformed, len(data), c.rt.cfg.MaxEventSize)
	}
	c.logged++
	c.txn.log(c.event(eventType, data))
	return nil
}

func (c *Call) event(eventType model.EventType, payload []byte) model.Event {
	return model.Event{
		TxID:      c.txID,
		Contract:  c.self,
		Type:      eventType,
		Payload:   payload,
		Timestamp: c.rt.clock.Now(),
	}
}

// Invoke synchronously calls an entrypoint of another instance, or of this
// one. A mutable frame's snapshot is written to the transaction first and
// dropped afterwards so later reads see the callee's writes. A failure is
// returned as *CallError and rolls back only the callee's writes.
func (c *Call) Invoke(ctx context.Context, to model.ContractAddress, entrypoint string, param any) (json.RawMessage, error) {
	if err := c.flushSnapshot(ctx); err != nil {
		return nil, err
	}

	var raw []byte
	switch p := param.(type) {
	case nil:
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode parameter for %s: %w", entrypoint, err)
		}
		raw = data
	}

	value, err := c.rt.dispatch(ctx, c.txn, c.txID, to, entrypoint, model.ContractAddr(c.self), c.origin, raw, c.depth+1)
	c.snapshot = nil
	if err != nil {
		return nil, &CallError{Contract: to, Entrypoint: entrypoint, Err: err}
	}
	return value, nil
}

// Upgrade replaces the code of the running instance. The current frame
// keeps running the old code; later calls in this transaction, including
// self-invocations, run the new code.
func (c *Call) Upgrade(ctx context.Context, ref model.ModuleRef) error {
	if c.entry.Mode == ModeView {
		return model.ErrReadOnly
	}
	mod, ok := c.rt.catalog.lookup(ref)
	if !ok {
		return model.ErrUpgradeMissingModule
	}
	inst, err := c.txn.instance(ctx, c.self)
	if err != nil {
		return err
	}
	if _, ok := mod.contracts[inst.ContractName]; !ok {
		return model.ErrUpgradeMissingContract
	}
	if !c.rt.constraints.Check(mod.version) {
		return model.ErrUpgradeUnsupportedVersion
	}

	from := inst.ModuleRef
	inst.ModuleRef = ref
	c.txn.put(inst)

	payload, err := json.Marshal(model.UpgradedPayload{From: from, To: ref})
	if err != nil {
		return err
	}
	c.txn.log(c.event(model.EventUpgraded, payload))
	return nil
}
