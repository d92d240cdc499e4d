package host

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/versusleague/internal/dependencies/mocks"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage/memory"
	"github.com/mcoot/versusleague/internal/testutil"
)

type counterState struct {
	Owner model.Address `json:"owner"`
	Count int           `json:"count"`
}

type amountParam struct {
	Amount int `json:"amount"`
}

const amountSchema = `{
  "type": "object",
  "properties": {"amount": {"type": "integer", "minimum": 1}},
  "required": ["amount"],
  "additionalProperties": false
}`

var errBoom = errors.New("boom")

func counterModule(version string) Module {
	return Module{
		Name:    "counter",
		Version: version,
		Contracts: []Contract{{
			Name: "counter",
			Init: Entrypoint{
				Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Owner = call.Sender()
					return nil, call.Log("Created", map[string]string{"version": version})
				},
			},
			Entrypoints: []Entrypoint{
				{Name: "incr", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count++
					return st.Count, nil
				}},
				{Name: "add", Mode: ModeMutable, ParamSchema: amountSchema, Handler: func(ctx context.Context, call *Call) (any, error) {
					var p amountParam
					if err := call.Parameter(&p); err != nil {
						return nil, err
					}
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count += p.Amount
					return st.Count, nil
				}},
				{Name: "get", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					return st.Count, nil
				}},
				{Name: "viewMutates", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count = 1000
					return nil, nil
				}},
				{Name: "viewWrites", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					return nil, call.WriteRoot(ctx, []byte(`{}`))
				}},
				{Name: "incrThenFail", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count++
					if err := call.Log("Incremented", st.Count); err != nil {
						return nil, err
					}
					return nil, errBoom
				}},
				{Name: "incrAroundSelfCall", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count++
					if _, err := call.Invoke(ctx, call.Self(), "incr", nil); err != nil {
						return nil, err
					}
					st, err = Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count++
					return st.Count, nil
				}},
				{Name: "swallowFailedSubCall", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					st, err := Snapshot[counterState](ctx, call)
					if err != nil {
						return nil, err
					}
					st.Count += 10
					_, subErr := call.Invoke(ctx, call.Self(), "incrThenFail", nil)
					var callErr *CallError
					if !errors.As(subErr, &callErr) {
						return nil, errors.New("expected a call error")
					}
					return nil, nil
				}},
				{Name: "propagateFailedSubCall", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					_, err := call.Invoke(ctx, call.Self(), "incrThenFail", nil)
					return nil, err
				}},
				{Name: "recurse", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					_, err := call.Invoke(ctx, call.Self(), "recurse", nil)
					return nil, err
				}},
				{Name: "whoCalled", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					return call.Sender().String(), nil
				}},
				{Name: "askWhoCalled", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					raw, err := call.Invoke(ctx, call.Self(), "whoCalled", nil)
					if err != nil {
						return nil, err
					}
					return json.RawMessage(raw), nil
				}},
				{Name: "logMany", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					var p amountParam
					if err := call.Parameter(&p); err != nil {
						return nil, err
					}
					for i := 0; i < p.Amount; i++ {
						if err := call.Log("Tick", i); err != nil {
							return nil, err
						}
					}
					return nil, nil
				}},
				{Name: "logBig", Mode: ModeMutable, Handler: func(ctx context.Context, call *Call) (any, error) {
					return nil, call.Log("Big", strings.Repeat("x", 600))
				}},
				{Name: "lowLevelSnapshot", Mode: ModeLowLevel, Handler: func(ctx context.Context, call *Call) (any, error) {
					_, err := Snapshot[counterState](ctx, call)
					return nil, err
				}},
				{Name: "lowLevelSet", Mode: ModeLowLevel, Handler: func(ctx context.Context, call *Call) (any, error) {
					var p amountParam
					if err := call.Parameter(&p); err != nil {
						return nil, err
					}
					raw, err := call.ReadRoot(ctx)
					if err != nil {
						return nil, err
					}
					var st counterState
					if err := json.Unmarshal(raw, &st); err != nil {
						return nil, err
					}
					st.Count = p.Amount
					data, _ := json.Marshal(st)
					return nil, call.WriteRoot(ctx, data)
				}},
				{Name: "upgrade", Mode: ModeLowLevel, Handler: func(ctx context.Context, call *Call) (any, error) {
					var p struct {
						Module model.ModuleRef `json:"module"`
						Then   string          `json:"then,omitempty"`
					}
					if err := call.Parameter(&p); err != nil {
						return nil, err
					}
					if err := call.Upgrade(ctx, p.Module); err != nil {
						return nil, err
					}
					if p.Then != "" {
						raw, err := call.Invoke(ctx, call.Self(), p.Then, nil)
						if err != nil {
							return nil, err
						}
						return json.RawMessage(raw), nil
					}
					return nil, nil
				}},
				{Name: "version", Mode: ModeView, Handler: func(ctx context.Context, call *Call) (any, error) {
					return version, nil
				}},
			},
		}},
	}
}

type RuntimeSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Storage
	clock    *mocks.MockClock
	ids      *mocks.MockIDGenerator
	catalog  *Catalog
	runtime  *Runtime
	ref      model.ModuleRef
	addr     model.ContractAddress
	owner    model.Address
	stranger model.Address
	commits  [][]model.Event
}

func TestRuntimeSuite(t *testing.T) {
	suite.Run(t, new(RuntimeSuite))
}

func (s *RuntimeSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDGenerator()
	s.catalog = NewCatalog(s.clock)
	s.commits = nil

	rt, err := NewRuntime(s.store, s.catalog, DefaultConfig(), s.clock, s.ids, testutil.NopLogger())
	s.Require().NoError(err)
	s.runtime = rt
	s.runtime.OnCommit(func(events []model.Event) {
		s.commits = append(s.commits, events)
	})

	s.ref, err = s.catalog.Deploy(counterModule("1.0.0"))
	s.Require().NoError(err)

	s.owner = model.AccountAddress("owner")
	s.stranger = model.AccountAddress("stranger")
	res, err := s.runtime.Init(s.ctx, InitRequest{Sender: "owner", Module: s.ref, Contract: "counter"})
	s.Require().NoError(err)
	s.addr = res.Address
	s.commits = nil
}

func (s *RuntimeSuite) invoke(entrypoint string, param any) (*InvokeResult, error) {
	var raw json.RawMessage
	if param != nil {
		data, err := json.Marshal(param)
		s.Require().NoError(err)
		raw = data
	}
	return s.runtime.Invoke(s.ctx, InvokeRequest{
		Sender:     s.owner,
		Contract:   s.addr,
		Entrypoint: entrypoint,
		Parameter:  raw,
	})
}

func (s *RuntimeSuite) count() int {
	inst, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)
	var st counterState
	s.Require().NoError(json.Unmarshal(inst.State, &st))
	return st.Count
}

// Init tests

func (s *RuntimeSuite) TestInitPersistsStateAndEvents() {
	inst, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)
	s.Equal("counter", inst.ContractName)
	s.Equal(s.ref, inst.ModuleRef)

	var st counterState
	s.Require().NoError(json.Unmarshal(inst.State, &st))
	s.Equal(s.owner, st.Owner)

	events, err := s.store.ListEvents(s.ctx, s.addr, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(model.EventType("Created"), events[0].Type)
	s.Equal("tx-1", events[0].TxID)
	s.Equal(s.clock.Now(), events[0].Timestamp)
}

func (s *RuntimeSuite) TestInitAllocatesDistinctAddresses() {
	res, err := s.runtime.Init(s.ctx, InitRequest{Sender: "owner", Module: s.ref, Contract: "counter"})
	s.Require().NoError(err)
	s.NotEqual(s.addr, res.Address)
}

func (s *RuntimeSuite) TestInitUnknownModuleOrContract() {
	_, err := s.runtime.Init(s.ctx, InitRequest{Sender: "owner", Module: "nope", Contract: "counter"})
	s.ErrorIs(err, ErrModuleNotFound)

	_, err = s.runtime.Init(s.ctx, InitRequest{Sender: "owner", Module: s.ref, Contract: "nope"})
	s.ErrorIs(err, ErrContractNotFound)
}

// Invoke tests

func (s *RuntimeSuite) TestMutableSnapshotCommittedAtReturn() {
	res, err := s.invoke("incr", nil)
	s.Require().NoError(err)
	s.JSONEq(`1`, string(res.Value))
	s.Equal(1, s.count())
}

func (s *RuntimeSuite) TestFailureDiscardsWritesAndEvents() {
	_, err := s.invoke("incrThenFail", nil)
	s.ErrorIs(err, errBoom)
	s.Equal(0, s.count())
	s.Empty(s.commits)

	events, err := s.store.ListEvents(s.ctx, s.addr, 0)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *RuntimeSuite) TestViewSnapshotNeverCommitted() {
	_, err := s.invoke("viewMutates", nil)
	s.Require().NoError(err)
	s.Equal(0, s.count())
}

func (s *RuntimeSuite) TestViewCannotWriteRoot() {
	_, err := s.invoke("viewWrites", nil)
	s.ErrorIs(err, model.ErrReadOnly)
}

func (s *RuntimeSuite) TestParameterSchemaRejectsInvalid() {
	_, err := s.invoke("add", map[string]any{"amount": 0})
	s.ErrorIs(err, model.ErrParse)

	_, err = s.invoke("add", map[string]any{"amount": 2, "extra": true})
	s.ErrorIs(err, model.ErrParse)

	_, err = s.invoke("add", nil)
	s.ErrorIs(err, model.ErrParse)

	res, err := s.invoke("add", map[string]any{"amount": 2})
	s.Require().NoError(err)
	s.JSONEq(`2`, string(res.Value))
}

func (s *RuntimeSuite) TestUnknownEntrypointAndInstance() {
	_, err := s.invoke("nope", nil)
	s.ErrorIs(err, model.ErrEntrypointNotFound)

	_, err = s.runtime.Invoke(s.ctx, InvokeRequest{Sender: s.owner, Contract: model.ContractAddress{Index: 42}, Entrypoint: "get"})
	s.ErrorIs(err, model.ErrInstanceNotFound)
}

func (s *RuntimeSuite) TestCommitHookReceivesEvents() {
	_, err := s.invoke("logMany", amountParam{Amount: 3})
	s.Require().NoError(err)
	s.Require().Len(s.commits, 1)
	s.Len(s.commits[0], 3)
	for i, ev := range s.commits[0] {
		s.Equal(i, ev.Seq)
		s.Equal(s.addr, ev.Contract)
	}
}

// Sub-call tests

func (s *RuntimeSuite) TestSelfCallSeesFlushedStateAndCallerRereads() {
	res, err := s.invoke("incrAroundSelfCall", nil)
	s.Require().NoError(err)
	s.JSONEq(`3`, string(res.Value))
	s.Equal(3, s.count())
}

func (s *RuntimeSuite) TestFailedSubCallRollsBackOnlyCallee() {
	_, err := s.invoke("swallowFailedSubCall", nil)
	s.Require().NoError(err)
	s.Equal(10, s.count())
	s.Empty(s.commits)
}

func (s *RuntimeSuite) TestFailedSubCallSurfacesAsInvokeError() {
	_, err := s.invoke("propagateFailedSubCall", nil)
	s.ErrorIs(err, model.ErrInvokeContract)
	s.ErrorIs(err, errBoom)

	var callErr *CallError
	s.Require().ErrorAs(err, &callErr)
	s.Equal("incrThenFail", callErr.Entrypoint)
	s.Equal(s.addr, callErr.Contract)
}

func (s *RuntimeSuite) TestSubCallSenderIsCallingContract() {
	res, err := s.invoke("askWhoCalled", nil)
	s.Require().NoError(err)

	var who string
	s.Require().NoError(json.Unmarshal(res.Value, &who))
	s.Equal(model.ContractAddr(s.addr).String(), who)
}

func (s *RuntimeSuite) TestCallDepthBounded() {
	_, err := s.invoke("recurse", nil)
	s.ErrorIs(err, ErrCallDepthExceeded)
	s.ErrorIs(err, model.ErrInvokeContract)
}

// Event sink tests

func (s *RuntimeSuite) TestEventSinkFull() {
	_, err := s.invoke("logMany", amountParam{Amount: 65})
	s.ErrorIs(err, model.ErrEventSinkFull)

	_, err = s.invoke("logMany", amountParam{Amount: 64})
	s.NoError(err)
}

func (s *RuntimeSuite) TestEventSinkMalformed() {
	_, err := s.invoke("logBig", nil)
	s.ErrorIs(err, model.ErrEventSinkMalformed)
	s.Empty(s.commits)
}

// Low-level tests

func (s *RuntimeSuite) TestLowLevelRefusesSnapshot() {
	_, err := s.invoke("lowLevelSnapshot", nil)
	s.ErrorIs(err, ErrSnapshotNotAllowed)
}

func (s *RuntimeSuite) TestLowLevelWritesRoot() {
	_, err := s.invoke("lowLevelSet", amountParam{Amount: 7})
	s.Require().NoError(err)
	s.Equal(7, s.count())
}

// Upgrade tests

func (s *RuntimeSuite) TestUpgradeSwitchesCodeForLaterCalls() {
	v2, err := s.catalog.Deploy(counterModule("1.1.0"))
	s.Require().NoError(err)

	res, err := s.invoke("upgrade", map[string]any{"module": v2, "then": "version"})
	s.Require().NoError(err)
	s.JSONEq(`"1.1.0"`, string(res.Value))

	inst, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)
	s.Equal(v2, inst.ModuleRef)

	s.Require().Len(s.commits, 1)
	s.Equal(model.EventUpgraded, s.commits[0][0].Type)
}

func (s *RuntimeSuite) TestUpgradeFailures() {
	_, err := s.invoke("upgrade", map[string]any{"module": "missing"})
	s.ErrorIs(err, model.ErrUpgradeMissingModule)

	other := counterModule("1.2.0")
	other.Contracts[0].Name = "other"
	otherRef, err := s.catalog.Deploy(other)
	s.Require().NoError(err)
	_, err = s.invoke("upgrade", map[string]any{"module": otherRef})
	s.ErrorIs(err, model.ErrUpgradeMissingContract)

	v3, err := s.catalog.Deploy(counterModule("2.0.0"))
	s.Require().NoError(err)
	_, err = s.invoke("upgrade", map[string]any{"module": v3})
	s.ErrorIs(err, model.ErrUpgradeUnsupportedVersion)

	inst, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)
	s.Equal(s.ref, inst.ModuleRef)
}

func (s *RuntimeSuite) TestUpgradeRolledBackWhenFollowUpFails() {
	v2, err := s.catalog.Deploy(counterModule("1.1.0"))
	s.Require().NoError(err)
	before, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)

	_, err = s.invoke("upgrade", map[string]any{"module": v2, "then": "incrThenFail"})
	s.ErrorIs(err, model.ErrInvokeContract)

	after, err := s.runtime.Instance(s.ctx, s.addr)
	s.Require().NoError(err)
	s.Equal(before.ModuleRef, after.ModuleRef)
	s.Equal(before.State, after.State)
	s.Empty(s.commits)
}

func TestRuntimeRejectsBadVersionRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportedVersions = "not a range"
	_, err := NewRuntime(memory.New(), NewCatalog(mocks.NewMockClock(time.Now())), cfg, mocks.NewMockClock(time.Now()), mocks.NewMockIDGenerator(), testutil.NopLogger())
	if err == nil {
		t.Fatal("expected error for invalid version range")
	}
}
