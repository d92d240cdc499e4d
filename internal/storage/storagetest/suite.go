// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// Suite runs the shared storage behaviour against a backend. Embed it and
// set NewStorage before suite.Run.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

func testEvent(addr model.ContractAddress, txID string, seq int, typ model.EventType) model.Event {
	payload, _ := json.Marshal(model.BattleResultPayload{Player: "alice", IsWin: seq%2 == 0})
	return model.Event{
		TxID:      txID,
		Contract:  addr,
		Seq:       seq,
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, seq, time.UTC),
	}
}

// Instance tests

func (s *Suite) TestGetInstanceNotFound() {
	_, err := s.Store.GetInstance(s.Ctx, model.ContractAddress{Index: 99})
	s.ErrorIs(err, model.ErrInstanceNotFound)
}

func (s *Suite) TestCommitAndGetInstance() {
	addr := model.ContractAddress{Index: 3, Subindex: 1}
	inst := &model.Instance{
		Address:      addr,
		ContractName: "versus_league",
		ModuleRef:    "abc123",
		State:        []byte(`{"layout":1}`),
	}

	err := s.Store.Commit(s.Ctx, &storage.Batch{Instances: []*model.Instance{inst}})
	s.Require().NoError(err)

	got, err := s.Store.GetInstance(s.Ctx, addr)
	s.Require().NoError(err)
	s.Equal(addr, got.Address)
	s.Equal("versus_league", got.ContractName)
	s.Equal(model.ModuleRef("abc123"), got.ModuleRef)
	s.JSONEq(`{"layout":1}`, string(got.State))
}

func (s *Suite) TestCommitOverwritesInstance() {
	addr := model.ContractAddress{Index: 1}
	first := &model.Instance{Address: addr, ContractName: "c", ModuleRef: "m1", State: []byte(`{"v":1}`)}
	second := &model.Instance{Address: addr, ContractName: "c", ModuleRef: "m2", State: []byte(`{"v":2}`)}

	s.Require().NoError(s.Store.Commit(s.Ctx, &storage.Batch{Instances: []*model.Instance{first}}))
	s.Require().NoError(s.Store.Commit(s.Ctx, &storage.Batch{Instances: []*model.Instance{second}}))

	got, err := s.Store.GetInstance(s.Ctx, addr)
	s.Require().NoError(err)
	s.Equal(model.ModuleRef("m2"), got.ModuleRef)
	s.JSONEq(`{"v":2}`, string(got.State))
}

func (s *Suite) TestReturnedInstanceIsACopy() {
	addr := model.ContractAddress{Index: 1}
	inst := &model.Instance{Address: addr, ContractName: "c", ModuleRef: "m", State: []byte(`{"v":1}`)}
	s.Require().NoError(s.Store.Commit(s.Ctx, &storage.Batch{Instances: []*model.Instance{inst}}))

	got, err := s.Store.GetInstance(s.Ctx, addr)
	s.Require().NoError(err)
	got.State[0] = 'X'

	again, err := s.Store.GetInstance(s.Ctx, addr)
	s.Require().NoError(err)
	s.JSONEq(`{"v":1}`, string(again.State))
}

func (s *Suite) TestNextContractIndexIsMonotonic() {
	first, err := s.Store.NextContractIndex(s.Ctx)
	s.Require().NoError(err)
	second, err := s.Store.NextContractIndex(s.Ctx)
	s.Require().NoError(err)
	third, err := s.Store.NextContractIndex(s.Ctx)
	s.Require().NoError(err)

	s.Less(first, second)
	s.Less(second, third)
}

func (s *Suite) TestCommitEmptyBatch() {
	s.NoError(s.Store.Commit(s.Ctx, &storage.Batch{}))
	s.NoError(s.Store.Commit(s.Ctx, nil))
}

// Event tests

func (s *Suite) TestListEventsOrderedAndScoped() {
	a := model.ContractAddress{Index: 1}
	b := model.ContractAddress{Index: 2}

	batch := &storage.Batch{Events: []model.Event{
		testEvent(a, "tx-1", 0, model.EventAdminChanged),
		testEvent(b, "tx-1", 1, model.EventBattleResult),
		testEvent(a, "tx-1", 2, model.EventBattleResult),
	}}
	s.Require().NoError(s.Store.Commit(s.Ctx, batch))
	s.Require().NoError(s.Store.Commit(s.Ctx, &storage.Batch{Events: []model.Event{
		testEvent(a, "tx-2", 0, model.EventBattleResult),
	}}))

	events, err := s.Store.ListEvents(s.Ctx, a, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal("tx-1", events[0].TxID)
	s.Equal(model.EventAdminChanged, events[0].Type)
	s.Equal(2, events[1].Seq)
	s.Equal("tx-2", events[2].TxID)
	s.True(events[0].Timestamp.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	var payload model.BattleResultPayload
	s.Require().NoError(json.Unmarshal(events[1].Payload, &payload))
	s.Equal(model.AccountID("alice"), payload.Player)
	s.True(payload.IsWin)

	events, err = s.Store.ListEvents(s.Ctx, b, 0)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *Suite) TestListEventsLimitKeepsNewest() {
	addr := model.ContractAddress{Index: 1}
	var evs []model.Event
	for i := 0; i < 5; i++ {
		evs = append(evs, testEvent(addr, "tx-1", i, model.EventBattleResult))
	}
	s.Require().NoError(s.Store.Commit(s.Ctx, &storage.Batch{Events: evs}))

	events, err := s.Store.ListEvents(s.Ctx, addr, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(3, events[0].Seq)
	s.Equal(4, events[1].Seq)
}

func (s *Suite) TestListEventsEmpty() {
	events, err := s.Store.ListEvents(s.Ctx, model.ContractAddress{Index: 7}, 10)
	s.Require().NoError(err)
	s.Empty(events)
}

// Credential tests

func (s *Suite) TestSaveAndGetCredential() {
	cred := &model.Credential{
		Account:      "alice",
		PasswordHash: "hash123",
		CreatedAt:    time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	s.Require().NoError(s.Store.SaveCredential(s.Ctx, cred))

	got, err := s.Store.GetCredential(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("alice"), got.Account)
	s.Equal("hash123", got.PasswordHash)
	s.True(cred.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestSaveCredentialDuplicate() {
	cred := &model.Credential{Account: "alice", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.Store.SaveCredential(s.Ctx, cred))

	err := s.Store.SaveCredential(s.Ctx, &model.Credential{Account: "alice", PasswordHash: "other", CreatedAt: time.Now().UTC()})
	s.ErrorIs(err, model.ErrAccountExists)

	got, err := s.Store.GetCredential(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("h", got.PasswordHash)
}

func (s *Suite) TestGetCredentialNotFound() {
	_, err := s.Store.GetCredential(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}
