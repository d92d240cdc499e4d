package memory

import (
	"context"
	"sync"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	instances   map[model.ContractAddress]*model.Instance
	events      map[model.ContractAddress][]model.Event
	credentials map[model.AccountID]*model.Credential
	nextIndex   uint64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		instances:   make(map[model.ContractAddress]*model.Instance),
		events:      make(map[model.ContractAddress][]model.Event),
		credentials: make(map[model.AccountID]*model.Credential),
	}
}

var _ storage.Storage = (*Storage)(nil)

// Instance operations

func (s *Storage) GetInstance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[addr]
	if !ok {
		return nil, model.ErrInstanceNotFound
	}
	return inst.Clone(), nil
}

func (s *Storage) NextContractIndex(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.nextIndex
	s.nextIndex++
	return idx, nil
}

func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if batch.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range batch.Instances {
		s.instances[inst.Address] = inst.Clone()
	}
	for _, ev := range batch.Events {
		s.events[ev.Contract] = append(s.events[ev.Contract], ev)
	}
	return nil
}

// Event operations

func (s *Storage) ListEvents(ctx context.Context, addr model.ContractAddress, limit int) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.events[addr]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]model.Event, len(all))
	copy(out, all)
	return out, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[cred.Account]; exists {
		return model.ErrAccountExists
	}
	cp := *cred
	s.credentials[cred.Account] = &cp
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, account model.AccountID) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[account]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *cred
	return &cp, nil
}

func (s *Storage) Close() error {
	return nil
}
