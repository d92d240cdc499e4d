package storage

import (
	"context"

	"github.com/mcoot/versusleague/internal/model"
)

// Batch is the set of writes produced by one committed top-level call.
// Implementations must apply it atomically.
type Batch struct {
	Instances []*model.Instance
	Events    []model.Event
}

// Empty reports whether the batch has nothing to write
func (b *Batch) Empty() bool {
	return b == nil || (len(b.Instances) == 0 && len(b.Events) == 0)
}

// Storage defines the interface for durable registry state
type Storage interface {
	// Instance operations
	GetInstance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error)
	NextContractIndex(ctx context.Context) (uint64, error)
	Commit(ctx context.Context, batch *Batch) error

	// Event log, oldest first. limit <= 0 returns every event.
	ListEvents(ctx context.Context, addr model.ContractAddress, limit int) ([]model.Event, error)

	// Account credential operations
	SaveCredential(ctx context.Context, cred *model.Credential) error
	GetCredential(ctx context.Context, account model.AccountID) (*model.Credential, error)

	Close() error
}
