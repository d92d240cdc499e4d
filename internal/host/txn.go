package host

import (
	"context"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// txn is a write overlay for one call frame. A child merges into its parent
// when its frame succeeds and is dropped when it fails. The root overlay
// becomes the storage batch.
type txn struct {
	parent    *txn
	store     storage.Storage
	instances map[model.ContractAddress]*model.Instance
	order     []model.ContractAddress
	events    []model.Event
}

func newTxn(store storage.Storage) *txn {
	return &txn{
		store:     store,
		instances: make(map[model.ContractAddress]*model.Instance),
	}
}

func (t *txn) child() *txn {
	c := newTxn(t.store)
	c.parent = t
	return c
}

// instance returns a private copy of the instance as seen by this frame
func (t *txn) instance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error) {
	for cur := t; cur != nil; cur = cur.parent {
		if inst, ok := cur.instances[addr]; ok {
			return inst.Clone(), nil
		}
	}
	return t.store.GetInstance(ctx, addr)
}

func (t *txn) put(inst *model.Instance) {
	if _, seen := t.instances[inst.Address]; !seen {
		t.order = append(t.order, inst.Address)
	}
	t.instances[inst.Address] = inst.Clone()
}

func (t *txn) log(ev model.Event) {
	t.events = append(t.events, ev)
}

// merge folds this overlay into its parent
func (t *txn) merge() {
	for _, addr := range t.order {
		t.parent.put(t.instances[addr])
	}
	t.parent.events = append(t.parent.events, t.events...)
}

// batch turns the root overlay into a storage batch, numbering events in
// emission order
func (t *txn) batch() *storage.Batch {
	b := &storage.Batch{}
	for _, addr := range t.order {
		b.Instances = append(b.Instances, t.instances[addr])
	}
	for i, ev := range t.events {
		ev.Seq = i
		b.Events = append(b.Events, ev)
	}
	return b
}
