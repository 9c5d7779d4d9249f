package message

import (
	"context"
	"sync"

	"chain_chat/internal/model"
)

type (
	// MemoryStore backs tests and single-process demo nodes.
	MemoryStore struct {
		mu       sync.RWMutex
		messages map[model.Hash]*model.Message
		indexes  map[model.Account][]model.Hash
		meta     *Meta
	}
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[model.Hash]*model.Message),
		indexes:  make(map[model.Account][]model.Hash),
	}
}

func (r *MemoryStore) Get(_ context.Context, id model.Hash) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (r *MemoryStore) Put(_ context.Context, id model.Hash, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	r.messages[id] = &cp
	return nil
}

func (r *MemoryStore) AppendIndex(_ context.Context, account model.Account, id model.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexes[account] = append(r.indexes[account], id)
	return nil
}

func (r *MemoryStore) Index(_ context.Context, account model.Account) ([]model.Hash, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.indexes[account]
	out := make([]model.Hash, len(ids))
	copy(out, ids)
	return out, nil
}

func (r *MemoryStore) LoadMeta(_ context.Context) (*Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.meta == nil {
		return nil, nil
	}
	cp := *r.meta
	return &cp, nil
}

func (r *MemoryStore) SaveMeta(_ context.Context, meta *Meta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *meta
	r.meta = &cp
	return nil
}
