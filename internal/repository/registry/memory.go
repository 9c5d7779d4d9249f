package registry

import (
	"context"
	"sync"

	"chain_chat/internal/model"
)

type (
	// MemoryStore backs tests and single-process demo nodes.
	MemoryStore struct {
		mu   sync.RWMutex
		keys map[model.Account]model.PublicKey
	}
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys: make(map[model.Account]model.PublicKey),
	}
}

func (r *MemoryStore) Get(_ context.Context, account model.Account) (model.PublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys[account], nil
}

func (r *MemoryStore) Put(_ context.Context, account model.Account, key model.PublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[account] = key
	return nil
}
