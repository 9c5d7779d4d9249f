package wallet

import (
	"context"
	"sync"

	"chain_chat/internal/model"
)

type (
	// KeyCache memoizes derived messaging keys per account for a session.
	// Derivation needs an interactive signature, so callers derive once and
	// reuse; the cache is safe for concurrent conversation loads.
	KeyCache struct {
		mu     sync.Mutex
		oracle SigningOracle
		keys   map[model.Account]*MessagingKeys
	}
)

func NewKeyCache(oracle SigningOracle) *KeyCache {
	return &KeyCache{
		oracle: oracle,
		keys:   make(map[model.Account]*MessagingKeys),
	}
}

func (c *KeyCache) Get(ctx context.Context, account model.Account) (*MessagingKeys, error) {
	c.mu.Lock()
	if keys, ok := c.keys[account]; ok {
		c.mu.Unlock()
		return keys, nil
	}
	c.mu.Unlock()

	// Derive outside the lock: signing may block on user interaction and
	// must not stall unrelated accounts.
	keys, err := DeriveMessagingKeys(ctx, account, c.oracle)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys[account] = keys
	c.mu.Unlock()
	return keys, nil
}

// Forget drops a cached key, e.g. after the wallet rotates.
func (c *KeyCache) Forget(account model.Account) {
	c.mu.Lock()
	delete(c.keys, account)
	c.mu.Unlock()
}
