// Package settings implements the in-process settings cache spec.md §5
// requires: "the settings cache" is shared state "guarded by a mutex that
// is never held across I/O". Grounded on the teacher's own guarded-cache
// decorator shape (a lock around a pure struct swap, the store call made
// outside the critical section).
package settings

import (
	"context"
	"sync"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
)

// Cache wraps a store.SettingsRepository with an in-memory copy of the
// Settings singleton, refreshed on Replace and lazily loaded on first Get.
// It satisfies store.SettingsRepository itself, so callers that only need
// reads (authflow.Register, oauth_applications.create, settingsHandlers)
// can depend on it exactly like the uncached repository.
type Cache struct {
	inner store.SettingsRepository

	mu     sync.RWMutex
	cached *model.Settings
}

func NewCache(inner store.SettingsRepository) *Cache {
	return &Cache{inner: inner}
}

var _ store.SettingsRepository = (*Cache)(nil)

// Get returns the cached singleton, loading it from the store on first use.
// The Mongo round trip always happens outside the lock.
func (c *Cache) Get(ctx context.Context) (*model.Settings, error) {
	if s := c.read(); s != nil {
		return s, nil
	}

	s, err := c.inner.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.store(s)
	return c.read(), nil
}

func (c *Cache) Insert(ctx context.Context, s *model.Settings) error {
	if err := c.inner.Insert(ctx, s); err != nil {
		return err
	}
	c.store(s)
	return nil
}

func (c *Cache) Replace(ctx context.Context, s *model.Settings) error {
	if err := c.inner.Replace(ctx, s); err != nil {
		return err
	}
	c.store(s)
	return nil
}

func (c *Cache) read() *model.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return nil
	}
	cp := *c.cached
	return &cp
}

func (c *Cache) store(s *model.Settings) {
	cp := *s
	c.mu.Lock()
	c.cached = &cp
	c.mu.Unlock()
}
