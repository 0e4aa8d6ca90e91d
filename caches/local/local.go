package local

import (
	"context"
	"sync"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/caches"
)

// Cache is the in-memory store used by default: a mutex-guarded map living
// for the life of the process, cleared only by writes or restarts.
type Cache struct {
	entries map[string]*headlessadmin.Entry

	lock sync.RWMutex
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*headlessadmin.Entry),
	}
}

func (c *Cache) Get(_ context.Context, key string) (*headlessadmin.Entry, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	val, found := c.entries[key]
	if !found {
		return nil, caches.ErrNoEntry
	}

	return val, nil
}

func (c *Cache) Set(_ context.Context, key string, e *headlessadmin.Entry) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries[key] = e

	return nil
}

func (c *Cache) Invalidate(_ context.Context, segment string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	for key := range c.entries {
		if headlessadmin.Segment(key) == segment {
			delete(c.entries, key)
		}
	}

	return nil
}

// Len reports how many entries are held, stale included.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}
