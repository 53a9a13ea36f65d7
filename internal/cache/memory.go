// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	// MaxEntries bounds the cache; the least recently used entry is evicted
	// first. 0 means unbounded.
	MaxEntries int
	// SweepInterval removes expired entries in the background. 0 disables it.
	SweepInterval time.Duration
}

// MemoryCache is an in-process LRU Cacher used when Redis is not configured.
type MemoryCache struct {
	opts MemoryCacheOptions
	now  func() time.Time

	mu     sync.Mutex
	lru    *list.List // front is most recently used
	items  map[string]*list.Element
	closed bool
	stop   chan struct{}
}

type memoryItem struct {
	key     string
	value   []byte
	expires time.Time
}

// NewMemoryCache creates a memory cache.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Hour
	}
	c := &MemoryCache{
		opts:  opts,
		now:   time.Now,
		lru:   list.New(),
		items: make(map[string]*list.Element),
		stop:  make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go c.sweepLoop(opts.SweepInterval)
	}
	return c
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	el, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	item := el.Value.(*memoryItem)
	if !c.now().Before(item.expires) {
		c.removeLocked(el)
		return nil, ErrCacheMiss
	}
	c.lru.MoveToFront(el)
	return append([]byte(nil), item.value...), nil
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	item := &memoryItem{key: key, value: append([]byte(nil), value...)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	item.expires = c.now().Add(ttl)

	if el, ok := c.items[key]; ok {
		el.Value = item
		c.lru.MoveToFront(el)
		return nil
	}
	c.items[key] = c.lru.PushFront(item)
	if c.opts.MaxEntries > 0 && c.lru.Len() > c.opts.MaxEntries {
		c.removeLocked(c.lru.Back())
	}
	return nil
}

// Delete removes keys.
func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for _, key := range keys {
		if el, ok := c.items[key]; ok {
			c.removeLocked(el)
		}
	}
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(el)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Close stops the sweeper. Later calls are no-ops.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.stop)
	}
	return nil
}

func (c *MemoryCache) removeLocked(el *list.Element) {
	c.lru.Remove(el)
	delete(c.items, el.Value.(*memoryItem).key)
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*memoryItem).expires) {
			c.removeLocked(el)
		}
		el = prev
	}
}

func (c *MemoryCache) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

var _ Cacher = (*MemoryCache)(nil)
