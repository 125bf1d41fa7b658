package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Store keeps raw bytes for a limited time. Get reports a miss with ok=false.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store with a background cleanup loop.
type Memory struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	done  chan struct{}
	once  sync.Once
}

func New() *Memory {
	return NewWithCleanup(10 * time.Minute)
}

// NewWithCleanup starts the cleanup loop at the given interval.
func NewWithCleanup(interval time.Duration) *Memory {
	c := &Memory{
		items: make(map[string]cacheItem),
		done:  make(chan struct{}),
	}
	go c.cleanupLoop(interval)
	return c
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return item.value, true, nil
}

// Len returns the number of entries, expired ones included until cleanup.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup loop.
func (c *Memory) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Memory) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Key hashes parts into a short, namespaced cache key.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}
