// Package cache keeps recently read public listings in memory.
package cache

import (
	"sync"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// VehicleCache is an expiring LRU of approved listings keyed by hex id.
//
// Readers take a Generation before loading a listing and pass it to Add. An
// Invalidate in between bumps the generation, so the stale copy is dropped
// instead of being cached after the change that invalidated it.
type VehicleCache struct {
	lru *expirable.LRU[string, models.Vehicle]

	mu    sync.Mutex
	clock uint64
	// floor is the highest generation evicted from gens. Unknown ids report
	// it so an evicted counter never goes backwards.
	floor uint64
	gens  *lru.Cache[string, uint64]
}

// NewVehicleCache returns nil when size is not positive. A nil cache is valid
// and never stores anything.
func NewVehicleCache(size int, ttl time.Duration) *VehicleCache {
	if size <= 0 {
		return nil
	}
	c := &VehicleCache{lru: expirable.NewLRU[string, models.Vehicle](size, nil, ttl)}
	// Only fails for a non-positive size.
	c.gens, _ = lru.NewWithEvict[string, uint64](size*4, func(_ string, gen uint64) {
		// Runs inside gens.Add, which is only called with mu held.
		if gen > c.floor {
			c.floor = gen
		}
	})
	return c
}

func (c *VehicleCache) Get(id string) (models.Vehicle, bool) {
	if c == nil {
		return models.Vehicle{}, false
	}
	v, ok := c.lru.Get(id)
	if !ok {
		return models.Vehicle{}, false
	}
	return v.Clone(), true
}

// Generation returns the invalidation counter of id.
func (c *VehicleCache) Generation(id string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(id)
}

func (c *VehicleCache) generationLocked(id string) uint64 {
	if gen, ok := c.gens.Peek(id); ok {
		return gen
	}
	return c.floor
}

// Add stores v unless the listing was invalidated after gen was read. It
// reports whether v was stored.
func (c *VehicleCache) Add(v models.Vehicle, gen uint64) bool {
	if c == nil {
		return false
	}
	id := v.ID.Hex()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generationLocked(id) != gen {
		return false
	}
	c.lru.Add(id, v.Clone())
	return true
}

func (c *VehicleCache) Invalidate(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.gens.Add(id, c.clock)
	c.lru.Remove(id)
}

func (c *VehicleCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
