// Package lru provides the lookup decision cache backed by golang-lru.
package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/edu-verify/internal/edu/repos/lookup"
)

// decisionCache is an LRU-backed implementation of lookup.DecisionCache.
// It tracks hits, misses and evictions.
type decisionCache struct {
	lru       *lru.Cache[string, lookup.Decision]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache is a no-op DecisionCache used when size <= 0.
type disabledCache struct{}

// newLRU is swapped in tests to exercise constructor failures.
var newLRU = lru.NewWithEvict[string, lookup.Decision]

// New creates a DecisionCache holding at most size decisions. If size <= 0
// a disabled cache is returned that always misses.
func New(size int) (lookup.DecisionCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}
	dc := &decisionCache{}
	cache, err := newLRU(size, func(string, lookup.Decision) {
		dc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = cache
	return dc, nil
}

// Get looks up a decision by canonical domain.
func (c *decisionCache) Get(name string) (lookup.Decision, bool) {
	if v, ok := c.lru.Get(name); ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	return lookup.Decision{}, false
}

// Put stores a decision by canonical domain.
func (c *decisionCache) Put(name string, d lookup.Decision) { c.lru.Add(name, d) }

// Len returns the number of cached decisions.
func (c *decisionCache) Len() int { return c.lru.Len() }

// Stats returns cumulative hit/miss/eviction counters.
func (c *decisionCache) Stats() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

func (*disabledCache) Get(string) (lookup.Decision, bool) { return lookup.Decision{}, false }
func (*disabledCache) Put(string, lookup.Decision)        {}
func (*disabledCache) Len() int                           { return 0 }
func (*disabledCache) Stats() (uint64, uint64, uint64)    { return 0, 0, 0 }

var (
	_ lookup.DecisionCache = (*decisionCache)(nil)
	_ lookup.DecisionCache = (*disabledCache)(nil)
)
