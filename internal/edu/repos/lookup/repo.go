// Package lookup composes the in-memory index with a decision cache and a
// Bloom prefilter for the query path.
package lookup

import (
	"strings"
	"sync/atomic"

	"github.com/haukened/edu-verify/internal/edu/common/clock"
	"github.com/haukened/edu-verify/internal/edu/common/utils"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
)

// repository implements Repository by composing an Index, a Bloom filter
// (via factory) and a DecisionCache. Reads go cache → bloom → index. The
// index and filter are fixed at construction; the cache synchronizes itself.
type repository struct {
	ix       *index.Index
	cache    DecisionCache
	bloom    BloomFilter
	loadedAt int64
	rejects  atomic.Uint64
}

// NewRepository constructs a Repository over ix. A nil ix serves the empty
// index. A nil factory or an fpRate outside (0, 1) disables the Bloom
// prefilter; a nil cache disables caching.
func NewRepository(ix *index.Index, cache DecisionCache, factory BloomFactory, fpRate float64) Repository {
	return newRepository(ix, cache, factory, fpRate, clock.RealClock{})
}

func newRepository(ix *index.Index, cache DecisionCache, factory BloomFactory, fpRate float64, clk clock.Clock) *repository {
	if ix == nil {
		ix = index.Empty()
	}
	if cache == nil {
		cache = noCache{}
	}
	return &repository{
		ix:       ix,
		cache:    cache,
		bloom:    buildBloom(ix, factory, fpRate),
		loadedAt: clk.Now().Unix(),
	}
}

// Decide returns the longest-suffix match for name.
func (r *repository) Decide(name string) (domain.Match, bool) {
	cn := utils.CanonicalDomain(name)
	if cn == "" {
		return domain.Match{}, false
	}
	// 1) checkCache
	if d, ok := r.cache.Get(cn); ok {
		return d.Match, d.Found
	}
	// 2) checkBloom: definitely negative for every suffix means no match
	if !checkBloom(r.bloom, cn) {
		r.rejects.Add(1)
		r.cache.Put(cn, Decision{})
		return domain.Match{}, false
	}
	// 3) checkIndex
	m, ok := r.ix.Match(cn)
	// 4) updateCache
	r.cache.Put(cn, Decision{Match: m, Found: ok})
	return m, ok
}

// RepoStats returns cache counters and the index stats.
func (r *repository) RepoStats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	return RepoStats{
		Hits:         hits,
		Misses:       misses,
		Evictions:    evictions,
		Cached:       r.cache.Len(),
		BloomEnabled: r.bloom != nil,
		BloomRejects: r.rejects.Load(),
		Index:        r.ix.Stats(),
		LoadedAt:     r.loadedAt,
	}
}

// buildBloom adds the conventional form of every entry key. Intermediate
// nodes without an own entry never match, so they are left out.
func buildBloom(ix *index.Index, factory BloomFactory, fpRate float64) BloomFilter {
	if factory == nil || !(fpRate > 0 && fpRate < 1) {
		return nil
	}
	bf := factory.New(uint64(ix.Len()), fpRate)
	ix.Walk(func(k domain.DomainKey, _ domain.Entry) bool {
		bf.Add([]byte(k.String()))
		return true
	})
	return bf
}

// checkBloom returns true if the index must be consulted (maybe-positive),
// or false if no suffix of cn can match. Without a filter it returns true.
func checkBloom(bf BloomFilter, cn string) bool {
	if bf == nil {
		return true
	}
	a := cn
	for {
		if bf.MightContain([]byte(a)) {
			return true
		}
		i := strings.IndexByte(a, '.')
		if i < 0 {
			return false
		}
		a = a[i+1:]
	}
}

// noCache always misses.
type noCache struct{}

func (noCache) Get(string) (Decision, bool)     { return Decision{}, false }
func (noCache) Put(string, Decision)            {}
func (noCache) Len() int                        { return 0 }
func (noCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }
