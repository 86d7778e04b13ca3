package lookup

import (
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
)

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory constructs filters sized for a capacity and FP rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// Decision is the cached outcome of one suffix lookup.
type Decision struct {
	Match domain.Match
	Found bool
}

// DecisionCache caches decisions by canonical domain with basic metrics.
type DecisionCache interface {
	Get(name string) (Decision, bool)
	Put(name string, d Decision)
	Len() int
	Stats() (hits, misses, evictions uint64)
}

// RepoStats exposes repository-level counters and the index stats.
type RepoStats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	Cached       int
	BloomEnabled bool
	BloomRejects uint64
	Index        index.Stats
	LoadedAt     int64 // seconds since epoch
}

// Repository is the read path that wires cache → bloom → index over one
// index snapshot. Decide returns the longest-suffix match for a domain and
// is safe for concurrent use.
type Repository interface {
	Decide(name string) (domain.Match, bool)
	RepoStats() RepoStats
}
