// Package classifier maps email addresses onto the educational-domain index.
// The index is loaded on first use, exactly once per Classifier; a failed
// load is logged and replaced by an empty index so every lookup degrades to
// "invalid" instead of failing.
package classifier

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/common/utils"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/artifact"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
	"github.com/haukened/edu-verify/internal/edu/repos/lookup"
	"github.com/haukened/edu-verify/internal/edu/repos/lookup/bloom"
	"github.com/haukened/edu-verify/internal/edu/repos/lookup/lru"
)

// Loader produces the index the classifier serves.
type Loader func(ctx context.Context) (*index.Index, error)

// FileLoader returns a Loader reading the artifact at path.
func FileLoader(path string, logger log.Logger) Loader {
	return func(ctx context.Context) (*index.Index, error) {
		return artifact.Load(ctx, path, logger)
	}
}

// Options configures a Classifier.
type Options struct {
	Loader      Loader
	Logger      log.Logger
	CacheSize   int           // decision cache entries; <= 0 disables
	BloomFPRate float64       // Bloom prefilter target rate; 0 disables
	LoadTimeout time.Duration // applied to the lazy first load; <= 0 means none
}

// Classifier answers verification and name queries for email addresses.
// It is safe for concurrent use.
type Classifier struct {
	opts    Options
	logger  log.Logger
	once    sync.Once
	repo    lookup.Repository
	loadErr error
}

// New constructs a Classifier. Nothing is loaded until the first query or
// an explicit Warm.
func New(opts Options) *Classifier {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Classifier{opts: opts, logger: logger.With(map[string]any{"component": "classifier"})}
}

// Warm performs the one-time load now, bounded by ctx, and returns the load
// error if it failed. After the first call (or first query) it is a no-op
// returning the original outcome.
func (c *Classifier) Warm(ctx context.Context) error {
	c.once.Do(func() { c.load(ctx) })
	return c.loadErr
}

// Verify classifies email as valid, stoplist, abused or invalid.
func (c *Classifier) Verify(email string) domain.VerifyResult {
	m, ok := c.match(email)
	if !ok {
		return domain.InvalidResult()
	}
	return m.Result()
}

// SchoolName returns every display name for the institution email belongs to.
// Unmatched, nameless and marker matches return ok=false.
func (c *Classifier) SchoolName(email string) ([]string, bool) {
	m, ok := c.match(email)
	if !ok {
		return nil, false
	}
	return m.Names()
}

// SchoolNamePrimary returns the first display name.
func (c *Classifier) SchoolNamePrimary(email string) (string, bool) {
	names, ok := c.SchoolName(email)
	if !ok {
		return "", false
	}
	return names[0], true
}

// Lookup returns the matched Domain Key and entry for email. The result is
// a copy; changing it does not affect later queries.
func (c *Classifier) Lookup(email string) (domain.Match, bool) {
	m, ok := c.match(email)
	if !ok {
		return domain.Match{}, false
	}
	return domain.Match{Key: slices.Clone(m.Key), Entry: domain.Entry{
		Names:  slices.Clone(m.Entry.Names),
		Marker: m.Entry.Marker,
	}}, true
}

// match returns the match as stored in the index and decision cache.
// Callers must not modify it.
func (c *Classifier) match(email string) (domain.Match, bool) {
	normalized, ok := utils.NormalizeEmail(email)
	if !ok {
		return domain.Match{}, false
	}
	host, ok := utils.EmailDomain(normalized)
	if !ok {
		return domain.Match{}, false
	}
	return c.repository().Decide(host)
}

// Stats reports lookup counters and the loaded index stats.
func (c *Classifier) Stats() lookup.RepoStats {
	return c.repository().RepoStats()
}

func (c *Classifier) repository() lookup.Repository {
	c.once.Do(func() { c.load(context.Background()) })
	return c.repo
}

// load runs inside once. It always leaves c.repo usable.
func (c *Classifier) load(ctx context.Context) {
	if c.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.LoadTimeout)
		defer cancel()
	}

	var ix *index.Index
	if c.opts.Loader == nil {
		c.logger.Warn(nil, "no index loader configured, using empty index")
	} else {
		start := time.Now()
		loaded, err := c.opts.Loader(ctx)
		if err != nil {
			c.loadErr = err
			c.logger.Warn(map[string]any{"error": err.Error()}, "failed to load index, using empty index")
		} else {
			ix = loaded
			c.logger.Debug(map[string]any{"entries": ix.Len(), "elapsed": time.Since(start).String()}, "index loaded")
		}
	}
	c.repo = lookup.NewRepository(ix, c.newCache(), bloom.NewFactory(), c.opts.BloomFPRate)
}

func (c *Classifier) newCache() lookup.DecisionCache {
	cache, err := lru.New(c.opts.CacheSize)
	if err != nil {
		c.logger.Warn(map[string]any{"size": c.opts.CacheSize, "error": err.Error()}, "decision cache disabled")
		return nil
	}
	return cache
}
