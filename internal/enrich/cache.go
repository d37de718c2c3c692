package enrich

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/leadops-cli/internal/model"
)

// Cache memoizes generator output for the lifetime of one session. The
// hosting surfaces re-enter the pipeline on every interaction, so without
// this every render would re-issue full-batch generation calls and could
// silently produce a different ranking each time. Memoization here is the
// correctness mechanism, not an optimization.
//
// Entries are keyed by the ordered sequence of business names. They are
// never updated in place: a changed input set is a new key, and there is no
// eviction. Failed generations are not cached, so the next invocation
// retries. Each session owns its own Cache instance.
type Cache struct {
	gen    *MetricsGenerator
	scorer *RankScorer

	flight singleflight.Group

	mu      sync.Mutex
	metrics map[string][]model.SyntheticMetrics
	ranks   map[string]map[string]int
}

// NewCache creates a session-scoped enrichment cache over the given
// generator and scorer.
func NewCache(gen *MetricsGenerator, scorer *RankScorer) *Cache {
	return &Cache{
		gen:     gen,
		scorer:  scorer,
		metrics: make(map[string][]model.SyntheticMetrics),
		ranks:   make(map[string]map[string]int),
	}
}

// batchKey derives a stable identity for an ordered name sequence. The unit
// separator cannot occur in CSV-sourced names.
func batchKey(names []string) string {
	return strings.Join(names, "\x1f")
}

// GetOrCompute returns the metrics batch for names, generating it at most
// once per identical name sequence. A failed generation is returned as-is
// and leaves no cache entry.
func (c *Cache) GetOrCompute(ctx context.Context, names []string) ([]model.SyntheticMetrics, error) {
	key := batchKey(names)

	c.mu.Lock()
	if cached, ok := c.metrics[key]; ok {
		c.mu.Unlock()
		zap.L().Debug("cache: metrics hit", zap.Int("batch_size", len(names)))
		return cached, nil
	}
	c.mu.Unlock()

	// Concurrent misses for the same sequence share one generation call.
	// Without this, simultaneous callers would each reach the generator and
	// could observe divergent batches for the same input set.
	v, err, _ := c.flight.Do("metrics\x1f"+key, func() (any, error) {
		// Re-check under the flight: a caller that missed above may execute
		// after an earlier flight already stored the entry.
		c.mu.Lock()
		if cached, ok := c.metrics[key]; ok {
			c.mu.Unlock()
			return cached, nil
		}
		c.mu.Unlock()

		batch, err := c.gen.Generate(ctx, names)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.metrics[key] = batch
		c.mu.Unlock()
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.SyntheticMetrics), nil
}

// GetOrComputeRanks returns the name-to-rank mapping for the batch
// identified by names, computing it lazily the first time. Unlike the
// all-or-nothing metrics batch, ranking degrades per item: a failed rank
// call falls back to a randomized draw so the ordering is always total.
func (c *Cache) GetOrComputeRanks(ctx context.Context, names []string) (map[string]int, error) {
	key := batchKey(names)

	c.mu.Lock()
	if cached, ok := c.ranks[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do("ranks\x1f"+key, func() (any, error) {
		c.mu.Lock()
		if cached, ok := c.ranks[key]; ok {
			c.mu.Unlock()
			return cached, nil
		}
		c.mu.Unlock()

		batch, err := c.GetOrCompute(ctx, names)
		if err != nil {
			return nil, err
		}

		byName := make(map[string]*model.SyntheticMetrics, len(batch))
		for i := range batch {
			byName[batch[i].BusinessName] = &batch[i]
		}

		ranks := make(map[string]int, len(names))
		for _, name := range names {
			rank, err := c.scorer.Rank(ctx, byName[name])
			if err != nil {
				zap.L().Warn("cache: rank failed, using fallback",
					zap.String("business", name),
					zap.Error(err),
				)
				rank = c.scorer.FallbackRank()
			}
			ranks[name] = rank
		}

		c.mu.Lock()
		c.ranks[key] = ranks
		c.mu.Unlock()
		return ranks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int), nil
}

// Reset drops all cached entries. Used when the operator explicitly asks for
// a fresh enrichment of the same input set.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string][]model.SyntheticMetrics)
	c.ranks = make(map[string]map[string]int)
}
