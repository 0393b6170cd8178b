package offers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dvloznov/finsight/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CardSearcher finds card models matching a free-text query. Failures are
// reported as an empty result.
type CardSearcher interface {
	FindCreditCards(ctx context.Context, query string) []domain.CardCandidate
}

// DefaultCatalogTTL is how long card-search results are cached.
const DefaultCatalogTTL = 30 * time.Minute

// CardCatalog caches card-model searches. Identical concurrent queries
// share one upstream call. Empty results are not cached.
type CardCatalog struct {
	searcher CardSearcher
	cache    *ristretto.Cache[string, []domain.CardCandidate]
	group    singleflight.Group
	ttl      time.Duration
}

// NewCardCatalog returns a catalog in front of searcher. A non-positive
// ttl uses DefaultCatalogTTL.
func NewCardCatalog(searcher CardSearcher, ttl time.Duration) (*CardCatalog, error) {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []domain.CardCandidate]{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("NewCardCatalog: create cache: %w", err)
	}
	return &CardCatalog{searcher: searcher, cache: cache, ttl: ttl}, nil
}

// Close stops the cache's background goroutines.
func (c *CardCatalog) Close() {
	c.cache.Close()
}

// Search returns card models for query. Blank queries return nil without
// calling the searcher.
func (c *CardCatalog) Search(ctx context.Context, query string) []domain.CardCandidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	key := strings.ToLower(query)

	if hit, ok := c.cache.Get(key); ok {
		return append([]domain.CardCandidate(nil), hit...)
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		found := c.searcher.FindCreditCards(ctx, query)
		if len(found) > 0 {
			c.cache.SetWithTTL(key, found, 1, c.ttl)
			c.cache.Wait()
		}
		return found, nil
	})
	found, _ := v.([]domain.CardCandidate)
	return append([]domain.CardCandidate(nil), found...)
}
