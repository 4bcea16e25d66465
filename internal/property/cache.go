package property

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

const catalogCacheKey = "catalog"

// CachedCatalog keeps the property list in memory for ttl.
type CachedCatalog struct {
	next  Catalog
	cache *cache.Cache
	ttl   time.Duration
}

func NewCachedCatalog(next Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *CachedCatalog) ListProperties(ctx context.Context) ([]*entity.Property, error) {
	if cached, found := c.cache.Get(catalogCacheKey); found {
		return cached.([]*entity.Property), nil
	}
	props, err := c.next.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(catalogCacheKey, props, cache.DefaultExpiration)
	return props, nil
}

// Invalidate drops the cached list; call it after catalog writes.
func (c *CachedCatalog) Invalidate() {
	c.cache.Delete(catalogCacheKey)
}
