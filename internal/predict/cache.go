package predict

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache defaults.
const (
	DefaultCacheSize = 100
	DefaultCacheTTL  = 5 * time.Minute
)

// CachedPredictor memoises another predictor. Entries expire after the TTL
// and the least recently used entry is evicted once the cache is full.
// Failed predictions are not cached.
type CachedPredictor struct {
	next  Predictor
	cache *expirable.LRU[string, []string]
}

// NewCachedPredictor wraps next. Non-positive size or ttl select the defaults.
func NewCachedPredictor(next Predictor, size int, ttl time.Duration) *CachedPredictor {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedPredictor{
		next:  next,
		cache: expirable.NewLRU[string, []string](size, nil, ttl),
	}
}

func cacheKey(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (p *CachedPredictor) Predict(ctx context.Context, text string) ([]string, error) {
	key := cacheKey(text)
	if words, ok := p.cache.Get(key); ok {
		return words, nil
	}

	words, err := p.next.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, words)
	return words, nil
}

// Len returns the number of live entries.
func (p *CachedPredictor) Len() int {
	return p.cache.Len()
}
