package datasource

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/models"
)

// CachedProvider decorates another provider with an in-memory TTL cache.
// Optimizer runs hit the same symbol/date-range repeatedly, so a short TTL
// saves hundreds of identical upstream requests.
type CachedProvider struct {
	inner  Provider
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewCachedProvider wraps the given provider with a TTL cache.
func NewCachedProvider(inner Provider, ttl time.Duration, logger *logrus.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Name returns the name of the underlying data provider
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// FetchBars returns cached bars when present, otherwise delegates to the
// underlying provider and caches the result. Errors are never cached.
func (p *CachedProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	key := cacheKey(symbol, start, end)
	if cached, found := p.cache.Get(key); found {
		if bars, ok := cached.([]models.Bar); ok {
			p.logger.WithFields(logrus.Fields{
				"provider": p.inner.Name(),
				"symbol":   symbol,
			}).Debug("Bar cache hit")
			return bars, nil
		}
	}

	bars, err := p.inner.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, bars, gocache.DefaultExpiration)
	return bars, nil
}

func cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
