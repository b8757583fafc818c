package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
)

// NewProvider creates a market data provider from configuration and wraps it
// with an in-memory cache when a TTL is configured.
func NewProvider(cfg *config.DataConfig, logger *logrus.Logger) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.Provider {
	case "alpaca":
		provider, err = NewAlpacaProvider(cfg.Alpaca, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create alpaca provider: %w", err)
		}
	case "stooq":
		provider = NewStooqProvider(cfg.Stooq, logger)
	default:
		return nil, fmt.Errorf("unknown data provider: %s", cfg.Provider)
	}

	logger.WithField("provider", provider.Name()).Info("Created market data provider")

	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		provider = NewCachedProvider(provider, ttl, logger)
	}

	return provider, nil
}
