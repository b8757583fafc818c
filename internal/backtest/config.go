package backtest

import (
	"fmt"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/indicator"
)

// Config holds the explicit simulation settings for one backtest engine.
// It is passed in at construction time; the engine has no global state.
type Config struct {
	InitialBalance      float64
	TransactionCostRate float64
	Indicators          indicator.Params
}

// FromConfig converts app config to an engine config.
func FromConfig(cfg *config.TradingConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("trading config is required")
	}
	bt := Config{
		InitialBalance:      cfg.InitialBalance,
		TransactionCostRate: cfg.TransactionCostRate,
		Indicators: indicator.Params{
			ShortWindow: cfg.ShortSMA,
			LongWindow:  cfg.LongSMA,
			ATRWindow:   cfg.ATRPeriod,
		},
	}
	return bt, bt.Validate()
}

// Validate validates the engine config.
func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive")
	}
	if c.TransactionCostRate < 0 || c.TransactionCostRate > 0.1 {
		return fmt.Errorf("transaction cost rate must be between 0 and 0.1")
	}
	return c.Indicators.Validate()
}
