package database

import (
	"context"
	"fmt"

	"github.com/yourusername/trend-trader/internal/config"
)

// schema holds the DDL for the result sink tables. It is applied with
// IF NOT EXISTS so repeated startups are safe.
const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id UUID PRIMARY KEY,
	symbol TEXT NOT NULL,
	short_sma INTEGER NOT NULL,
	long_sma INTEGER NOT NULL,
	atr_period INTEGER NOT NULL,
	risk_per_trade DOUBLE PRECISION NOT NULL,
	total_return_pct DOUBLE PRECISION NOT NULL,
	max_drawdown_pct DOUBLE PRECISION NOT NULL,
	sharpe_ratio DOUBLE PRECISION NOT NULL,
	final_balance DOUBLE PRECISION NOT NULL,
	total_trades INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trade_logs (
	id UUID PRIMARY KEY,
	run_id UUID NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	quantity INTEGER NOT NULL,
	pnl DOUBLE PRECISION,
	reason TEXT NOT NULL DEFAULT '',
	executed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trade_logs_run_id ON trade_logs(run_id);

CREATE TABLE IF NOT EXISTS best_params (
	id SERIAL PRIMARY KEY,
	short_sma INTEGER NOT NULL,
	long_sma INTEGER NOT NULL,
	atr_period INTEGER NOT NULL,
	risk_per_trade DOUBLE PRECISION NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Initialize creates a database connection pool and ensures the result
// sink schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
