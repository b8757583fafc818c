package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/trend-trader/internal/database"
	"github.com/yourusername/trend-trader/internal/models"
)

const (
	errScanRun = "failed to scan backtest run: %w"

	runColumns = `id, symbol, short_sma, long_sma, atr_period, risk_per_trade,
		total_return_pct, max_drawdown_pct, sharpe_ratio, final_balance, total_trades, created_at`
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new backtest run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a backtest run
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			id, symbol, short_sma, long_sma, atr_period, risk_per_trade,
			total_return_pct, max_drawdown_pct, sharpe_ratio, final_balance, total_trades, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Symbol, run.ShortSMA, run.LongSMA, run.ATRPeriod, run.RiskPerTrade,
		run.TotalReturnPct, run.MaxDrawdownPct, run.SharpeRatio, run.FinalBalance, run.TotalTrades, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest run by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE id = $1`

	run := &models.BacktestRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Symbol, &run.ShortSMA, &run.LongSMA, &run.ATRPeriod, &run.RiskPerTrade,
		&run.TotalReturnPct, &run.MaxDrawdownPct, &run.SharpeRatio, &run.FinalBalance, &run.TotalTrades, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backtest run %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf(errScanRun, err)
	}
	return run, nil
}

// GetBySymbol retrieves the most recent backtest runs for a symbol
func (r *PostgresRunRepository) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestRun, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE symbol = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetByDateRange retrieves backtest runs within a date range
func (r *PostgresRunRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs by date range: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows pgx.Rows) ([]*models.BacktestRun, error) {
	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := rows.Scan(
			&run.ID, &run.Symbol, &run.ShortSMA, &run.LongSMA, &run.ATRPeriod, &run.RiskPerTrade,
			&run.TotalReturnPct, &run.MaxDrawdownPct, &run.SharpeRatio, &run.FinalBalance, &run.TotalTrades, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
