// Package repository provides data access for the optional Postgres
// result sink.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trend-trader/internal/models"
)

// RunRepository defines the interface for backtest run persistence
type RunRepository interface {
	Create(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestRun, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error)
}

// TradeLogRepository defines the interface for simulated trade persistence
type TradeLogRepository interface {
	InsertBatch(ctx context.Context, runID uuid.UUID, trades []models.TradeRecord) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.TradeRecord, error)
}

// BestParamsRepository defines the interface for optimizer result persistence
type BestParamsRepository interface {
	Save(ctx context.Context, params *models.BestParams) error
	GetLatest(ctx context.Context) (*models.BestParams, error)
}
