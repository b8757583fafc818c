package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/trend-trader/internal/database"
	"github.com/yourusername/trend-trader/internal/models"
)

// PostgresBestParamsRepository implements BestParamsRepository for PostgreSQL
type PostgresBestParamsRepository struct {
	db *database.DB
}

// NewPostgresBestParamsRepository creates a new best params repository
func NewPostgresBestParamsRepository(db *database.DB) BestParamsRepository {
	return &PostgresBestParamsRepository{db: db}
}

// Save inserts an optimizer result and backfills the generated ID.
func (r *PostgresBestParamsRepository) Save(ctx context.Context, params *models.BestParams) error {
	query := `
		INSERT INTO best_params (short_sma, long_sma, atr_period, risk_per_trade, score)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		params.ShortSMA, params.LongSMA, params.ATRPeriod, params.RiskPerTrade, params.Score,
	).Scan(&params.ID, &params.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save best params: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent optimizer result.
func (r *PostgresBestParamsRepository) GetLatest(ctx context.Context) (*models.BestParams, error) {
	query := `
		SELECT id, short_sma, long_sma, atr_period, risk_per_trade, score, created_at
		FROM best_params ORDER BY created_at DESC LIMIT 1
	`

	params := &models.BestParams{}
	err := r.db.GetPool().QueryRow(ctx, query).Scan(
		&params.ID, &params.ShortSMA, &params.LongSMA, &params.ATRPeriod,
		&params.RiskPerTrade, &params.Score, &params.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("best params: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query best params: %w", err)
	}
	return params, nil
}
