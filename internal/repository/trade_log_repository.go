package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/trend-trader/internal/database"
	"github.com/yourusername/trend-trader/internal/models"
)

// PostgresTradeLogRepository implements TradeLogRepository for PostgreSQL
type PostgresTradeLogRepository struct {
	db *database.DB
}

// NewPostgresTradeLogRepository creates a new trade log repository
func NewPostgresTradeLogRepository(db *database.DB) TradeLogRepository {
	return &PostgresTradeLogRepository{db: db}
}

// execer is the subset of pgx.Tx needed by the batched insert.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// InsertBatch inserts all trades of a run inside one transaction.
func (r *PostgresTradeLogRepository) InsertBatch(ctx context.Context, runID uuid.UUID, trades []models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return insertTrades(ctx, tx, runID, trades)
	})
}

func insertTrades(ctx context.Context, tx execer, runID uuid.UUID, trades []models.TradeRecord) error {
	query := `
		INSERT INTO trade_logs (id, run_id, symbol, action, price, quantity, pnl, reason, executed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`

	for _, trade := range trades {
		if _, err := tx.Exec(ctx, query,
			trade.ID, runID, trade.Symbol, string(trade.Action),
			trade.Price, trade.Quantity, trade.PnL, trade.Reason, trade.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to insert trade log: %w", err)
		}
	}
	return nil
}

// GetByRunID retrieves all trades recorded for a run in execution order.
func (r *PostgresTradeLogRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.TradeRecord, error) {
	query := `
		SELECT id, symbol, action, price, quantity, pnl, reason, executed_at
		FROM trade_logs WHERE run_id = $1 ORDER BY executed_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade logs: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var trade models.TradeRecord
		var action string
		if err := rows.Scan(
			&trade.ID, &trade.Symbol, &action, &trade.Price,
			&trade.Quantity, &trade.PnL, &trade.Reason, &trade.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade log: %w", err)
		}
		trade.Action = models.TradeAction(action)
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}
