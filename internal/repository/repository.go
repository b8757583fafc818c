package repository

import (
	"fmt"

	"github.com/yourusername/trend-trader/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Runs       RunRepository
	TradeLogs  TradeLogRepository
	BestParams BestParamsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Runs:       NewPostgresRunRepository(db),
		TradeLogs:  NewPostgresTradeLogRepository(db),
		BestParams: NewPostgresBestParamsRepository(db),
	}, nil
}
