package models

import (
	"time"

	"github.com/google/uuid"
)

// BacktestRun is the persisted record of one completed backtest.
type BacktestRun struct {
	ID             uuid.UUID `json:"id"`
	Symbol         string    `json:"symbol"`
	ShortSMA       int       `json:"short_sma"`
	LongSMA        int       `json:"long_sma"`
	ATRPeriod      int       `json:"atr_period"`
	RiskPerTrade   float64   `json:"risk_per_trade"`
	TotalReturnPct float64   `json:"total_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	FinalBalance   float64   `json:"final_balance"`
	TotalTrades    int       `json:"total_trades"`
	CreatedAt      time.Time `json:"created_at"`
}

// BestParams is the persisted record of one optimizer result.
type BestParams struct {
	ID           int       `json:"id"`
	ShortSMA     int       `json:"short_sma"`
	LongSMA      int       `json:"long_sma"`
	ATRPeriod    int       `json:"atr_period"`
	RiskPerTrade float64   `json:"risk_per_trade"`
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}
