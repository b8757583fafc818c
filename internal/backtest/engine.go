// Package backtest simulates a trading strategy bar-by-bar over historical
// price data and evaluates the resulting equity curve.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/strategy"
)

// Engine owns the simulated portfolio state machine. It walks a price
// history in chronological order, asks the policy for a decision on every
// bar, applies fills with transaction costs, and accumulates the trade log
// and equity curve. Runs are deterministic for identical inputs.
type Engine struct {
	config Config
	policy strategy.Policy
	logger *logrus.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(cfg Config, policy strategy.Policy, logger *logrus.Logger) (*Engine, error) {
	if policy == nil {
		return nil, fmt.Errorf("policy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, policy: policy, logger: logger}, nil
}

// Result holds the full outcome of one backtest run for one symbol.
type Result struct {
	Symbol       string
	Trades       []models.TradeRecord
	EquityCurve  EquityCurve
	FinalAccount strategy.Account
	Summary      Summary
}

// ToRun converts the result into a persistable run record.
func (r *Result) ToRun(cfg *config.TradingConfig) models.BacktestRun {
	return models.BacktestRun{
		ID:             uuid.New(),
		Symbol:         r.Symbol,
		ShortSMA:       cfg.ShortSMA,
		LongSMA:        cfg.LongSMA,
		ATRPeriod:      cfg.ATRPeriod,
		RiskPerTrade:   cfg.RiskPerTrade,
		TotalReturnPct: r.Summary.TotalReturnPct,
		MaxDrawdownPct: r.Summary.MaxDrawdownPct,
		SharpeRatio:    r.Summary.SharpeRatio,
		FinalBalance:   r.Summary.FinalBalance,
		TotalTrades:    r.Summary.TotalTrades,
		CreatedAt:      time.Now().UTC(),
	}
}

// Run backtests the configured policy over one symbol's price history.
// The history must be sorted ascending with unique timestamps; bars inside
// the indicator warm-up window are excluded from both decision-making and
// the equity curve. After the final bar any open position is force-closed
// at that bar's close so every run ends flat.
func (e *Engine) Run(symbol string, history []models.Bar) (*Result, error) {
	started := time.Now()

	if err := models.ValidateHistory(history); err != nil {
		return nil, fmt.Errorf("invalid history for %s: %w", symbol, err)
	}
	snapshots, err := indicator.Compute(history, e.config.Indicators)
	if err != nil {
		return nil, fmt.Errorf("computing indicators for %s: %w", symbol, err)
	}

	account := strategy.Account{Balance: e.config.InitialBalance}
	trades := make([]models.TradeRecord, 0, 8)
	curve := make(EquityCurve, 0, len(snapshots))

	for _, snapshot := range snapshots {
		decision := e.policy.Decide(snapshot, account)
		bar := snapshot.Bar

		switch {
		case decision.Action == strategy.ActionBuy && !account.HasPosition():
			var record *models.TradeRecord
			account, record = applyBuy(account, decision, bar, e.config.TransactionCostRate)
			if record != nil {
				trades = append(trades, *record)
				metrics.RecordSimulatedTrade(string(record.Action))
			}
		case decision.Action == strategy.ActionSell && account.HasPosition():
			var record models.TradeRecord
			account, record = applySell(account, models.TradeActionSell, bar, e.config.TransactionCostRate, decision.Reason)
			trades = append(trades, record)
			metrics.RecordSimulatedTrade(string(record.Action))
		}

		curve = append(curve, EquityPoint{
			Time:  bar.Timestamp,
			Value: markToMarket(account, bar.Close),
		})
	}

	// Force liquidation at the final close so runs are comparable on
	// realized P&L.
	if account.HasPosition() {
		finalBar := snapshots[len(snapshots)-1].Bar
		var record models.TradeRecord
		account, record = applySell(account, models.TradeActionAutoClose, finalBar, e.config.TransactionCostRate, "auto-close at end of history")
		trades = append(trades, record)
		metrics.RecordSimulatedTrade(string(record.Action))
	}

	summary := Evaluate(curve, e.config.InitialBalance)
	summary.FinalBalance = account.Balance
	summary.TotalTrades = len(trades)
	// Total return is measured on realized cash after the forced
	// liquidation, not on the last mark-to-market point.
	summary.TotalReturnPct = (account.Balance - e.config.InitialBalance) / e.config.InitialBalance * 100

	metrics.RecordBacktestRun(time.Since(started).Seconds())
	e.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(snapshots),
		"trades": len(trades),
		"return": fmt.Sprintf("%.2f%%", summary.TotalReturnPct),
	}).Debug("backtest run complete")

	return &Result{
		Symbol:       symbol,
		Trades:       trades,
		EquityCurve:  curve,
		FinalAccount: account,
		Summary:      summary,
	}, nil
}
