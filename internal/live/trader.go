// Package live is the broker-facing boundary. It recomputes signals on
// fresh bars and mirrors the resulting decisions as real orders.
package live

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/datasource"
	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/strategy"
)

// Broker is the subset of the trading API the trader uses.
type Broker interface {
	GetAccount() (*alpaca.Account, error)
	GetPosition(symbol string) (*alpaca.Position, error)
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
}

// Trader runs one decision cycle per symbol against the broker.
type Trader struct {
	broker       Broker
	provider     datasource.Provider
	policy       strategy.Policy
	params       indicator.Params
	symbols      []string
	lookbackDays int
	logger       *logrus.Logger
}

// CycleReport summarizes one trading cycle.
type CycleReport struct {
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	Actions  map[string]string `json:"actions"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// NewTrader creates a live trader from configuration.
func NewTrader(cfg *config.Config, provider datasource.Provider, policy strategy.Policy, params indicator.Params, logger *logrus.Logger) (*Trader, error) {
	if !cfg.Live.Enabled {
		return nil, fmt.Errorf("live trading is not enabled")
	}
	if len(cfg.Trading.Symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.Live.APIKey,
		APISecret: cfg.Live.APISecret,
		BaseURL:   cfg.Live.BaseURL,
	})

	lookback := cfg.Live.LookbackDays
	if lookback <= 0 {
		// Enough calendar days to cover the longest window in trading days.
		lookback = 2*params.LongWindow + 30
	}

	return &Trader{
		broker:       client,
		provider:     provider,
		policy:       policy,
		params:       params,
		symbols:      cfg.Trading.Symbols,
		lookbackDays: lookback,
		logger:       logger,
	}, nil
}

// RunCycle evaluates every configured symbol once. Symbol failures are
// collected per symbol so one bad ticker cannot abort the rest of the
// cycle.
func (t *Trader) RunCycle(ctx context.Context) *CycleReport {
	started := time.Now()
	report := &CycleReport{
		Started: started,
		Actions: make(map[string]string),
		Errors:  make(map[string]string),
	}

	for _, symbol := range t.symbols {
		action, err := t.evaluateSymbol(ctx, symbol)
		if err != nil {
			t.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"error":  err,
			}).Error("Symbol evaluation failed")
			report.Errors[symbol] = err.Error()
			continue
		}
		report.Actions[symbol] = action
	}

	report.Duration = time.Since(started)
	metrics.LiveCycleDuration.Observe(report.Duration.Seconds())

	t.logger.WithFields(logrus.Fields{
		"symbols":  len(t.symbols),
		"errors":   len(report.Errors),
		"duration": report.Duration,
	}).Info("Trading cycle complete")

	return report
}

// evaluateSymbol fetches bars, recomputes the latest indicator snapshot and
// acts on the resulting decision. Returns the action taken.
func (t *Trader) evaluateSymbol(ctx context.Context, symbol string) (string, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -t.lookbackDays)

	bars, err := t.provider.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}

	snapshots, err := indicator.Compute(bars, t.params)
	if err != nil {
		return "", fmt.Errorf("indicator computation failed: %w", err)
	}
	latest := snapshots[len(snapshots)-1]

	account, err := t.accountState(symbol)
	if err != nil {
		return "", err
	}

	decision := t.policy.Decide(latest, account)

	t.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"action":   string(decision.Action),
		"quantity": decision.Quantity,
		"reason":   decision.Reason,
		"close":    latest.Bar.Close,
	}).Debug("Decision computed")

	switch decision.Action {
	case strategy.ActionBuy:
		if err := t.submitBracketBuy(symbol, decision); err != nil {
			metrics.RecordLiveOrderError()
			return "", err
		}
		metrics.RecordLiveOrder("buy")
	case strategy.ActionSell:
		if err := t.submitSell(symbol, decision.Quantity); err != nil {
			metrics.RecordLiveOrderError()
			return "", err
		}
		metrics.RecordLiveOrder("sell")
	}

	return string(decision.Action), nil
}

// accountState maps broker account and position data onto the policy's
// account view. A missing position is treated as flat.
func (t *Trader) accountState(symbol string) (strategy.Account, error) {
	acct, err := t.broker.GetAccount()
	if err != nil {
		return strategy.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	account := strategy.Account{
		Balance: acct.Cash.InexactFloat64(),
	}

	position, err := t.broker.GetPosition(symbol)
	if err != nil {
		if isNotFound(err) {
			return account, nil
		}
		return strategy.Account{}, fmt.Errorf("failed to get position: %w", err)
	}
	if position != nil {
		account.Position = int(position.Qty.IntPart())
		account.EntryPrice = position.AvgEntryPrice.InexactFloat64()
	}
	return account, nil
}

func (t *Trader) submitBracketBuy(symbol string, decision strategy.Decision) error {
	qty := decimal.NewFromInt(int64(decision.Quantity))
	takeProfit := decimal.NewFromFloat(decision.TakeProfit).Round(2)
	stopLoss := decimal.NewFromFloat(decision.StopLoss).Round(2)

	order, err := t.broker.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &qty,
		Side:        alpaca.Buy,
		Type:        alpaca.Market,
		TimeInForce: alpaca.GTC,
		OrderClass:  alpaca.Bracket,
		TakeProfit:  &alpaca.TakeProfit{LimitPrice: &takeProfit},
		StopLoss:    &alpaca.StopLoss{StopPrice: &stopLoss},
	})
	if err != nil {
		return fmt.Errorf("failed to place bracket buy: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"symbol":      symbol,
		"order_id":    order.ID,
		"quantity":    decision.Quantity,
		"take_profit": decision.TakeProfit,
		"stop_loss":   decision.StopLoss,
	}).Info("Bracket buy submitted")
	return nil
}

func (t *Trader) submitSell(symbol string, quantity int) error {
	qty := decimal.NewFromInt(int64(quantity))

	order, err := t.broker.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &qty,
		Side:        alpaca.Sell,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return fmt.Errorf("failed to place sell: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"order_id": order.ID,
		"quantity": quantity,
	}).Info("Sell submitted")
	return nil
}

// isNotFound reports whether the broker error means "no such position".
func isNotFound(err error) bool {
	if apiErr, ok := err.(*alpaca.APIError); ok {
		return apiErr.StatusCode == 404
	}
	return strings.Contains(err.Error(), "position does not exist")
}
