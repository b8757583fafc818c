// Package strategy defines the decision policy interface for trading
// strategies. A policy is a pure function from the latest indicator snapshot
// and account state to a sized trading decision; it performs no I/O, so the
// same inputs always yield the same decision in backtests and live trading.
package strategy

import (
	"github.com/yourusername/trend-trader/internal/indicator"
)

// Action is the trading action produced by a policy.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Account is the environment-neutral view of the trading account a policy
// decides against. Backtest state and live broker positions are both adapted
// into this shape.
type Account struct {
	Balance    float64
	Position   int
	EntryPrice float64
}

// HasPosition reports whether the account currently holds an open position.
func (a Account) HasPosition() bool {
	return a.Position > 0
}

// Decision is the output of a policy for one bar. TakeProfit and StopLoss
// are optional protective levels; zero means none. Quantity is only
// meaningful for buy decisions.
type Decision struct {
	Action     Action
	Quantity   int
	Reason     string
	TakeProfit float64
	StopLoss   float64
}

// Policy is the interface implemented by all decision policies.
type Policy interface {
	// Name returns the unique identifier for this policy.
	Name() string

	// Decide produces a trading decision from the latest indicator
	// snapshot and the current account state.
	Decide(snapshot indicator.Snapshot, account Account) Decision

	// Parameters returns the policy parameters for reporting and persistence.
	Parameters() map[string]interface{}
}

// Hold builds a hold decision with the given reason.
func Hold(reason string) Decision {
	return Decision{Action: ActionHold, Reason: reason}
}
