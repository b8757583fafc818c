package strategy

import (
	"math"

	"github.com/yourusername/trend-trader/internal/indicator"
)

// Compile-time interface check.
var _ Policy = (*SMACross)(nil)

// SMACross is a moving-average crossover policy with volatility-based
// position sizing. It buys when the short SMA is above the long SMA and the
// account is flat, sizing the position to risk RiskPerTrade of the balance
// per unit of ATR, and sells the full position when the short SMA falls
// below the long SMA.
type SMACross struct {
	// RiskPerTrade is the fraction of the balance risked per unit of ATR
	// when sizing an entry.
	RiskPerTrade float64

	// MinATR is the sizing validity threshold: an ATR at or below this
	// value degrades a buy signal to hold. Zero keeps the default policy
	// of rejecting only non-positive ATR.
	MinATR float64

	// TakeProfitATR and StopLossATR express protective levels as ATR
	// multiples from the entry price. Zero disables the level.
	TakeProfitATR float64
	StopLossATR   float64
}

// NewSMACross creates an SMACross policy with the given risk fraction and
// default protective levels of 3x ATR take-profit and 1.5x ATR stop-loss.
func NewSMACross(riskPerTrade float64) *SMACross {
	return &SMACross{
		RiskPerTrade:  riskPerTrade,
		TakeProfitATR: 3.0,
		StopLossATR:   1.5,
	}
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return "sma-cross"
}

// Decide implements the crossover rule. It never returns an error: malformed
// indicator state (undefined or too-small ATR) degrades to hold.
func (s *SMACross) Decide(snapshot indicator.Snapshot, account Account) Decision {
	switch {
	case snapshot.SMAShort > snapshot.SMALong && !account.HasPosition():
		qty, ok := s.size(account.Balance, snapshot.ATR)
		if !ok {
			return Hold("atr unusable for sizing")
		}
		return Decision{
			Action:     ActionBuy,
			Quantity:   qty,
			Reason:     "short SMA above long SMA",
			TakeProfit: s.level(snapshot.Bar.Close, snapshot.ATR, s.TakeProfitATR),
			StopLoss:   s.level(snapshot.Bar.Close, snapshot.ATR, -s.StopLossATR),
		}
	case snapshot.SMAShort < snapshot.SMALong && account.HasPosition():
		return Decision{
			Action:   ActionSell,
			Quantity: account.Position,
			Reason:   "short SMA below long SMA",
		}
	default:
		return Hold("no signal")
	}
}

// Parameters returns the policy parameters.
func (s *SMACross) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"risk_per_trade":  s.RiskPerTrade,
		"min_atr":         s.MinATR,
		"take_profit_atr": s.TakeProfitATR,
		"stop_loss_atr":   s.StopLossATR,
	}
}

// size computes floor(balance * riskPerTrade / ATR), floored at 1 unit.
// It reports false when the ATR is unusable.
func (s *SMACross) size(balance, atr float64) (int, bool) {
	if atr <= s.MinATR || atr <= 0 || math.IsNaN(atr) || math.IsInf(atr, 0) {
		return 0, false
	}
	qty := int(math.Floor(balance * s.RiskPerTrade / atr))
	if qty < 1 {
		qty = 1
	}
	return qty, true
}

// level offsets the entry price by a signed multiple of the ATR.
func (s *SMACross) level(price, atr, multiple float64) float64 {
	if multiple == 0 || atr <= 0 {
		return 0
	}
	return price + multiple*atr
}
