package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/models"
)

func snapshot(smaShort, smaLong, atr, closePx float64) indicator.Snapshot {
	return indicator.Snapshot{
		Bar:      models.Bar{Close: closePx, High: closePx + 1, Low: closePx - 1},
		SMAShort: smaShort,
		SMALong:  smaLong,
		ATR:      atr,
	}
}

func TestDecideBuysOnBullishCrossWhenFlat(t *testing.T) {
	policy := NewSMACross(0.02)
	account := Account{Balance: 10000}

	decision := policy.Decide(snapshot(105, 100, 2, 110), account)

	assert.Equal(t, ActionBuy, decision.Action)
	// floor(10000 * 0.02 / 2) = 100
	assert.Equal(t, 100, decision.Quantity)
	assert.InDelta(t, 110+3*2, decision.TakeProfit, 1e-9)
	assert.InDelta(t, 110-1.5*2, decision.StopLoss, 1e-9)
}

func TestDecideHoldsWhenAlreadyLong(t *testing.T) {
	policy := NewSMACross(0.02)
	account := Account{Balance: 10000, Position: 10, EntryPrice: 100}

	decision := policy.Decide(snapshot(105, 100, 2, 110), account)
	assert.Equal(t, ActionHold, decision.Action)
}

func TestDecideSellsFullPositionOnBearishCross(t *testing.T) {
	policy := NewSMACross(0.02)
	account := Account{Balance: 5000, Position: 42, EntryPrice: 100}

	decision := policy.Decide(snapshot(95, 100, 2, 90), account)

	assert.Equal(t, ActionSell, decision.Action)
	assert.Equal(t, 42, decision.Quantity)
}

func TestDecideHoldsOnBearishCrossWhenFlat(t *testing.T) {
	policy := NewSMACross(0.02)

	decision := policy.Decide(snapshot(95, 100, 2, 90), Account{Balance: 5000})
	assert.Equal(t, ActionHold, decision.Action)
}

func TestDecideDegradesToHoldOnUnusableATR(t *testing.T) {
	policy := NewSMACross(0.02)
	account := Account{Balance: 10000}

	for _, atr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		decision := policy.Decide(snapshot(105, 100, atr, 110), account)
		assert.Equal(t, ActionHold, decision.Action, "atr=%v", atr)
	}
}

func TestDecideRespectsMinATRThreshold(t *testing.T) {
	policy := NewSMACross(0.02)
	policy.MinATR = 0.5
	account := Account{Balance: 10000}

	held := policy.Decide(snapshot(105, 100, 0.4, 110), account)
	assert.Equal(t, ActionHold, held.Action)

	bought := policy.Decide(snapshot(105, 100, 0.6, 110), account)
	assert.Equal(t, ActionBuy, bought.Action)
}

func TestSizeFloorsAtOneUnit(t *testing.T) {
	policy := NewSMACross(0.01)

	// floor(100 * 0.01 / 50) = 0, floored at 1.
	qty, ok := policy.size(100, 50)
	require.True(t, ok)
	assert.Equal(t, 1, qty)
}

func TestDecideEqualSMAsIsHold(t *testing.T) {
	policy := NewSMACross(0.02)

	flat := policy.Decide(snapshot(100, 100, 2, 100), Account{Balance: 10000})
	assert.Equal(t, ActionHold, flat.Action)

	long := policy.Decide(snapshot(100, 100, 2, 100), Account{Balance: 10000, Position: 5})
	assert.Equal(t, ActionHold, long.Action)
}

func TestDecisionIsPure(t *testing.T) {
	policy := NewSMACross(0.02)
	account := Account{Balance: 10000}
	snap := snapshot(105, 100, 2, 110)

	assert.Equal(t, policy.Decide(snap, account), policy.Decide(snap, account))
}

func TestParametersExposesConfiguration(t *testing.T) {
	policy := NewSMACross(0.03)
	policy.MinATR = 0.1

	params := policy.Parameters()
	assert.Equal(t, 0.03, params["risk_per_trade"])
	assert.Equal(t, 0.1, params["min_atr"])
	assert.Equal(t, 3.0, params["take_profit_atr"])
	assert.Equal(t, 1.5, params["stop_loss_atr"])
}
