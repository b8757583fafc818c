package backtest

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/strategy"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// scriptedPolicy replays a fixed decision sequence, holding once exhausted.
type scriptedPolicy struct {
	decisions []strategy.Decision
	index     int
}

func (p *scriptedPolicy) Name() string { return "scripted" }

func (p *scriptedPolicy) Decide(snapshot indicator.Snapshot, account strategy.Account) strategy.Decision {
	if p.index >= len(p.decisions) {
		return strategy.Hold("script exhausted")
	}
	d := p.decisions[p.index]
	p.index++
	if d.Action == strategy.ActionSell {
		d.Quantity = account.Position
	}
	return d
}

func (p *scriptedPolicy) Parameters() map[string]interface{} {
	return map[string]interface{}{}
}

func historyFromCloses(closes ...float64) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 0, len(closes))
	for i, c := range closes {
		bars = append(bars, models.Bar{
			Symbol:    "TEST",
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
		})
	}
	return bars
}

// unitWindows puts the first snapshot at the second bar, keeping fill
// arithmetic easy to verify by hand.
func unitWindows() Config {
	return Config{
		InitialBalance:      10000,
		TransactionCostRate: 0.001,
		Indicators:          indicator.Params{ShortWindow: 1, LongWindow: 1, ATRWindow: 1},
	}
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	_, err := NewEngine(unitWindows(), nil, testLogger())
	require.Error(t, err)

	cfg := unitWindows()
	cfg.InitialBalance = -1
	_, err = NewEngine(cfg, &scriptedPolicy{}, testLogger())
	require.Error(t, err)
}

func TestRunBuySellRoundTrip(t *testing.T) {
	policy := &scriptedPolicy{decisions: []strategy.Decision{
		{Action: strategy.ActionBuy, Quantity: 10, Reason: "entry"},
		{Action: strategy.ActionHold},
		{Action: strategy.ActionSell, Reason: "exit"},
		{Action: strategy.ActionHold},
	}}
	engine, err := NewEngine(unitWindows(), policy, testLogger())
	require.NoError(t, err)

	// Snapshots cover closes 102, 101, 105, 103.
	result, err := engine.Run("TEST", historyFromCloses(100, 102, 101, 105, 103))
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)

	buy := result.Trades[0]
	assert.Equal(t, models.TradeActionBuy, buy.Action)
	assert.Equal(t, 102.0, buy.Price)
	assert.Equal(t, 10, buy.Quantity)
	assert.Nil(t, buy.PnL)

	sell := result.Trades[1]
	assert.Equal(t, models.TradeActionSell, sell.Action)
	assert.Equal(t, 105.0, sell.Price)
	require.NotNil(t, sell.PnL)
	assert.InDelta(t, 30.0, *sell.PnL, 1e-9)

	// 10000 - 10*102*1.001 + 10*105*0.999 = 10027.93
	assert.InDelta(t, 10027.93, result.Summary.FinalBalance, 1e-9)
	assert.InDelta(t, 0.2793, result.Summary.TotalReturnPct, 1e-4)
	assert.Equal(t, 2, result.Summary.TotalTrades)
	assert.False(t, result.FinalAccount.HasPosition())

	// Equity curve tracks mark-to-market value per snapshot.
	require.Len(t, result.EquityCurve, 4)
	assert.InDelta(t, 10000-10*102*1.001+10*102, result.EquityCurve[0].Value, 1e-9)
	assert.InDelta(t, 10000-10*102*1.001+10*101, result.EquityCurve[1].Value, 1e-9)
	assert.InDelta(t, 10027.93, result.EquityCurve[2].Value, 1e-9)
	assert.InDelta(t, 10027.93, result.EquityCurve[3].Value, 1e-9)
}

func TestRunAutoClosesOpenPositionAtFinalBar(t *testing.T) {
	policy := &scriptedPolicy{decisions: []strategy.Decision{
		{Action: strategy.ActionBuy, Quantity: 10, Reason: "entry"},
	}}
	engine, err := NewEngine(unitWindows(), policy, testLogger())
	require.NoError(t, err)

	result, err := engine.Run("TEST", historyFromCloses(100, 102, 101, 105, 103))
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	last := result.Trades[len(result.Trades)-1]
	assert.Equal(t, models.TradeActionAutoClose, last.Action)
	assert.Equal(t, 103.0, last.Price)
	require.NotNil(t, last.PnL)
	assert.InDelta(t, 10.0, *last.PnL, 1e-9)
	assert.False(t, result.FinalAccount.HasPosition(), "every run must end flat")

	// Realized cash, not the last mark-to-market point, defines the return.
	expectedBalance := 10000 - 10*102*1.001 + 10*103*0.999
	assert.InDelta(t, expectedBalance, result.Summary.FinalBalance, 1e-9)
	assert.InDelta(t, (expectedBalance-10000)/10000*100, result.Summary.TotalReturnPct, 1e-9)
}

func TestRunSkipsUnaffordableBuy(t *testing.T) {
	policy := &scriptedPolicy{decisions: []strategy.Decision{
		{Action: strategy.ActionBuy, Quantity: 10, Reason: "entry"},
	}}
	cfg := unitWindows()
	cfg.InitialBalance = 100
	engine, err := NewEngine(cfg, policy, testLogger())
	require.NoError(t, err)

	result, err := engine.Run("TEST", historyFromCloses(100, 102, 101, 105, 103))
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.InDelta(t, 100.0, result.Summary.FinalBalance, 1e-9)
	for _, point := range result.EquityCurve {
		assert.InDelta(t, 100.0, point.Value, 1e-9)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	history := historyFromCloses(100, 102, 101, 105, 103, 107, 104)
	cfg := unitWindows()

	run := func() *Result {
		policy := &scriptedPolicy{decisions: []strategy.Decision{
			{Action: strategy.ActionBuy, Quantity: 5, Reason: "entry"},
			{Action: strategy.ActionHold},
			{Action: strategy.ActionSell, Reason: "exit"},
		}}
		engine, err := NewEngine(cfg, policy, testLogger())
		require.NoError(t, err)
		result, err := engine.Run("TEST", history)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	require.Equal(t, len(first.Trades), len(second.Trades))
	for i := range first.Trades {
		assert.Equal(t, first.Trades[i].Action, second.Trades[i].Action)
		assert.Equal(t, first.Trades[i].Price, second.Trades[i].Price)
	}
}

func TestRunRejectsUnsortedHistory(t *testing.T) {
	history := historyFromCloses(100, 102, 101)
	history[0], history[1] = history[1], history[0]

	engine, err := NewEngine(unitWindows(), &scriptedPolicy{}, testLogger())
	require.NoError(t, err)

	_, err = engine.Run("TEST", history)
	require.Error(t, err)
}

func TestApplyBuySellArithmetic(t *testing.T) {
	bar := models.Bar{Symbol: "TEST", Close: 50, Timestamp: time.Now()}
	account := strategy.Account{Balance: 1000}

	account, record := applyBuy(account, strategy.Decision{Action: strategy.ActionBuy, Quantity: 4}, bar, 0.01)
	require.NotNil(t, record)
	assert.InDelta(t, 1000-4*50*1.01, account.Balance, 1e-9)
	assert.Equal(t, 4, account.Position)
	assert.Equal(t, 50.0, account.EntryPrice)

	sellBar := models.Bar{Symbol: "TEST", Close: 60, Timestamp: time.Now()}
	account, sellRecord := applySell(account, models.TradeActionSell, sellBar, 0.01, "exit")
	assert.InDelta(t, 1000-4*50*1.01+4*60*0.99, account.Balance, 1e-9)
	assert.Equal(t, 0, account.Position)
	require.NotNil(t, sellRecord.PnL)
	assert.InDelta(t, 40.0, *sellRecord.PnL, 1e-9)
}

func TestRunRecordsMetrics(t *testing.T) {
	buys := testutil.ToFloat64(metrics.SimulatedTradesTotal.WithLabelValues("BUY"))
	sells := testutil.ToFloat64(metrics.SimulatedTradesTotal.WithLabelValues("SELL"))
	runs := testutil.ToFloat64(metrics.BacktestRunsTotal)

	policy := &scriptedPolicy{decisions: []strategy.Decision{
		{Action: strategy.ActionBuy, Quantity: 10, Reason: "entry"},
		{Action: strategy.ActionHold},
		{Action: strategy.ActionSell, Reason: "exit"},
	}}
	engine, err := NewEngine(unitWindows(), policy, testLogger())
	require.NoError(t, err)

	_, err = engine.Run("TEST", historyFromCloses(100, 102, 101, 105, 103))
	require.NoError(t, err)

	assert.Equal(t, buys+1, testutil.ToFloat64(metrics.SimulatedTradesTotal.WithLabelValues("BUY")))
	assert.Equal(t, sells+1, testutil.ToFloat64(metrics.SimulatedTradesTotal.WithLabelValues("SELL")))
	assert.Equal(t, runs+1, testutil.ToFloat64(metrics.BacktestRunsTotal))
}

func TestMarkToMarket(t *testing.T) {
	flat := strategy.Account{Balance: 500}
	assert.InDelta(t, 500.0, markToMarket(flat, 123), 1e-9)

	long := strategy.Account{Balance: 500, Position: 3, EntryPrice: 100}
	assert.InDelta(t, 500+3*110.0, markToMarket(long, 110), 1e-9)
}
