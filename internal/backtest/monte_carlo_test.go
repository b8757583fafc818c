package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trend-trader/internal/models"
)

func closingTrade(pnl float64) models.TradeRecord {
	return models.NewClosingTradeRecord("TEST", models.TradeActionSell, 100, 10, time.Now(), pnl, "exit")
}

func TestRunMonteCarloDeterministicWithSeed(t *testing.T) {
	trades := []models.TradeRecord{
		closingTrade(50),
		closingTrade(-20),
		closingTrade(35),
	}
	cfg := MonteCarloConfig{Iterations: 500, InitialBalance: 10000, Seed: 42}

	first := RunMonteCarlo(trades, cfg)
	second := RunMonteCarlo(trades, cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, 500, first.Iterations)
}

func TestRunMonteCarloAllWinning(t *testing.T) {
	trades := []models.TradeRecord{
		closingTrade(100),
		closingTrade(80),
	}
	result := RunMonteCarlo(trades, MonteCarloConfig{Iterations: 200, InitialBalance: 10000, Seed: 1})

	assert.Greater(t, result.MeanReturn, 0.0)
	assert.Equal(t, 1.0, result.ProbabilityOfProfit)
	assert.Equal(t, 0.0, result.ProbabilityOfRuin)
}

func TestRunMonteCarloIgnoresEntryRecords(t *testing.T) {
	trades := []models.TradeRecord{
		models.NewTradeRecord("TEST", models.TradeActionBuy, 100, 10, time.Now(), "entry"),
	}
	result := RunMonteCarlo(trades, MonteCarloConfig{Iterations: 100, InitialBalance: 10000, Seed: 1})

	// No closing trades means no distribution to build.
	assert.Equal(t, 100, result.Iterations)
	assert.Equal(t, 0.0, result.MeanReturn)
	assert.Equal(t, 0.0, result.ProbabilityOfProfit)
}

func TestRunMonteCarloRuinDetection(t *testing.T) {
	// A single catastrophic loss exceeding the balance guarantees ruin.
	trades := []models.TradeRecord{closingTrade(-20000)}
	result := RunMonteCarlo(trades, MonteCarloConfig{Iterations: 50, InitialBalance: 10000, Seed: 7})

	assert.Equal(t, 1.0, result.ProbabilityOfRuin)
	assert.Equal(t, 0.0, result.ProbabilityOfProfit)
}

func TestPercentileBounds(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 5.0, percentile(values, 1))
	require.Equal(t, 1.0, percentile(values, 0.05))
}
