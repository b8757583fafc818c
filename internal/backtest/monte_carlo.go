package backtest

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yourusername/trend-trader/internal/models"
)

// MonteCarloConfig configures the trade-resampling simulation.
type MonteCarloConfig struct {
	Iterations     int
	InitialBalance float64
	Seed           int64
}

// MonteCarloResult summarizes the distribution of outcomes obtained by
// resampling the realized per-trade P&L of a completed backtest run.
type MonteCarloResult struct {
	Iterations          int     `json:"iterations"`
	MeanReturn          float64 `json:"mean_return"`
	StdReturn           float64 `json:"std_return"`
	VaR95               float64 `json:"var_95"`
	ProbabilityOfProfit float64 `json:"probability_of_profit"`
	ProbabilityOfRuin   float64 `json:"probability_of_ruin"`
}

// RunMonteCarlo bootstrap-resamples the closing trades of a run to estimate
// how sensitive the outcome is to trade ordering and selection. Only closing
// fills carry realized P&L, so entry records are ignored.
func RunMonteCarlo(trades []models.TradeRecord, cfg MonteCarloConfig) MonteCarloResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	pnls := make([]float64, 0, len(trades))
	for _, trade := range trades {
		if trade.IsClosing() && trade.PnL != nil {
			pnls = append(pnls, *trade.PnL)
		}
	}
	if len(pnls) == 0 {
		return MonteCarloResult{Iterations: cfg.Iterations}
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		balance := cfg.InitialBalance
		for range pnls {
			balance += pnls[rng.Intn(len(pnls))]
			if balance <= 0 {
				balance = 0
				break
			}
		}
		distribution[i] = balance
	}

	mean, std := meanStd(distribution)
	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanReturn:          (mean - cfg.InitialBalance) / cfg.InitialBalance,
		StdReturn:           std / cfg.InitialBalance,
		VaR95:               (percentile(distribution, 0.05) - cfg.InitialBalance) / cfg.InitialBalance,
		ProbabilityOfProfit: probabilityAbove(distribution, cfg.InitialBalance),
		ProbabilityOfRuin:   probabilityAtOrBelow(distribution, 0),
	}
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}
