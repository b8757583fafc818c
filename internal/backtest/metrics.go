package backtest

import (
	"math"
)

// SentinelScore is the fixed "very poor" Sharpe substitute used when the
// real ratio is undefined (flat or single-point equity curve). It keeps
// zero-variance parameter regions rankable without NaNs.
const SentinelScore = -999.0

// tradingDaysPerYear annualizes the Sharpe-like ratio from daily returns.
const tradingDaysPerYear = 252

// Summary holds the performance statistics derived from one completed run.
type Summary struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	FinalBalance   float64 `json:"final_balance"`
	TotalTrades    int     `json:"total_trades"`
}

// Evaluate derives summary statistics from a completed equity curve.
func Evaluate(curve EquityCurve, initialBalance float64) Summary {
	summary := Summary{SharpeRatio: SentinelScore}
	if len(curve) == 0 {
		return summary
	}

	final := curve[len(curve)-1].Value
	if initialBalance > 0 {
		summary.TotalReturnPct = (final - initialBalance) / initialBalance * 100
	}
	summary.MaxDrawdownPct = maxDrawdownPct(curve)
	summary.SharpeRatio = sharpeRatio(curve.Returns())
	return summary
}

// maxDrawdownPct finds the largest absolute decline from a running peak and
// normalizes it against the single highest peak reached over the whole
// curve, not against each local peak.
func maxDrawdownPct(curve EquityCurve) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, point := range curve {
		if point.Value > peak {
			peak = point.Value
		}
		if dd := peak - point.Value; dd > maxDD {
			maxDD = dd
		}
	}
	if peak == 0 {
		return 0
	}
	return maxDD / peak * 100
}

// sharpeRatio is mean(returns)/stdev(returns)*sqrt(252), with the sentinel
// substituted when the standard deviation is exactly zero.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return SentinelScore
	}
	mean := average(returns)
	std := stddev(returns)
	if std == 0 {
		return SentinelScore
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
