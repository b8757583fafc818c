// Package indicator computes derived series (moving averages, true range,
// average true range) from raw OHLC bars. Computation is a pure function of
// the input history and window sizes.
package indicator

import (
	"fmt"
	"math"

	"github.com/yourusername/trend-trader/internal/models"
)

// Params holds the indicator window sizes.
type Params struct {
	ShortWindow int `json:"short_sma"`
	LongWindow  int `json:"long_sma"`
	ATRWindow   int `json:"atr_period"`
}

// Validate checks that every window size is usable.
func (p Params) Validate() error {
	if p.ShortWindow < 1 {
		return fmt.Errorf("short window must be >= 1, got %d", p.ShortWindow)
	}
	if p.LongWindow < 1 {
		return fmt.Errorf("long window must be >= 1, got %d", p.LongWindow)
	}
	if p.ATRWindow < 1 {
		return fmt.Errorf("ATR window must be >= 1, got %d", p.ATRWindow)
	}
	return nil
}

// Snapshot attaches per-bar derived values to a bar. A Snapshot only exists
// for bars where every indicator has a full trailing window.
type Snapshot struct {
	Bar       models.Bar
	SMAShort  float64
	SMALong   float64
	TrueRange float64
	ATR       float64
}

// Compute derives the augmented series for a price history. Bars lacking a
// full trailing window for any indicator are dropped entirely, so callers
// never see partial data. True range is defined from the second bar onward,
// which puts the first complete snapshot at index max(longWindow-1, atrWindow).
func Compute(history []models.Bar, p Params) ([]Snapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	warmup := p.LongWindow - 1
	if p.ATRWindow > warmup {
		warmup = p.ATRWindow
	}
	if len(history) <= warmup {
		return nil, fmt.Errorf("insufficient history: %d bars, need at least %d", len(history), warmup+1)
	}

	trueRanges := make([]float64, len(history))
	for i := 1; i < len(history); i++ {
		trueRanges[i] = trueRange(history[i], history[i-1].Close)
	}

	snapshots := make([]Snapshot, 0, len(history)-warmup)
	for i := warmup; i < len(history); i++ {
		snapshots = append(snapshots, Snapshot{
			Bar:       history[i],
			SMAShort:  smaClose(history, i, p.ShortWindow),
			SMALong:   smaClose(history, i, p.LongWindow),
			TrueRange: trueRanges[i],
			ATR:       mean(trueRanges[i-p.ATRWindow+1 : i+1]),
		})
	}
	return snapshots, nil
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(bar models.Bar, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if hc := math.Abs(bar.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(bar.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

// smaClose averages close prices over the trailing window ending at index i.
func smaClose(history []models.Bar, i, window int) float64 {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += history[j].Close
	}
	return sum / float64(window)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
