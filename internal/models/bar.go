// Package models defines the core domain types shared across the trading engine.
package models

import (
	"fmt"
	"time"
)

// Bar represents one daily OHLC price record for a single symbol.
// Bars are immutable once produced by a data provider.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Validate checks the internal consistency of a single bar.
func (b Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return fmt.Errorf("bar has zero timestamp")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("bar at %s has non-positive price", b.Timestamp.Format("2006-01-02"))
	}
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return fmt.Errorf("bar at %s: high %.4f below open/close/low", b.Timestamp.Format("2006-01-02"), b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("bar at %s: low %.4f above open/close", b.Timestamp.Format("2006-01-02"), b.Low)
	}
	return nil
}

// ValidateHistory checks that a price history is sorted ascending by
// timestamp, free of duplicate timestamps, and that every bar is
// internally consistent.
func ValidateHistory(bars []Bar) error {
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		if !bars[i-1].Timestamp.Before(bar.Timestamp) {
			return fmt.Errorf("history not strictly ascending at index %d (%s >= %s)",
				i, bars[i-1].Timestamp.Format(time.RFC3339), bar.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
