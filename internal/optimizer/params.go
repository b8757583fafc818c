// Package optimizer searches the strategy parameter space with a TPE study,
// scoring each candidate by its mean risk-adjusted return across a basket of
// symbols.
package optimizer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Parameter names as they appear in trial suggestions and the persisted
// best-params file.
const (
	paramShortSMA     = "short_sma"
	paramLongSMA      = "long_sma"
	paramATRPeriod    = "atr_period"
	paramRiskPerTrade = "risk_per_trade"
)

// Params is one candidate parameter vector.
type Params struct {
	ShortSMA     int     `json:"short_sma"`
	LongSMA      int     `json:"long_sma"`
	ATRPeriod    int     `json:"atr_period"`
	RiskPerTrade float64 `json:"risk_per_trade"`
}

// paramsFromStudy converts the untyped best-params map returned by the study
// into a Params value. Integer dimensions come back as float64 from the
// storage layer, so both representations are accepted.
func paramsFromStudy(raw map[string]interface{}) (Params, error) {
	shortSMA, err := intParam(raw, paramShortSMA)
	if err != nil {
		return Params{}, err
	}
	longSMA, err := intParam(raw, paramLongSMA)
	if err != nil {
		return Params{}, err
	}
	atrPeriod, err := intParam(raw, paramATRPeriod)
	if err != nil {
		return Params{}, err
	}
	risk, err := floatParam(raw, paramRiskPerTrade)
	if err != nil {
		return Params{}, err
	}

	return Params{
		ShortSMA:     shortSMA,
		LongSMA:      longSMA,
		ATRPeriod:    atrPeriod,
		RiskPerTrade: risk,
	}, nil
}

func intParam(raw map[string]interface{}, name string) (int, error) {
	v, ok := raw[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q in study result", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(math.Round(n)), nil
	default:
		return 0, fmt.Errorf("parameter %q has unexpected type %T", name, v)
	}
}

func floatParam(raw map[string]interface{}, name string) (float64, error) {
	v, ok := raw[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q in study result", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("parameter %q has unexpected type %T", name, v)
	}
}

// Save writes the parameters as flat JSON, creating parent directories as
// needed. The file is the hand-off point between the search and the
// backtest/live commands.
func (p Params) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write parameters file: %w", err)
	}
	return nil
}

// LoadParams reads a previously saved parameter file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read parameters file: %w", err)
	}

	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return p, nil
}
