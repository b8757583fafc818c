package backtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []*Result {
	curve := EquityCurve{
		{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 10000},
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 10150},
	}
	return []*Result{
		{
			Symbol:      "AAPL",
			EquityCurve: curve,
			Summary: Summary{
				TotalReturnPct: 1.5,
				MaxDrawdownPct: 3.2,
				SharpeRatio:    1.1,
				FinalBalance:   10150,
				TotalTrades:    4,
			},
		},
		{
			Symbol:      "MSFT",
			EquityCurve: curve,
			Summary: Summary{
				TotalReturnPct: -0.8,
				MaxDrawdownPct: 5.0,
				SharpeRatio:    -0.3,
				FinalBalance:   9920,
				TotalTrades:    6,
			},
		},
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	report := GenerateConsoleReport(sampleResults())

	assert.Contains(t, report, "Backtest Summary")
	assert.Contains(t, report, "AAPL")
	assert.Contains(t, report, "MSFT")
	assert.Contains(t, report, "1.50%")
}

func TestGenerateCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, GenerateCSVExport(sampleResults(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "symbol,total_return_pct,max_drawdown_pct,sharpe_ratio,total_trades,final_balance", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "AAPL,1.5000"))
}

func TestWriteEquityCurves(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteEquityCurves(sampleResults(), dir))

	data, err := os.ReadFile(filepath.Join(dir, "equity_aapl.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,value\n"))
	assert.Contains(t, string(data), "10150.000000")
}
