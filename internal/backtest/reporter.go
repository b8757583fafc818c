package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats the per-symbol basket results for terminal
// output.
func GenerateConsoleReport(results []*Result) string {
	var builder strings.Builder
	builder.WriteString("Backtest Summary\n")
	builder.WriteString("================\n")
	for _, result := range results {
		builder.WriteString(fmt.Sprintf("%-8s return %8.2f%%  max drawdown %6.2f%%  sharpe %8.2f  trades %3d  final balance %.2f\n",
			result.Symbol,
			result.Summary.TotalReturnPct,
			result.Summary.MaxDrawdownPct,
			result.Summary.SharpeRatio,
			result.Summary.TotalTrades,
			result.Summary.FinalBalance,
		))
	}
	return builder.String()
}

// GenerateCSVExport exports per-symbol metrics for spreadsheets.
func GenerateCSVExport(results []*Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("symbol,total_return_pct,max_drawdown_pct,sharpe_ratio,total_trades,final_balance\n")
	for _, result := range results {
		builder.WriteString(fmt.Sprintf("%s,%.4f,%.4f,%.4f,%d,%.2f\n",
			result.Symbol,
			result.Summary.TotalReturnPct,
			result.Summary.MaxDrawdownPct,
			result.Summary.SharpeRatio,
			result.Summary.TotalTrades,
			result.Summary.FinalBalance,
		))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

// WriteEquityCurves writes each symbol's equity curve CSV next to the
// summary export.
func WriteEquityCurves(results []*Result, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	for _, result := range results {
		path := filepath.Join(outputDir, fmt.Sprintf("equity_%s.csv", strings.ToLower(result.Symbol)))
		if err := os.WriteFile(path, []byte(result.EquityCurve.ToCSV()), 0o644); err != nil {
			return fmt.Errorf("writing equity curve for %s: %w", result.Symbol, err)
		}
	}
	return nil
}
