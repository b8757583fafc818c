// Package metrics provides the centralized Prometheus metrics registry for
// the trading engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BacktestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs executed",
	})
	SimulatedTradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "simulated_trades_total",
		Help:      "Total number of simulated fills by action",
	}, []string{"action"})
	OptimizerTrialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "optimizer_trials_total",
		Help:      "Total number of optimizer trials evaluated",
	})
	DataFetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "data_fetch_errors_total",
		Help:      "Total number of market data fetch failures by provider",
	}, []string{"provider"})
	LiveOrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "live_orders_total",
		Help:      "Total number of live orders submitted by side",
	}, []string{"side"})
	LiveOrderErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trend_trader",
		Name:      "live_order_errors_total",
		Help:      "Total number of live order submission failures",
	})
)

// Gauge metrics
var (
	BestScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trend_trader",
		Name:      "optimizer_best_score",
		Help:      "Best average risk-adjusted score found so far",
	})
	LastRunReturnPct = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "trend_trader",
		Name:      "last_run_return_pct",
		Help:      "Total return percentage of the most recent backtest per symbol",
	}, []string{"symbol"})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trend_trader",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	LiveCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trend_trader",
		Name:      "live_cycle_duration_seconds",
		Help:      "Duration of live trading cycles in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(SimulatedTradesTotal)
		registry.MustRegister(OptimizerTrialsTotal)
		registry.MustRegister(DataFetchErrorsTotal)
		registry.MustRegister(LiveOrdersTotal)
		registry.MustRegister(LiveOrderErrorsTotal)

		registry.MustRegister(BestScore)
		registry.MustRegister(LastRunReturnPct)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(LiveCycleDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBacktestRun records one completed backtest run.
func RecordBacktestRun(durationSeconds float64) {
	BacktestRunsTotal.Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordSimulatedTrade records a simulated fill.
func RecordSimulatedTrade(action string) {
	SimulatedTradesTotal.WithLabelValues(action).Inc()
}

// RecordOptimizerTrial records one evaluated trial.
func RecordOptimizerTrial() {
	OptimizerTrialsTotal.Inc()
}

// RecordDataFetchError records a provider fetch failure.
func RecordDataFetchError(provider string) {
	DataFetchErrorsTotal.WithLabelValues(provider).Inc()
}

// RecordLiveOrder records a submitted live order.
func RecordLiveOrder(side string) {
	LiveOrdersTotal.WithLabelValues(side).Inc()
}

// RecordLiveOrderError records a failed live order submission.
func RecordLiveOrderError() {
	LiveOrderErrorsTotal.Inc()
}

// UpdateLastRunReturn updates the most recent per-symbol return gauge.
func UpdateLastRunReturn(symbol string, returnPct float64) {
	LastRunReturnPct.WithLabelValues(symbol).Set(returnPct)
}

// UpdateBestScore updates the optimizer best score gauge.
func UpdateBestScore(score float64) {
	BestScore.Set(score)
}
