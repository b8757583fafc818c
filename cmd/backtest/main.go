// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/backtest"
	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/database"
	"github.com/yourusername/trend-trader/internal/datasource"
	"github.com/yourusername/trend-trader/internal/logger"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/optimizer"
	"github.com/yourusername/trend-trader/internal/repository"
	"github.com/yourusername/trend-trader/internal/strategy"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		paramsPath = flag.String("params", "", "Path to optimized parameters JSON (overrides config values)")
		symbols    = flag.String("symbols", "", "Comma-separated symbol override")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		output     = flag.String("output", "./output/backtest_results.csv", "Output path for the CSV summary")
		equityDir  = flag.String("equity-dir", "", "Directory for per-symbol equity curve CSV files")
		monteCarlo = flag.Bool("monte-carlo", false, "Run a Monte Carlo resample of the trade history")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfigWithSecrets(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	applyOverrides(cfg, *symbols, *startDate, *endDate, log)
	applyBestParams(cfg, *paramsPath, log)

	btConfig, err := backtest.FromConfig(&cfg.Trading)
	if err != nil {
		log.Fatalf("Invalid backtest config: %v", err)
	}

	policy := strategy.NewSMACross(cfg.Trading.RiskPerTrade)
	policy.MinATR = cfg.Trading.MinATR

	engine, err := backtest.NewEngine(btConfig, policy, log)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	histories := fetchHistories(ctx, cfg, log)

	results := make([]*backtest.Result, 0, len(cfg.Trading.Symbols))
	for _, symbol := range cfg.Trading.Symbols {
		history, ok := histories[symbol]
		if !ok {
			continue
		}
		result, err := engine.Run(symbol, history)
		if err != nil {
			log.WithFields(logrus.Fields{"symbol": symbol, "error": err}).Error("Backtest failed")
			continue
		}
		metrics.UpdateLastRunReturn(symbol, result.Summary.TotalReturnPct)
		results = append(results, result)
	}
	if len(results) == 0 {
		log.Fatal("No symbol produced a backtest result")
	}

	fmt.Println(backtest.GenerateConsoleReport(results))

	if *output != "" {
		if err := backtest.GenerateCSVExport(results, *output); err != nil {
			log.Fatalf("Failed to write CSV summary: %v", err)
		}
		log.WithField("path", *output).Info("Wrote CSV summary")
	}
	if *equityDir != "" {
		if err := backtest.WriteEquityCurves(results, *equityDir); err != nil {
			log.Fatalf("Failed to write equity curves: %v", err)
		}
	}

	if *monteCarlo {
		runMonteCarlo(results, btConfig.InitialBalance, log)
	}

	if cfg.Database.Enabled {
		persistResults(ctx, cfg, results, log)
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	bootstrap := logrus.New()

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		bootstrap.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			bootstrap.Fatal("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			bootstrap.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		bootstrap.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func applyOverrides(cfg *config.Config, symbols, startDate, endDate string, log *logrus.Logger) {
	if symbols != "" {
		parts := strings.Split(symbols, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		cfg.Trading.Symbols = cleaned
	}
	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		cfg.Data.StartDate = startDate
	}
	if endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}
		cfg.Data.EndDate = endDate
	}
}

// applyBestParams overlays a saved optimizer result onto the trading config.
func applyBestParams(cfg *config.Config, paramsPath string, log *logrus.Logger) {
	if paramsPath == "" {
		return
	}
	params, err := optimizer.LoadParams(paramsPath)
	if err != nil {
		log.Fatalf("Failed to load parameters: %v", err)
	}
	cfg.Trading.ShortSMA = params.ShortSMA
	cfg.Trading.LongSMA = params.LongSMA
	cfg.Trading.ATRPeriod = params.ATRPeriod
	cfg.Trading.RiskPerTrade = params.RiskPerTrade
	log.WithFields(logrus.Fields{
		"short_sma":      params.ShortSMA,
		"long_sma":       params.LongSMA,
		"atr_period":     params.ATRPeriod,
		"risk_per_trade": params.RiskPerTrade,
	}).Info("Loaded optimized parameters")
}

func fetchHistories(ctx context.Context, cfg *config.Config, log *logrus.Logger) map[string][]models.Bar {
	provider, err := datasource.NewProvider(&cfg.Data, log)
	if err != nil {
		log.Fatalf("Failed to create data provider: %v", err)
	}

	start, _ := time.Parse("2006-01-02", cfg.Data.StartDate)
	end, _ := time.Parse("2006-01-02", cfg.Data.EndDate)

	histories := make(map[string][]models.Bar, len(cfg.Trading.Symbols))
	for _, symbol := range cfg.Trading.Symbols {
		bars, err := provider.FetchBars(ctx, symbol, start, end)
		if err != nil {
			log.WithFields(logrus.Fields{"symbol": symbol, "error": err}).Error("Fetch failed, skipping symbol")
			continue
		}
		histories[symbol] = bars
	}
	if len(histories) == 0 {
		log.Fatal("No symbol history could be fetched")
	}
	return histories
}

func runMonteCarlo(results []*backtest.Result, initialBalance float64, log *logrus.Logger) {
	for _, result := range results {
		mc := backtest.RunMonteCarlo(result.Trades, backtest.MonteCarloConfig{
			Iterations:     1000,
			InitialBalance: initialBalance,
		})
		log.WithFields(logrus.Fields{
			"symbol":         result.Symbol,
			"mean_return":    mc.MeanReturn,
			"var_95":         mc.VaR95,
			"prob_of_profit": mc.ProbabilityOfProfit,
			"prob_of_ruin":   mc.ProbabilityOfRuin,
			"iterations":     mc.Iterations,
		}).Info("Monte Carlo completed")
	}
}

func persistResults(ctx context.Context, cfg *config.Config, results []*backtest.Result, log *logrus.Logger) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}

	for _, result := range results {
		run := result.ToRun(&cfg.Trading)
		if err := repos.Runs.Create(ctx, &run); err != nil {
			log.WithFields(logrus.Fields{"symbol": result.Symbol, "error": err}).Error("Failed to persist run")
			continue
		}
		if err := repos.TradeLogs.InsertBatch(ctx, run.ID, result.Trades); err != nil {
			log.WithFields(logrus.Fields{"symbol": result.Symbol, "error": err}).Error("Failed to persist trades")
		}
	}
	log.WithField("runs", len(results)).Info("Persisted backtest results")
}
