package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trend-trader/internal/backtest"
	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/database"
	"github.com/yourusername/trend-trader/internal/datasource"
	"github.com/yourusername/trend-trader/internal/logger"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/optimizer"
	"github.com/yourusername/trend-trader/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	trials     int
	outputPath string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&trials, "trials", 0, "Override the number of search trials")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "Override the best-params output path")
}

var rootCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search strategy parameters with a TPE study",
	Long:  `Runs a TPE parameter search over the configured symbol basket, scoring each candidate by mean Sharpe ratio, and persists the best parameter vector.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runSearch()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if trials > 0 {
		cfg.Optimizer.Trials = trials
	}
	if outputPath != "" {
		cfg.Optimizer.OutputPath = outputPath
	}
	return nil
}

func runSearch() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Warn("Interrupt received, stopping search")
		cancel()
	}()

	histories := fetchHistories(ctx)

	base, err := backtest.FromConfig(&cfg.Trading)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid trading config")
	}

	opt, err := optimizer.NewOptimizer(cfg.Optimizer, base, cfg.Trading.MinATR, histories, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create optimizer")
	}

	started := time.Now()
	result, err := opt.Optimize(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Parameter search failed")
	}

	fmt.Println("\n=== Parameter Search Report ===")
	fmt.Printf("Trials: %d\n", result.Trials)
	fmt.Printf("Symbols: %d\n", len(histories))
	fmt.Printf("Best score (mean Sharpe): %.4f\n", result.BestScore)
	fmt.Printf("Short SMA: %d\n", result.BestParams.ShortSMA)
	fmt.Printf("Long SMA: %d\n", result.BestParams.LongSMA)
	fmt.Printf("ATR period: %d\n", result.BestParams.ATRPeriod)
	fmt.Printf("Risk per trade: %.4f\n", result.BestParams.RiskPerTrade)
	fmt.Printf("Saved to: %s\n", cfg.Optimizer.OutputPath)
	fmt.Printf("Duration: %v\n", time.Since(started).Round(time.Millisecond))

	if cfg.Database.Enabled {
		persistBestParams(ctx, result)
	}
}

func fetchHistories(ctx context.Context) map[string][]models.Bar {
	provider, err := datasource.NewProvider(&cfg.Data, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create data provider")
	}

	start, _ := time.Parse("2006-01-02", cfg.Data.StartDate)
	end, _ := time.Parse("2006-01-02", cfg.Data.EndDate)

	histories := make(map[string][]models.Bar, len(cfg.Trading.Symbols))
	for _, symbol := range cfg.Trading.Symbols {
		bars, err := provider.FetchBars(ctx, symbol, start, end)
		if err != nil {
			appLogger.WithFields(logrus.Fields{
				"symbol": symbol,
				"error":  err,
			}).Error("Fetch failed, symbol excluded from search")
			continue
		}
		histories[symbol] = bars
	}
	if len(histories) == 0 {
		appLogger.Fatal("No symbol history could be fetched")
	}
	return histories
}

func persistBestParams(ctx context.Context, result *optimizer.Result) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize database, skipping persistence")
		return
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLogger.WithError(err).Error("Failed to create repositories")
		return
	}

	record := &models.BestParams{
		ShortSMA:     result.BestParams.ShortSMA,
		LongSMA:      result.BestParams.LongSMA,
		ATRPeriod:    result.BestParams.ATRPeriod,
		RiskPerTrade: result.BestParams.RiskPerTrade,
		Score:        result.BestScore,
	}
	if err := repos.BestParams.Save(ctx, record); err != nil {
		appLogger.WithError(err).Error("Failed to persist best params")
		return
	}
	appLogger.WithField("id", record.ID).Info("Persisted best params")
}
