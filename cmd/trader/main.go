// Package main provides the entry point for the live trading service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/datasource"
	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/live"
	"github.com/yourusername/trend-trader/internal/logger"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/optimizer"
	"github.com/yourusername/trend-trader/internal/scheduler"
	"github.com/yourusername/trend-trader/internal/strategy"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		paramsPath = flag.String("params", "", "Path to optimized parameters JSON (overrides config values)")
		once       = flag.Bool("once", false, "Run a single trading cycle and exit")
	)
	flag.Parse()

	bootstrap := logrus.New()

	cfg, err := config.LoadWithDefaults(*configPath)
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

	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	applyBestParams(cfg, *paramsPath, log)

	provider, err := datasource.NewProvider(&cfg.Data, log)
	if err != nil {
		log.Fatalf("Failed to create data provider: %v", err)
	}

	policy := strategy.NewSMACross(cfg.Trading.RiskPerTrade)
	policy.MinATR = cfg.Trading.MinATR
	params := indicator.Params{
		ShortWindow: cfg.Trading.ShortSMA,
		LongWindow:  cfg.Trading.LongSMA,
		ATRWindow:   cfg.Trading.ATRPeriod,
	}

	trader, err := live.NewTrader(cfg, provider, policy, params, log)
	if err != nil {
		log.Fatalf("Failed to create trader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		report := trader.RunCycle(ctx)
		if len(report.Errors) > 0 {
			os.Exit(1)
		}
		return
	}

	server := live.NewServer(trader, live.ServerConfig{
		Port:        cfg.Live.Port,
		InvokeToken: cfg.Live.InvokeToken,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start trigger server: %v", err)
	}
	server.SetReady(true)

	var sched *scheduler.Scheduler
	if cfg.Live.Schedule != "" {
		sched = scheduler.NewScheduler(trader, log)
		if err := sched.ScheduleCycles(cfg.Live.Schedule); err != nil {
			log.Fatalf("Failed to schedule cycles: %v", err)
		}
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	log.WithFields(logrus.Fields{
		"symbols":  cfg.Trading.Symbols,
		"schedule": cfg.Live.Schedule,
		"port":     cfg.Live.Port,
	}).Info("Live trading service started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.WithError(err).Warn("Scheduler stop failed")
		}
	}
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
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
