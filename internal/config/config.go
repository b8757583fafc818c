// Package config provides configuration management for the trend-trader application.
package config

// Config represents the complete application configuration. Starting capital,
// cost rate, and the symbol basket are explicit configuration values handed
// to the engines at construction time; nothing reads them from globals.
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Trading   TradingConfig   `mapstructure:"trading" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" validate:"required"`
	Live      LiveConfig      `mapstructure:"live"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// TradingConfig represents the simulation and strategy parameters shared by
// the backtester and the live trader.
type TradingConfig struct {
	InitialBalance      float64  `mapstructure:"initial_balance" validate:"required,gt=0"`
	TransactionCostRate float64  `mapstructure:"transaction_cost_rate" validate:"gte=0,lte=0.1"`
	Symbols             []string `mapstructure:"symbols" validate:"required,min=1"`
	ShortSMA            int      `mapstructure:"short_sma" validate:"required,gt=0"`
	LongSMA             int      `mapstructure:"long_sma" validate:"required,gt=0"`
	ATRPeriod           int      `mapstructure:"atr_period" validate:"required,gt=0"`
	RiskPerTrade        float64  `mapstructure:"risk_per_trade" validate:"required,gt=0,lte=1"`
	MinATR              float64  `mapstructure:"min_atr" validate:"gte=0"`
}

// DataConfig represents market-data provider configuration.
type DataConfig struct {
	Provider        string           `mapstructure:"provider" validate:"required,oneof=alpaca stooq"`
	StartDate       string           `mapstructure:"start_date" validate:"required,dateformat"`
	EndDate         string           `mapstructure:"end_date" validate:"required,dateformat"`
	CacheTTLSeconds int              `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	Alpaca          AlpacaDataConfig `mapstructure:"alpaca"`
	Stooq           StooqConfig      `mapstructure:"stooq"`
}

// AlpacaDataConfig represents Alpaca market-data API configuration.
type AlpacaDataConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	DataURL   string `mapstructure:"data_url"`
	Feed      string `mapstructure:"feed"`
}

// StooqConfig represents the Stooq CSV endpoint configuration.
type StooqConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
}

// OptimizerConfig represents the parameter-search configuration.
type OptimizerConfig struct {
	Trials     int          `mapstructure:"trials" validate:"required,gt=0"`
	Workers    int          `mapstructure:"workers" validate:"gte=0"`
	OutputPath string       `mapstructure:"output_path" validate:"required"`
	Bounds     BoundsConfig `mapstructure:"bounds" validate:"required"`
}

// BoundsConfig bounds each searched dimension. The short<long window
// ordering is intentionally not enforced here; the objective scores such
// vectors on their merits exactly like any other.
type BoundsConfig struct {
	ShortSMAMin     int     `mapstructure:"short_sma_min" validate:"required,gt=0"`
	ShortSMAMax     int     `mapstructure:"short_sma_max" validate:"required,gt=0"`
	LongSMAMin      int     `mapstructure:"long_sma_min" validate:"required,gt=0"`
	LongSMAMax      int     `mapstructure:"long_sma_max" validate:"required,gt=0"`
	ATRPeriodMin    int     `mapstructure:"atr_period_min" validate:"required,gt=0"`
	ATRPeriodMax    int     `mapstructure:"atr_period_max" validate:"required,gt=0"`
	RiskPerTradeMin float64 `mapstructure:"risk_per_trade_min" validate:"required,gt=0"`
	RiskPerTradeMax float64 `mapstructure:"risk_per_trade_max" validate:"required,gt=0,lte=1"`
}

// LiveConfig represents the live trading boundary configuration.
type LiveConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`
	InvokeToken  string `mapstructure:"invoke_token"`
	Port         int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Schedule     string `mapstructure:"schedule"`
	LookbackDays int    `mapstructure:"lookback_days" validate:"gte=0"`
}

// DatabaseConfig represents the optional Postgres result sink.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
