// Package config provides configuration management for the trend-trader application.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions.
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("dateformat", validateDateFormat)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration.
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules.
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateDateFormat(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validateCrossField performs validations spanning multiple fields.
func validateCrossField(cfg *Config) error {
	start, err := time.Parse("2006-01-02", cfg.Data.StartDate)
	if err == nil {
		end, endErr := time.Parse("2006-01-02", cfg.Data.EndDate)
		if endErr == nil && !start.Before(end) {
			return fmt.Errorf("data.start_date must be before data.end_date")
		}
	}

	b := cfg.Optimizer.Bounds
	if b.ShortSMAMin > b.ShortSMAMax {
		return fmt.Errorf("optimizer.bounds: short_sma_min exceeds short_sma_max")
	}
	if b.LongSMAMin > b.LongSMAMax {
		return fmt.Errorf("optimizer.bounds: long_sma_min exceeds long_sma_max")
	}
	if b.ATRPeriodMin > b.ATRPeriodMax {
		return fmt.Errorf("optimizer.bounds: atr_period_min exceeds atr_period_max")
	}
	if b.RiskPerTradeMin > b.RiskPerTradeMax {
		return fmt.Errorf("optimizer.bounds: risk_per_trade_min exceeds risk_per_trade_max")
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database is enabled but host/name/user are incomplete")
		}
	}

	if cfg.Live.Enabled {
		if cfg.Live.APIKey == "" || cfg.Live.APISecret == "" {
			return fmt.Errorf("live trading is enabled but broker credentials are missing")
		}
		if cfg.Live.InvokeToken == "" {
			return fmt.Errorf("live trading is enabled but invoke_token is not set")
		}
	}

	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return fmt.Errorf("config validation failed on %s (%s=%v), and %d more issue(s)",
		first.Namespace(), first.Tag(), first.Value(), len(errs)-1)
}
