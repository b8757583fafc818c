package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/trend-trader/internal/models"
)

// Provider defines the interface for fetching historical market data from
// external providers.
type Provider interface {
	// FetchBars retrieves daily bars for a symbol within the date range,
	// sorted ascending by timestamp with duplicates removed.
	FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)

	// Name returns the name of the data provider
	Name() string
}

// ProviderError represents errors from data provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNoData               = "no_data"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoData               = errors.New("no bars returned")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// normalizeBars sorts bars ascending by timestamp, drops duplicate
// timestamps (keeping the first occurrence), and validates the result.
// Providers call this before returning so downstream consumers can rely
// on a well-formed history.
func normalizeBars(provider, symbol string, bars []models.Bar) ([]models.Bar, error) {
	if len(bars) == 0 {
		return nil, NewProviderError(provider, ErrCodeNoData,
			fmt.Sprintf("no bars returned for %s", symbol), ErrNoData)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	deduped := bars[:0]
	var last time.Time
	for _, b := range bars {
		if !last.IsZero() && b.Timestamp.Equal(last) {
			continue
		}
		deduped = append(deduped, b)
		last = b.Timestamp
	}

	if err := models.ValidateHistory(deduped); err != nil {
		return nil, NewProviderError(provider, ErrCodeInvalidData,
			fmt.Sprintf("invalid bars for %s", symbol), err)
	}
	return deduped, nil
}
