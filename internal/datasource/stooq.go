package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
)

const (
	stooqProviderName  = "stooq"
	defaultStooqURL    = "https://stooq.com/q/d/l/"
	stooqDateFormat    = "20060102"
	stooqCSVDateLayout = "2006-01-02"
)

// StooqProvider fetches daily bars from the Stooq CSV endpoint. Stooq
// requires no credentials, which makes it the fallback provider for
// offline-friendly backtests.
type StooqProvider struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Logger
}

// NewStooqProvider creates a new Stooq daily bar provider.
func NewStooqProvider(cfg config.StooqConfig, logger *logrus.Logger) *StooqProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultStooqURL
	}

	httpCfg := DefaultHTTPClientConfig()
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.MaxRetries
	}

	return &StooqProvider{
		httpClient: NewRateLimitedHTTPClient(httpCfg, log.New(io.Discard, "", 0)),
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Name returns the name of the data provider
func (p *StooqProvider) Name() string {
	return stooqProviderName
}

// FetchBars retrieves daily bars for the symbol from Stooq. US equities are
// suffixed with ".us" per Stooq convention.
func (p *StooqProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, NewProviderError(stooqProviderName, ErrCodeInvalidData, "symbol is empty", nil)
	}

	reqURL := fmt.Sprintf("%s?s=%s&d1=%s&d2=%s&i=d",
		p.baseURL,
		url.QueryEscape(stooqSymbol(symbol)),
		start.Format(stooqDateFormat),
		end.Format(stooqDateFormat),
	)

	p.logger.WithFields(logrus.Fields{
		"provider": stooqProviderName,
		"symbol":   symbol,
		"start":    start.Format(stooqCSVDateLayout),
		"end":      end.Format(stooqCSVDateLayout),
	}).Debug("Fetching daily bars")

	resp, err := p.httpClient.Get(ctx, reqURL)
	if err != nil {
		metrics.RecordDataFetchError(stooqProviderName)
		return nil, NewProviderError(stooqProviderName, ErrCodeNetworkError,
			fmt.Sprintf("request failed for %s", symbol), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		metrics.RecordDataFetchError(stooqProviderName)
		return nil, NewProviderError(stooqProviderName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, symbol), nil)
	}

	bars, err := parseStooqCSV(symbol, resp.Body)
	if err != nil {
		metrics.RecordDataFetchError(stooqProviderName)
		return nil, err
	}

	normalized, err := normalizeBars(stooqProviderName, symbol, bars)
	if err != nil {
		metrics.RecordDataFetchError(stooqProviderName)
		return nil, err
	}
	return normalized, nil
}

// Close releases the underlying HTTP client resources.
func (p *StooqProvider) Close() error {
	return p.httpClient.Close()
}

// stooqSymbol maps a plain US ticker to Stooq's lowercase ".us" form.
func stooqSymbol(symbol string) string {
	lower := strings.ToLower(symbol)
	if strings.Contains(lower, ".") {
		return lower
	}
	return lower + ".us"
}

// parseStooqCSV parses the Date,Open,High,Low,Close,Volume CSV payload.
func parseStooqCSV(symbol string, r io.Reader) ([]models.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewProviderError(stooqProviderName, ErrCodeInvalidData,
			fmt.Sprintf("malformed CSV for %s", symbol), err)
	}
	if len(records) < 2 {
		return nil, NewProviderError(stooqProviderName, ErrCodeNoData,
			fmt.Sprintf("no bars returned for %s", symbol), ErrNoData)
	}

	bars := make([]models.Bar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		ts, err := time.Parse(stooqCSVDateLayout, rec[0])
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		closePx, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		bars = append(bars, models.Bar{
			Symbol:    symbol,
			Timestamp: ts.UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
		})
	}

	return bars, nil
}
