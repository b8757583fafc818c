package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
)

const alpacaProviderName = "alpaca"

// AlpacaProvider fetches daily bars from the Alpaca market data API.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   marketdata.Feed
	logger *logrus.Logger
}

// NewAlpacaProvider creates a new Alpaca market data provider.
func NewAlpacaProvider(cfg config.AlpacaDataConfig, logger *logrus.Logger) (*AlpacaProvider, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, NewProviderError(alpacaProviderName, ErrCodeAuthenticationFailed,
			"api key and secret are required", ErrAuthenticationFailed)
	}

	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.DataURL,
	})

	feed := marketdata.IEX
	if cfg.Feed != "" {
		feed = marketdata.Feed(cfg.Feed)
	}

	return &AlpacaProvider{
		client: client,
		feed:   feed,
		logger: logger,
	}, nil
}

// Name returns the name of the data provider
func (p *AlpacaProvider) Name() string {
	return alpacaProviderName
}

// FetchBars retrieves daily bars for the symbol from Alpaca.
func (p *AlpacaProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, NewProviderError(alpacaProviderName, ErrCodeInvalidData, "symbol is empty", nil)
	}

	p.logger.WithFields(logrus.Fields{
		"provider": alpacaProviderName,
		"symbol":   symbol,
		"start":    start.Format("2006-01-02"),
		"end":      end.Format("2006-01-02"),
	}).Debug("Fetching daily bars")

	raw, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      p.feed,
	})
	if err != nil {
		metrics.RecordDataFetchError(alpacaProviderName)
		return nil, NewProviderError(alpacaProviderName, ErrCodeServerError,
			fmt.Sprintf("failed to fetch bars for %s", symbol), err)
	}

	bars := make([]models.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, models.Bar{
			Symbol:    symbol,
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
		})
	}

	normalized, err := normalizeBars(alpacaProviderName, symbol, bars)
	if err != nil {
		metrics.RecordDataFetchError(alpacaProviderName)
		return nil, err
	}
	return normalized, nil
}
