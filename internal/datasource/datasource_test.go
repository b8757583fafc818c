package datasource

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return ts
}

func TestNormalizeBarsSortsAndDeduplicates(t *testing.T) {
	bars := []models.Bar{
		{Symbol: "AAPL", Timestamp: day(t, "2024-01-03"), Open: 11, High: 12, Low: 10, Close: 11},
		{Symbol: "AAPL", Timestamp: day(t, "2024-01-02"), Open: 10, High: 11, Low: 9, Close: 10},
		{Symbol: "AAPL", Timestamp: day(t, "2024-01-03"), Open: 99, High: 100, Low: 98, Close: 99},
	}

	normalized, err := normalizeBars("test", "AAPL", bars)
	require.NoError(t, err)
	require.Len(t, normalized, 2)
	assert.True(t, normalized[0].Timestamp.Before(normalized[1].Timestamp))
	assert.Equal(t, 11.0, normalized[1].Close, "first occurrence wins on duplicate timestamps")
}

func TestNormalizeBarsEmptyIsError(t *testing.T) {
	_, err := normalizeBars("test", "AAPL", nil)
	require.Error(t, err)

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeNoData, provErr.Code)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseStooqCSV(t *testing.T) {
	payload := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-02,100.0,102.0,99.0,101.0,1000\n" +
		"2024-01-03,101.0,103.0,100.0,102.5,1200\n"

	bars, err := parseStooqCSV("AAPL", strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 102.5, bars[1].Close)
	assert.Equal(t, day(t, "2024-01-02").UTC(), bars[0].Timestamp)
}

func TestParseStooqCSVSkipsMalformedRows(t *testing.T) {
	payload := "Date,Open,High,Low,Close,Volume\n" +
		"not-a-date,100.0,102.0,99.0,101.0,1000\n" +
		"2024-01-03,101.0,bad,100.0,102.5,1200\n" +
		"2024-01-04,102.0,104.0,101.0,103.0,900\n"

	bars, err := parseStooqCSV("AAPL", strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 103.0, bars[0].Close)
}

func TestParseStooqCSVHeaderOnly(t *testing.T) {
	_, err := parseStooqCSV("AAPL", strings.NewReader("Date,Open,High,Low,Close,Volume\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStooqSymbolMapping(t *testing.T) {
	assert.Equal(t, "aapl.us", stooqSymbol("AAPL"))
	assert.Equal(t, "spy.us", stooqSymbol("spy"))
	assert.Equal(t, "msft.us", stooqSymbol("msft.us"))
}

type stubProvider struct {
	calls int
	bars  []models.Bar
	err   error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	s.calls++
	return s.bars, s.err
}

func TestCachedProviderCachesResults(t *testing.T) {
	stub := &stubProvider{bars: []models.Bar{
		{Symbol: "AAPL", Timestamp: day(t, "2024-01-02"), Open: 10, High: 11, Low: 9, Close: 10},
	}}
	cached := NewCachedProvider(stub, time.Minute, testLogger())

	start, end := day(t, "2024-01-01"), day(t, "2024-02-01")

	first, err := cached.FetchBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	second, err := cached.FetchBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls, "second fetch should be served from cache")

	// A different range misses the cache.
	_, err = cached.FetchBars(context.Background(), "AAPL", start, day(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	stub := &stubProvider{err: ErrNoData}
	cached := NewCachedProvider(stub, time.Minute, testLogger())

	_, err := cached.FetchBars(context.Background(), "AAPL", day(t, "2024-01-01"), day(t, "2024-02-01"))
	require.Error(t, err)
	_, err = cached.FetchBars(context.Background(), "AAPL", day(t, "2024-01-01"), day(t, "2024-02-01"))
	require.Error(t, err)

	assert.Equal(t, 2, stub.calls)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(&config.DataConfig{Provider: "bloomberg"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown data provider")
}

func TestNewProviderStooqWithCache(t *testing.T) {
	cfg := &config.DataConfig{
		Provider:        "stooq",
		CacheTTLSeconds: 60,
	}
	provider, err := NewProvider(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "stooq", provider.Name())
	_, ok := provider.(*CachedProvider)
	assert.True(t, ok)
}

func TestNewProviderAlpacaRequiresCredentials(t *testing.T) {
	_, err := NewProvider(&config.DataConfig{Provider: "alpaca"}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
