package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/magicstocks/calendar/pkg/cache"
	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/httputil"
	"github.com/magicstocks/calendar/pkg/logger"
)

// Client fetches adjusted daily close history from the market data provider.
// Provider failures never surface to callers: History degrades to an empty
// series so one dead symbol cannot abort a training batch.
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	start      time.Time
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewClient creates a market data client. The history fetch path runs
// without retry; pacing is handled by the shared rate limiter on the
// HTTP client. cache may be nil.
func NewClient(cfg *config.Config, httpClient *httputil.Client, c cache.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.MarketData.BaseURL,
		start:      cfg.HistoricalStartDate(),
		cache:      c,
		cacheTTL:   cfg.MarketData.CacheTTL,
		logger:     log.WithField("module", "marketdata"),
	}
}

// History returns the daily close series for symbol from the configured
// historical floor to now. The result is empty, never an error, when the
// provider has no data or the request fails.
func (c *Client) History(ctx context.Context, symbol string) []PricePoint {
	return c.HistorySince(ctx, symbol, c.start)
}

// HistorySince is History with an explicit start date.
func (c *Client) HistorySince(ctx context.Context, symbol string, start time.Time) []PricePoint {
	if symbol == "" {
		return nil
	}

	key := historyKey(symbol, start)
	if c.cache != nil {
		var cached []PricePoint
		if found, err := c.cache.Get(ctx, key, &cached); err == nil && found {
			return cached
		}
	}

	prices, err := c.fetchChart(ctx, symbol, start)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("History fetch failed, returning empty series")
		return nil
	}

	if c.cache != nil && len(prices) > 0 {
		if err := c.cache.Set(ctx, key, prices, c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("History cache write failed")
		}
	}

	return prices
}

// fetchChart calls the provider chart endpoint and normalizes the response
// into a date-ascending series.
func (c *Client) fetchChart(ctx context.Context, symbol string, start time.Time) ([]PricePoint, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, url.PathEscape(symbol), start.Unix(), time.Now().Unix(),
	)

	resp, err := c.httpClient.GetWithHeaders(ctx, endpoint, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	prices, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(prices),
	}).Debug("Fetched price history")
	return prices, nil
}

// parseChart extracts (date, close) pairs, preferring adjusted closes and
// dropping days with no close at all.
func parseChart(body []byte) ([]PricePoint, error) {
	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chart JSON: %w", err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("provider error: %s", parsed.Chart.Error.Code)
	}

	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	result := parsed.Chart.Result[0]

	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("malformed chart: %d timestamps, %d closes", len(result.Timestamp), len(closes))
	}

	prices := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		prices = append(prices, PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
	return prices, nil
}

func historyKey(symbol string, start time.Time) string {
	return fmt.Sprintf("history:%s:%s", symbol, start.Format("2006-01-02"))
}
