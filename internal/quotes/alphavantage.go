// Package quotes fetches daily close series from Alpha Vantage.
package quotes

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"investment-agent/internal/api"
	"investment-agent/internal/types"
)

const baseURL = "https://www.alphavantage.co"

// Client is an Alpha Vantage client. The free tier allows 5 requests per
// minute, so calls are rate limited to one every 12 seconds.
type Client struct {
	api *api.Client
	key string
}

// NewClient creates an Alpha Vantage client.
func NewClient(apiKey string) *Client {
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(15*time.Second),
			api.WithRateLimit(rate.Every(12*time.Second), 1),
		),
		key: apiKey,
	}
}

type dailyResponse struct {
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	ErrorMessage string                       `json:"Error Message"`
}

// Daily returns the compact daily close series for symbol, oldest first.
// Alpha Vantage signals quota exhaustion with a 200 response carrying a Note,
// so that case is checked explicitly.
func (c *Client) Daily(ctx context.Context, symbol string) (types.Quote, error) {
	if c.key == "" {
		return types.Quote{}, fmt.Errorf("alphavantage: api key not configured")
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "compact")
	q.Set("apikey", c.key)

	var resp dailyResponse
	if err := c.api.GetJSON(ctx, "/query", q, &resp); err != nil {
		return types.Quote{}, fmt.Errorf("alphavantage: fetch %s: %w", symbol, err)
	}
	if resp.ErrorMessage != "" {
		return types.Quote{}, fmt.Errorf("alphavantage: %s", resp.ErrorMessage)
	}
	if resp.Note != "" || resp.Information != "" {
		return types.Quote{}, fmt.Errorf("alphavantage: quota exhausted for %s", symbol)
	}
	if len(resp.Series) == 0 {
		return types.Quote{}, fmt.Errorf("alphavantage: empty series for %s", symbol)
	}

	dates := make([]string, 0, len(resp.Series))
	for d := range resp.Series {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	closes := make([]float64, 0, len(dates))
	for _, d := range dates {
		raw, ok := resp.Series[d]["4. close"]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		closes = append(closes, v)
	}
	if len(closes) == 0 {
		return types.Quote{}, fmt.Errorf("alphavantage: no parseable closes for %s", symbol)
	}

	return types.Quote{
		Symbol: symbol,
		Closes: closes,
		Latest: closes[len(closes)-1],
		Time:   time.Now().Unix(),
	}, nil
}
