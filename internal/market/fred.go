// Package market pulls macroeconomic indicators from FRED and turns them
// into a risk posture for the recommendation engine.
package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"investment-agent/internal/api"
	"investment-agent/internal/logger"
	"investment-agent/internal/types"
)

const baseURL = "https://api.stlouisfed.org/fred"

// Series IDs queried from FRED.
const (
	seriesVIX               = "VIXCLS"
	seriesCPI               = "CPIAUCSL"
	seriesUnemployment      = "UNRATE"
	seriesFedFunds          = "FEDFUNDS"
	seriesConsumerSentiment = "UMCSENT"
)

// Defaults used when a series is unavailable, so one missing indicator does
// not sink the whole assessment.
const (
	defaultVIX               = 20
	defaultInflation         = 3
	defaultUnemployment      = 4
	defaultFedFunds          = 5
	defaultConsumerSentiment = 80
)

// Client is a FRED API client.
type Client struct {
	api *api.Client
	key string
}

// NewClient creates a FRED client. An empty key makes every call fail, which
// degrades Conditions to its defaults.
func NewClient(apiKey string) *Client {
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(10*time.Second),
		),
		key: apiKey,
	}
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type seriesResponse struct {
	Observations []observation `json:"observations"`
}

// series returns the most recent numeric observations for a series, newest
// first. FRED reports missing datapoints as ".", those are skipped.
func (c *Client) series(ctx context.Context, seriesID string, limit int) ([]float64, error) {
	if c.key == "" {
		return nil, fmt.Errorf("fred: api key not configured")
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.key)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))

	var resp seriesResponse
	if err := c.api.GetJSON(ctx, "/series/observations", q, &resp); err != nil {
		return nil, fmt.Errorf("fred: fetch %s: %w", seriesID, err)
	}

	values := make([]float64, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("fred: no observations for %s", seriesID)
	}
	return values, nil
}

// latest returns the newest value of a series, or fallback when the fetch
// fails.
func (c *Client) latest(ctx context.Context, seriesID string, fallback float64) float64 {
	values, err := c.series(ctx, seriesID, 10)
	if err != nil {
		logger.Warn(ctx, "Economic indicator unavailable, using default",
			"series", seriesID, "default", fallback, "error", err.Error())
		return fallback
	}
	return values[0]
}

// inflationRate computes year-over-year CPI change in percent. CPIAUCSL is an
// index level, not a rate, so thirteen monthly observations are needed.
func (c *Client) inflationRate(ctx context.Context) float64 {
	values, err := c.series(ctx, seriesCPI, 13)
	if err != nil || len(values) < 13 || values[12] == 0 {
		logger.Warn(ctx, "CPI series unavailable, using default inflation",
			"default", defaultInflation)
		return defaultInflation
	}
	return (values[0] - values[12]) / values[12] * 100
}

// Conditions fetches the indicator set and derives the risk posture. It never
// fails: unavailable series fall back to neutral defaults.
func (c *Client) Conditions(ctx context.Context) types.MarketConditions {
	cond := types.MarketConditions{
		VIX:               c.latest(ctx, seriesVIX, defaultVIX),
		Inflation:         c.inflationRate(ctx),
		Unemployment:      c.latest(ctx, seriesUnemployment, defaultUnemployment),
		FedFundsRate:      c.latest(ctx, seriesFedFunds, defaultFedFunds),
		ConsumerSentiment: c.latest(ctx, seriesConsumerSentiment, defaultConsumerSentiment),
	}
	assessRisk(&cond)

	logger.Info(ctx, "Market conditions assessed",
		"vix", cond.VIX,
		"risk_score", cond.RiskScore,
		"condition", cond.Condition,
	)
	return cond
}
