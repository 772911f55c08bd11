// Package recommend produces the final per-symbol recommendation from fused
// sentiment, technical indicators and market conditions.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"investment-agent/internal/interfaces"
	"investment-agent/internal/logger"
	"investment-agent/internal/market"
	"investment-agent/internal/metrics"
	"investment-agent/internal/quotes"
	"investment-agent/internal/ta"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// Weights splits the composite score across its three components. They must
// sum to 1.
type Weights struct {
	Sentiment float64
	Technical float64
	Market    float64
}

// Engine implements the recommender. The market client is optional; when nil
// the market component sits at its neutral value.
type Engine struct {
	fuser   interfaces.Fuser
	quotes  *quotes.Client
	market  *market.Client
	weights Weights
}

var _ interfaces.Recommender = (*Engine)(nil)

// New creates a recommendation engine.
func New(fuser interfaces.Fuser, q *quotes.Client, m *market.Client, w Weights) *Engine {
	return &Engine{fuser: fuser, quotes: q, market: m, weights: w}
}

// Evaluate scores symbol and maps the composite onto an action. Quote or
// market failures degrade the affected component to neutral rather than
// failing the evaluation; only a nil fuser result is impossible, so the
// error return exists for future hard failures and is currently always nil
// once sentiment is in hand.
func (e *Engine) Evaluate(ctx context.Context, symbol string) (types.Recommendation, error) {
	ctx, span := trace.StartSpan(ctx, "recommend.Evaluate")
	defer span.End()

	sentiment := e.fuser.Fuse(ctx, symbol)
	sentimentScore := 50 + sentiment.Score*sentiment.Confidence*50

	technicalScore := 50.0
	var price float64
	if e.quotes != nil {
		quote, err := e.quotes.Daily(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Quote fetch failed, technical component neutral",
				"symbol", symbol, "error", err.Error())
		} else {
			price = quote.Latest
			if ind, err := ta.Compute(quote.Closes); err != nil {
				logger.Warn(ctx, "Indicator computation failed, technical component neutral",
					"symbol", symbol, "error", err.Error())
			} else {
				technicalScore = ta.Score(ind, price)
			}
		}
	}

	marketScore := 50.0
	var conditions types.MarketConditions
	if e.market != nil {
		conditions = e.market.Conditions(ctx)
		marketScore = types.Clamp(100-float64(conditions.RiskScore)*10, 0, 100)
	}

	composite := e.weights.Sentiment*sentimentScore +
		e.weights.Technical*technicalScore +
		e.weights.Market*marketScore
	action := actionFor(composite)

	rec := types.Recommendation{
		Symbol:         symbol,
		Action:         action,
		CompositeScore: composite,
		Price:          price,
		Sentiment:      sentiment,
		Market:         conditions.Condition,
		Commentary:     e.commentary(symbol, action, composite, sentimentScore, technicalScore, marketScore, sentiment, conditions),
		Time:           time.Now().Unix(),
	}

	metrics.Recommendations.WithLabelValues(action).Inc()
	logger.Recommendation(ctx, symbol, action, composite,
		"sentiment_score", sentimentScore,
		"technical_score", technicalScore,
		"market_score", marketScore,
		"used_fallback", sentiment.UsedFallback,
	)
	return rec, nil
}

func actionFor(composite float64) string {
	switch {
	case composite >= 80:
		return "STRONG_BUY"
	case composite >= 65:
		return "BUY"
	case composite >= 45:
		return "HOLD"
	default:
		return "SELL"
	}
}

func (e *Engine) commentary(symbol, action string, composite, sentimentScore, technicalScore, marketScore float64, sentiment types.UnifiedSentiment, conditions types.MarketConditions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s at composite %.1f (sentiment %.1f, technical %.1f, market %.1f).",
		symbol, action, composite, sentimentScore, technicalScore, marketScore)

	samples := 0
	for _, r := range sentiment.ContributingSources {
		samples += r.SampleCount
	}
	fmt.Fprintf(&b, " Sentiment %s at %.2f with %.0f%% confidence", sentiment.Label, sentiment.Score, sentiment.Confidence*100)
	if samples > 0 {
		fmt.Fprintf(&b, " across %s samples", humanize.Comma(int64(samples)))
	}
	if sentiment.UsedFallback {
		b.WriteString(" (AI fallback engaged)")
	}
	b.WriteString(".")

	if conditions.Condition != "" {
		fmt.Fprintf(&b, " %s. %s", conditions.Condition, market.Advice(conditions.RiskScore))
	}
	return b.String()
}
