package llmobs

import (
	"context"

	"investment-agent/internal/interfaces"
	"investment-agent/internal/logger"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// observableAnalyst wraps an Analyst with observability (logging & tracing)
type observableAnalyst struct {
	analyst interfaces.Analyst
}

// Compile-time interface check
var _ interfaces.Analyst = (*observableAnalyst)(nil)

// Wrap wraps an analyst with observability middleware
func Wrap(analyst interfaces.Analyst) interfaces.Analyst {
	return &observableAnalyst{analyst: analyst}
}

func (oa *observableAnalyst) AnalyzeSentiment(ctx context.Context, symbol string, contextData map[string]any) (types.SentimentReading, error) {
	ctx, span := trace.StartSpan(ctx, "llm.AnalyzeSentiment")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting fallback sentiment analysis", "symbol", symbol)

	reading, err := oa.analyst.AnalyzeSentiment(ctx, symbol, contextData)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Fallback sentiment analysis failed", err, "symbol", symbol)
		return types.SentimentReading{}, err
	}

	logger.InfoSkip(ctx, 1, "Fallback sentiment received",
		"symbol", symbol,
		"score", reading.Score,
		"confidence", reading.Confidence,
	)
	return reading, nil
}
