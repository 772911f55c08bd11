package noop

import (
	"context"
	"time"

	"investment-agent/internal/logger"
	"investment-agent/internal/types"
)

// Analyst is the fallback used when no AI provider is configured. It always
// answers neutral with zero confidence.
type Analyst struct{}

// New returns a new noop analyst
func New() *Analyst {
	return &Analyst{}
}

func (a *Analyst) AnalyzeSentiment(ctx context.Context, symbol string, _ map[string]any) (types.SentimentReading, error) {
	logger.Debug(ctx, "Noop analyst called - always returns neutral", "symbol", symbol)
	return types.SentimentReading{
		Source:    types.SourceAIFallback,
		Timestamp: time.Now().Unix(),
	}, nil
}
