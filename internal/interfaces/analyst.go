package interfaces

import (
	"context"

	"investment-agent/internal/types"
)

// Analyst is the AI-based fallback used when primary sources are missing or
// low-confidence. The context map is opaque to the caller and may carry
// recent readings or market condition hints.
type Analyst interface {
	AnalyzeSentiment(ctx context.Context, symbol string, contextData map[string]any) (types.SentimentReading, error)
}
