package interfaces

import (
	"context"

	"investment-agent/internal/types"
)

// SentimentSource produces a sentiment reading for a symbol from one external
// provider. Failures are reported with the sentinel errors in
// internal/sources; partial failure across sources is expected and normal.
type SentimentSource interface {
	Name() string
	GetSentiment(ctx context.Context, symbol string) (types.SentimentReading, error)
}
