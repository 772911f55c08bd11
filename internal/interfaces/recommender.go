package interfaces

import (
	"context"

	"investment-agent/internal/types"
)

// Recommender evaluates a symbol end to end: quotes, indicators, market
// conditions, fused sentiment.
type Recommender interface {
	Evaluate(ctx context.Context, symbol string) (types.Recommendation, error)
}
