package interfaces

import (
	"context"

	"investment-agent/internal/types"
)

// Fuser combines per-source readings into one unified sentiment. It is total:
// it always returns a value, degrading to a neutral default when every source
// including the fallback is unavailable.
type Fuser interface {
	Fuse(ctx context.Context, symbol string) types.UnifiedSentiment
}
