package fusionobs

import (
	"context"
	"strconv"

	"investment-agent/internal/interfaces"
	"investment-agent/internal/logger"
	"investment-agent/internal/metrics"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// observableFuser wraps a Fuser with observability (logging, tracing, metrics)
type observableFuser struct {
	fuser interfaces.Fuser
}

// Compile-time interface check
var _ interfaces.Fuser = (*observableFuser)(nil)

// Wrap wraps a fuser with observability middleware
func Wrap(fuser interfaces.Fuser) interfaces.Fuser {
	return &observableFuser{fuser: fuser}
}

func (of *observableFuser) Fuse(ctx context.Context, symbol string) types.UnifiedSentiment {
	ctx, span := trace.StartSpan(ctx, "fusion.Fuse")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Starting sentiment fusion", "symbol", symbol)

	unified := of.fuser.Fuse(ctx, symbol)

	metrics.Fusions.WithLabelValues(strconv.FormatBool(unified.UsedFallback)).Inc()
	return unified
}
