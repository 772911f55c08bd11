// Package sources defines the failure taxonomy shared by all sentiment
// sources. The fusion engine treats every variant the same way: the source
// is excluded from weighting for that call and the call carries on.
package sources

import (
	"context"
	"errors"
	"fmt"

	"investment-agent/internal/api"
)

var (
	// ErrUnavailable covers network errors, service errors, and empty or
	// garbage responses.
	ErrUnavailable = errors.New("sentiment source unavailable")

	// ErrRateLimited means the provider's call quota is exhausted.
	ErrRateLimited = errors.New("sentiment source rate limited")
)

// Classify maps a transport-level error onto the source taxonomy. Timeouts
// and cancellations count as unavailable, HTTP 429 as rate limited. The
// original error stays in the chain so Reason can still see timeouts.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrRateLimited):
		return err
	case errors.Is(err, api.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// Reason returns a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unavailable"
	}
}
