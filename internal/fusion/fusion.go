// Package fusion combines per-source sentiment readings into one unified
// sentiment per symbol. Primary sources are queried concurrently with a
// per-source deadline; the AI fallback runs strictly after them and only
// when the primaries are missing or not confident enough.
package fusion

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"investment-agent/internal/interfaces"
	"investment-agent/internal/logger"
	"investment-agent/internal/metrics"
	"investment-agent/internal/sources"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// FallbackMode selects what happens with the fallback reading once the
// fallback rule fires.
const (
	FallbackReplace = "replace"
	FallbackBlend   = "blend"
)

// Config holds the fusion parameters. Weights apply to the full source set
// and are renormalized over whichever subset answered.
type Config struct {
	Weights             types.FusionWeights
	ConfidenceThreshold float64
	SourceTimeout       time.Duration
	FallbackMode        string
	FallbackWeight      float64
}

// Primary binds a sentiment source to its weighted role.
type Primary struct {
	Role   types.Source
	Source interfaces.SentimentSource
}

// HistoryProvider supplies recent fused scores used as context for the
// fallback analyst's prompt. Optional.
type HistoryProvider interface {
	RecentScores(ctx context.Context, symbol string, limit int) ([]float64, error)
}

// Engine is the fusion implementation. Stateless per call, safe for
// concurrent use.
type Engine struct {
	cfg       Config
	primaries []Primary
	analyst   interfaces.Analyst
	history   HistoryProvider
}

var _ interfaces.Fuser = (*Engine)(nil)

// New creates a fusion engine over the given primaries and fallback analyst.
func New(cfg Config, primaries []Primary, analyst interfaces.Analyst) *Engine {
	return &Engine{cfg: cfg, primaries: primaries, analyst: analyst}
}

// WithHistory attaches a history provider for fallback prompt context.
func (e *Engine) WithHistory(h HistoryProvider) *Engine {
	e.history = h
	return e
}

type sourceResult struct {
	role    types.Source
	name    string
	reading types.SentimentReading
	err     error
}

// Fuse produces the unified sentiment for symbol. It never returns an error:
// when every primary fails and the fallback fails too, the result is the
// neutral default with used_fallback set.
func (e *Engine) Fuse(ctx context.Context, symbol string) types.UnifiedSentiment {
	ctx, span := trace.StartSpan(ctx, "fusion.Fuse")
	defer span.End()

	requestID := uuid.NewString()
	readings := e.collectPrimaries(ctx, symbol, requestID)

	score, confidence, weightSum := e.aggregate(readings)
	usedFallback := len(readings) == 0 || confidence < e.cfg.ConfidenceThreshold

	contributing := make([]types.SentimentReading, 0, len(readings)+1)
	for _, r := range readings {
		contributing = append(contributing, r.reading)
	}

	if usedFallback {
		fb, err := e.analyst.AnalyzeSentiment(ctx, symbol, e.fallbackContext(ctx, symbol, readings, score, confidence))
		switch {
		case err != nil && weightSum == 0:
			// Nothing answered at all. Degrade to the neutral default.
			logger.Warn(ctx, "All sentiment sources failed, returning neutral default",
				"symbol", symbol, "request_id", requestID)
			return neutralDefault(symbol)
		case err != nil:
			// Keep the low-confidence primary aggregate. The fallback rule
			// fired, so the flag stays set.
			logger.Warn(ctx, "Fallback analyst failed, keeping primary aggregate",
				"symbol", symbol, "request_id", requestID, "error", err.Error())
		case e.cfg.FallbackMode == FallbackBlend && weightSum > 0:
			w := types.Clamp(e.cfg.FallbackWeight, 0, 1)
			score = (1-w)*score + w*fb.Score
			confidence = (1-w)*confidence + w*fb.Confidence
			contributing = append(contributing, fb)
		default:
			score = fb.Score
			confidence = fb.Confidence
			contributing = append(contributing, fb)
		}
	}

	score = types.Clamp(score, -1, 1)
	confidence = types.Clamp(confidence, 0, 1)
	label := types.LabelForScore(score)

	logger.Fusion(ctx, symbol, score, confidence, string(label), usedFallback,
		"request_id", requestID,
		"contributing_sources", len(contributing),
	)

	return types.UnifiedSentiment{
		Symbol:              symbol,
		Score:               score,
		Label:               label,
		Confidence:          confidence,
		ContributingSources: contributing,
		UsedFallback:        usedFallback,
		Timestamp:           time.Now().Unix(),
	}
}

// collectPrimaries fans out to every primary source concurrently, each under
// its own deadline. Failures are logged and counted but never abort the call.
func (e *Engine) collectPrimaries(ctx context.Context, symbol, requestID string) []sourceResult {
	results := make([]sourceResult, len(e.primaries))
	var wg sync.WaitGroup
	for i, p := range e.primaries {
		wg.Add(1)
		go func(i int, p Primary) {
			defer wg.Done()
			srcCtx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
			defer cancel()

			reading, err := p.Source.GetSentiment(srcCtx, symbol)
			results[i] = sourceResult{role: p.Role, name: p.Source.Name(), reading: reading, err: sources.Classify(err)}
		}(i, p)
	}
	wg.Wait()

	ok := results[:0]
	for _, r := range results {
		if r.err != nil {
			reason := sources.Reason(r.err)
			logger.Degraded(ctx, symbol, r.name, reason, r.err, "request_id", requestID)
			metrics.SourceFailures.WithLabelValues(r.name, reason).Inc()
			continue
		}
		ok = append(ok, r)
	}
	return ok
}

// aggregate computes the weighted score and confidence over the available
// readings, renormalizing the configured weights to the subset that answered.
func (e *Engine) aggregate(readings []sourceResult) (score, confidence, weightSum float64) {
	for _, r := range readings {
		w := e.weightFor(r.role)
		score += w * r.reading.Score
		confidence += w * r.reading.Confidence
		weightSum += w
	}
	if weightSum == 0 {
		return 0, 0, 0
	}
	return score / weightSum, confidence / weightSum, weightSum
}

func (e *Engine) weightFor(role types.Source) float64 {
	switch role {
	case types.SourceNews:
		return e.cfg.Weights.News
	case types.SourceSocialPrimary:
		return e.cfg.Weights.SocialPrimary
	case types.SourceSocialSecondary:
		return e.cfg.Weights.SocialSecondary
	default:
		return 0
	}
}

// fallbackContext assembles the prompt context handed to the AI analyst.
func (e *Engine) fallbackContext(ctx context.Context, symbol string, readings []sourceResult, score, confidence float64) map[string]any {
	data := map[string]any{
		"available_sources": len(readings),
	}
	if len(readings) > 0 {
		data["partial_score"] = score
		data["partial_confidence"] = confidence
		srcs := make([]map[string]any, 0, len(readings))
		for _, r := range readings {
			srcs = append(srcs, map[string]any{
				"source":     string(r.role),
				"score":      r.reading.Score,
				"confidence": r.reading.Confidence,
				"samples":    r.reading.SampleCount,
			})
		}
		data["readings"] = srcs
	}
	if e.history != nil {
		if recent, err := e.history.RecentScores(ctx, symbol, 5); err == nil && len(recent) > 0 {
			data["recent_scores"] = recent
		}
	}
	return data
}

func neutralDefault(symbol string) types.UnifiedSentiment {
	return types.UnifiedSentiment{
		Symbol:              symbol,
		Score:               0,
		Label:               types.LabelNeutral,
		Confidence:          0,
		ContributingSources: []types.SentimentReading{},
		UsedFallback:        true,
		Timestamp:           time.Now().Unix(),
	}
}
