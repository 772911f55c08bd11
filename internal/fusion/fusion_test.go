package fusion

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"investment-agent/internal/sources"
	"investment-agent/internal/types"
)

type stubSource struct {
	role    types.Source
	reading types.SentimentReading
	err     error
	delay   time.Duration
}

func (s *stubSource) Name() string { return string(s.role) }

func (s *stubSource) GetSentiment(ctx context.Context, _ string) (types.SentimentReading, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return types.SentimentReading{}, ctx.Err()
		}
	}
	if s.err != nil {
		return types.SentimentReading{}, s.err
	}
	return s.reading, nil
}

type stubAnalyst struct {
	reading types.SentimentReading
	err     error
	called  bool
}

func (a *stubAnalyst) AnalyzeSentiment(_ context.Context, _ string, _ map[string]any) (types.SentimentReading, error) {
	a.called = true
	if a.err != nil {
		return types.SentimentReading{}, a.err
	}
	return a.reading, nil
}

func testConfig() Config {
	return Config{
		Weights: types.FusionWeights{
			News:            0.4,
			SocialPrimary:   0.3,
			SocialSecondary: 0.3,
		},
		ConfidenceThreshold: 0.7,
		SourceTimeout:       time.Second,
		FallbackMode:        FallbackReplace,
		FallbackWeight:      0.25,
	}
}

func reading(role types.Source, score, confidence float64, samples int) types.SentimentReading {
	return types.SentimentReading{
		Source:      role,
		Score:       score,
		Confidence:  confidence,
		SampleCount: samples,
		Timestamp:   time.Now().Unix(),
	}
}

func primary(role types.Source, score, confidence float64) Primary {
	return Primary{Role: role, Source: &stubSource{role: role, reading: reading(role, score, confidence, 10)}}
}

func failing(role types.Source, err error) Primary {
	return Primary{Role: role, Source: &stubSource{role: role, err: err}}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFuseAllSourcesAvailable(t *testing.T) {
	analyst := &stubAnalyst{}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.8, 0.9),
		primary(types.SourceSocialPrimary, 0.5, 0.8),
		primary(types.SourceSocialSecondary, 0.2, 0.6),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	// 0.4*0.8 + 0.3*0.5 + 0.3*0.2 = 0.53
	if !approxEqual(got.Score, 0.53) {
		t.Errorf("Expected score 0.53, got %v", got.Score)
	}
	// 0.4*0.9 + 0.3*0.8 + 0.3*0.6 = 0.78
	if !approxEqual(got.Confidence, 0.78) {
		t.Errorf("Expected confidence 0.78, got %v", got.Confidence)
	}
	if got.Label != types.LabelPositive {
		t.Errorf("Expected POSITIVE label, got %s", got.Label)
	}
	if got.UsedFallback {
		t.Error("Fallback should not fire when confidence meets the threshold")
	}
	if analyst.called {
		t.Error("Analyst should not be consulted when confidence meets the threshold")
	}
	if len(got.ContributingSources) != 3 {
		t.Errorf("Expected 3 contributing sources, got %d", len(got.ContributingSources))
	}
}

func TestFuseRenormalizesOverAvailableSubset(t *testing.T) {
	analyst := &stubAnalyst{}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.8, 0.9),
		failing(types.SourceSocialPrimary, sources.ErrUnavailable),
		primary(types.SourceSocialSecondary, 0.2, 0.6),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	// (0.4*0.8 + 0.3*0.2) / 0.7 = 0.542857...
	if !approxEqual(got.Score, 0.38/0.7) {
		t.Errorf("Expected score %v, got %v", 0.38/0.7, got.Score)
	}
	// (0.4*0.9 + 0.3*0.6) / 0.7 = 0.771428...
	if !approxEqual(got.Confidence, 0.54/0.7) {
		t.Errorf("Expected confidence %v, got %v", 0.54/0.7, got.Confidence)
	}
	if got.UsedFallback {
		t.Error("Fallback should not fire, renormalized confidence is above threshold")
	}
	if got.Label != types.LabelPositive {
		t.Errorf("Expected POSITIVE label, got %s", got.Label)
	}
	if len(got.ContributingSources) != 2 {
		t.Errorf("Expected 2 contributing sources, got %d", len(got.ContributingSources))
	}
}

func TestFuseSingleSourceGetsFullWeight(t *testing.T) {
	analyst := &stubAnalyst{}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.5, 0.9),
		failing(types.SourceSocialPrimary, sources.ErrRateLimited),
		failing(types.SourceSocialSecondary, sources.ErrUnavailable),
	}, analyst)

	got := engine.Fuse(context.Background(), "MSFT")

	if !approxEqual(got.Score, 0.5) {
		t.Errorf("Expected score 0.5, got %v", got.Score)
	}
	if !approxEqual(got.Confidence, 0.9) {
		t.Errorf("Expected confidence 0.9, got %v", got.Confidence)
	}
	if got.UsedFallback {
		t.Error("One confident source is enough, fallback should not fire")
	}
}

func TestFuseLowConfidenceTriggersFallbackReplace(t *testing.T) {
	analyst := &stubAnalyst{reading: reading(types.SourceAIFallback, -0.6, 0.9, 0)}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.3, 0.4),
		primary(types.SourceSocialPrimary, 0.2, 0.3),
		primary(types.SourceSocialSecondary, 0.1, 0.2),
	}, analyst)

	got := engine.Fuse(context.Background(), "NVDA")

	if !got.UsedFallback {
		t.Fatal("Expected fallback to fire on low aggregate confidence")
	}
	if !analyst.called {
		t.Fatal("Expected analyst to be consulted")
	}
	if !approxEqual(got.Score, -0.6) {
		t.Errorf("Replace mode should take the fallback score, got %v", got.Score)
	}
	if !approxEqual(got.Confidence, 0.9) {
		t.Errorf("Replace mode should take the fallback confidence, got %v", got.Confidence)
	}
	if got.Label != types.LabelNegative {
		t.Errorf("Expected NEGATIVE label, got %s", got.Label)
	}
	// Primaries still answered, so they stay listed alongside the fallback.
	if len(got.ContributingSources) != 4 {
		t.Errorf("Expected 4 contributing sources, got %d", len(got.ContributingSources))
	}
}

func TestFuseBlendMode(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackMode = FallbackBlend

	analyst := &stubAnalyst{reading: reading(types.SourceAIFallback, -0.4, 0.9, 0)}
	engine := New(cfg, []Primary{
		primary(types.SourceNews, 0.4, 0.5),
		failing(types.SourceSocialPrimary, sources.ErrUnavailable),
		failing(types.SourceSocialSecondary, sources.ErrUnavailable),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	if !got.UsedFallback {
		t.Fatal("Expected fallback to fire")
	}
	// 0.75*0.4 + 0.25*(-0.4) = 0.2
	if !approxEqual(got.Score, 0.2) {
		t.Errorf("Expected blended score 0.2, got %v", got.Score)
	}
	// 0.75*0.5 + 0.25*0.9 = 0.6
	if !approxEqual(got.Confidence, 0.6) {
		t.Errorf("Expected blended confidence 0.6, got %v", got.Confidence)
	}
}

func TestFuseAllPrimariesFailUsesFallbackVerbatim(t *testing.T) {
	fb := reading(types.SourceAIFallback, 0.3, 0.85, 0)
	analyst := &stubAnalyst{reading: fb}
	engine := New(testConfig(), []Primary{
		failing(types.SourceNews, sources.ErrUnavailable),
		failing(types.SourceSocialPrimary, sources.ErrRateLimited),
		failing(types.SourceSocialSecondary, errors.New("connection refused")),
	}, analyst)

	got := engine.Fuse(context.Background(), "TSLA")

	if !got.UsedFallback {
		t.Fatal("Expected fallback to fire when no primary answered")
	}
	if !approxEqual(got.Score, 0.3) || !approxEqual(got.Confidence, 0.85) {
		t.Errorf("Expected fallback reading verbatim, got score=%v confidence=%v", got.Score, got.Confidence)
	}
	if len(got.ContributingSources) != 1 {
		t.Fatalf("Expected only the fallback reading, got %d sources", len(got.ContributingSources))
	}
	if got.ContributingSources[0].Source != types.SourceAIFallback {
		t.Errorf("Expected ai_fallback source, got %s", got.ContributingSources[0].Source)
	}
}

func TestFuseBlendWithNoPrimariesTakesFallbackVerbatim(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackMode = FallbackBlend

	analyst := &stubAnalyst{reading: reading(types.SourceAIFallback, -0.5, 0.8, 0)}
	engine := New(cfg, []Primary{
		failing(types.SourceNews, sources.ErrUnavailable),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	if !approxEqual(got.Score, -0.5) {
		t.Errorf("With nothing to blend against, the fallback score stands alone, got %v", got.Score)
	}
}

func TestFuseTotalFailureReturnsNeutralDefault(t *testing.T) {
	analyst := &stubAnalyst{err: errors.New("model overloaded")}
	engine := New(testConfig(), []Primary{
		failing(types.SourceNews, sources.ErrUnavailable),
		failing(types.SourceSocialPrimary, sources.ErrUnavailable),
		failing(types.SourceSocialSecondary, sources.ErrUnavailable),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	if got.Score != 0 {
		t.Errorf("Expected score 0, got %v", got.Score)
	}
	if got.Label != types.LabelNeutral {
		t.Errorf("Expected NEUTRAL label, got %s", got.Label)
	}
	if got.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %v", got.Confidence)
	}
	if !got.UsedFallback {
		t.Error("Expected used_fallback to be set")
	}
	if got.ContributingSources == nil || len(got.ContributingSources) != 0 {
		t.Errorf("Expected empty (non-nil) contributing sources, got %v", got.ContributingSources)
	}
}

func TestFuseFallbackFailureKeepsPrimaryAggregate(t *testing.T) {
	analyst := &stubAnalyst{err: errors.New("quota exceeded")}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.3, 0.4),
		primary(types.SourceSocialPrimary, 0.3, 0.4),
		primary(types.SourceSocialSecondary, 0.3, 0.4),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")

	if !got.UsedFallback {
		t.Error("Fallback rule fired, the flag must be set even when the analyst failed")
	}
	if !approxEqual(got.Score, 0.3) {
		t.Errorf("Expected primary aggregate to survive, got %v", got.Score)
	}
	if !approxEqual(got.Confidence, 0.4) {
		t.Errorf("Expected primary confidence to survive, got %v", got.Confidence)
	}
	if len(got.ContributingSources) != 3 {
		t.Errorf("Expected 3 contributing sources, got %d", len(got.ContributingSources))
	}
}

func TestFuseSlowSourceTimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.SourceTimeout = 20 * time.Millisecond

	analyst := &stubAnalyst{}
	slow := Primary{
		Role: types.SourceSocialPrimary,
		Source: &stubSource{
			role:    types.SourceSocialPrimary,
			reading: reading(types.SourceSocialPrimary, -1, 1, 5),
			delay:   200 * time.Millisecond,
		},
	}
	engine := New(cfg, []Primary{
		primary(types.SourceNews, 0.6, 0.9),
		slow,
		primary(types.SourceSocialSecondary, 0.6, 0.9),
	}, analyst)

	start := time.Now()
	got := engine.Fuse(context.Background(), "AAPL")
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("Slow source was not cut off by the deadline, took %v", elapsed)
	}

	if len(got.ContributingSources) != 2 {
		t.Fatalf("Expected timed-out source to be excluded, got %d sources", len(got.ContributingSources))
	}
	if !approxEqual(got.Score, 0.6) {
		t.Errorf("Expected score 0.6 from the two fast sources, got %v", got.Score)
	}
}

func TestFuseScoreIsClamped(t *testing.T) {
	analyst := &stubAnalyst{}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 1.8, 0.9), // misbehaving source
		primary(types.SourceSocialPrimary, 1.5, 0.9),
		primary(types.SourceSocialSecondary, 1.2, 0.9),
	}, analyst)

	got := engine.Fuse(context.Background(), "AAPL")
	if got.Score > 1 {
		t.Errorf("Score must be clamped to [-1, 1], got %v", got.Score)
	}
}

type stubHistory struct {
	scores []float64
}

func (h *stubHistory) RecentScores(_ context.Context, _ string, _ int) ([]float64, error) {
	return h.scores, nil
}

type capturingAnalyst struct {
	contextData map[string]any
}

func (a *capturingAnalyst) AnalyzeSentiment(_ context.Context, _ string, contextData map[string]any) (types.SentimentReading, error) {
	a.contextData = contextData
	return types.SentimentReading{Source: types.SourceAIFallback, Timestamp: time.Now().Unix()}, nil
}

func TestFuseFallbackContextCarriesPartialsAndHistory(t *testing.T) {
	analyst := &capturingAnalyst{}
	engine := New(testConfig(), []Primary{
		primary(types.SourceNews, 0.3, 0.4),
		failing(types.SourceSocialPrimary, sources.ErrUnavailable),
	}, analyst).WithHistory(&stubHistory{scores: []float64{0.2, 0.1}})

	engine.Fuse(context.Background(), "AAPL")

	if analyst.contextData == nil {
		t.Fatal("Expected context data to be passed to the analyst")
	}
	if analyst.contextData["available_sources"] != 1 {
		t.Errorf("Expected 1 available source in context, got %v", analyst.contextData["available_sources"])
	}
	if _, ok := analyst.contextData["readings"]; !ok {
		t.Error("Expected partial readings in context")
	}
	if _, ok := analyst.contextData["recent_scores"]; !ok {
		t.Error("Expected recent scores from history in context")
	}
}
