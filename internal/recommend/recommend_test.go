package recommend

import (
	"context"
	"strings"
	"testing"
	"time"

	"investment-agent/internal/types"
)

type stubFuser struct {
	result types.UnifiedSentiment
}

func (f *stubFuser) Fuse(_ context.Context, symbol string) types.UnifiedSentiment {
	out := f.result
	out.Symbol = symbol
	return out
}

func testWeights() Weights {
	return Weights{Sentiment: 0.5, Technical: 0.3, Market: 0.2}
}

func sentiment(score, confidence float64, usedFallback bool) types.UnifiedSentiment {
	return types.UnifiedSentiment{
		Score:      score,
		Label:      types.LabelForScore(score),
		Confidence: confidence,
		ContributingSources: []types.SentimentReading{
			{Source: types.SourceNews, Score: score, Confidence: confidence, SampleCount: 1500},
		},
		UsedFallback: usedFallback,
		Timestamp:    time.Now().Unix(),
	}
}

func TestEvaluateStrongPositiveSentiment(t *testing.T) {
	engine := New(&stubFuser{result: sentiment(1, 1, false)}, nil, nil, testWeights())

	rec, err := engine.Evaluate(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// sentiment 100, technical and market neutral at 50:
	// 0.5*100 + 0.3*50 + 0.2*50 = 75
	if rec.CompositeScore != 75 {
		t.Errorf("Expected composite 75, got %v", rec.CompositeScore)
	}
	if rec.Action != "BUY" {
		t.Errorf("Expected BUY, got %s", rec.Action)
	}
	if rec.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", rec.Symbol)
	}
}

func TestEvaluateNeutralSentiment(t *testing.T) {
	engine := New(&stubFuser{result: sentiment(0, 0.8, false)}, nil, nil, testWeights())

	rec, err := engine.Evaluate(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rec.CompositeScore != 50 {
		t.Errorf("Expected composite 50, got %v", rec.CompositeScore)
	}
	if rec.Action != "HOLD" {
		t.Errorf("Expected HOLD, got %s", rec.Action)
	}
}

func TestEvaluateStrongNegativeSentiment(t *testing.T) {
	engine := New(&stubFuser{result: sentiment(-1, 1, false)}, nil, nil, testWeights())

	rec, err := engine.Evaluate(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rec.CompositeScore != 25 {
		t.Errorf("Expected composite 25, got %v", rec.CompositeScore)
	}
	if rec.Action != "SELL" {
		t.Errorf("Expected SELL, got %s", rec.Action)
	}
}

func TestEvaluateZeroConfidenceIsNeutral(t *testing.T) {
	// A confident-looking score with zero confidence must not move the needle.
	engine := New(&stubFuser{result: sentiment(0.9, 0, true)}, nil, nil, testWeights())

	rec, err := engine.Evaluate(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rec.CompositeScore != 50 {
		t.Errorf("Expected composite 50, got %v", rec.CompositeScore)
	}
}

func TestActionBands(t *testing.T) {
	cases := []struct {
		composite float64
		want      string
	}{
		{85, "STRONG_BUY"},
		{80, "STRONG_BUY"},
		{79.99, "BUY"},
		{65, "BUY"},
		{64.99, "HOLD"},
		{45, "HOLD"},
		{44.99, "SELL"},
		{10, "SELL"},
	}
	for _, c := range cases {
		if got := actionFor(c.composite); got != c.want {
			t.Errorf("actionFor(%v) = %s, want %s", c.composite, got, c.want)
		}
	}
}

func TestCommentary(t *testing.T) {
	engine := New(&stubFuser{result: sentiment(0.4, 0.75, true)}, nil, nil, testWeights())

	rec, err := engine.Evaluate(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !strings.Contains(rec.Commentary, "AAPL") {
		t.Error("Commentary should name the symbol")
	}
	if !strings.Contains(rec.Commentary, rec.Action) {
		t.Error("Commentary should name the action")
	}
	if !strings.Contains(rec.Commentary, "1,500 samples") {
		t.Errorf("Commentary should report the sample count, got: %s", rec.Commentary)
	}
	if !strings.Contains(rec.Commentary, "AI fallback engaged") {
		t.Error("Commentary should flag fallback usage")
	}
}
