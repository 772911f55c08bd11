package llm

import (
	"strings"
	"testing"

	"investment-agent/internal/types"
)

func TestParseReadingValid(t *testing.T) {
	r := ParseReading(`{"score": 0.6, "confidence": 0.85, "rationale": "earnings beat"}`)

	if r.Score != 0.6 {
		t.Errorf("Expected score 0.6, got %v", r.Score)
	}
	if r.Confidence != 0.85 {
		t.Errorf("Expected confidence 0.85, got %v", r.Confidence)
	}
	if r.Source != types.SourceAIFallback {
		t.Errorf("Expected ai_fallback source, got %s", r.Source)
	}
}

func TestParseReadingWithSurroundingProse(t *testing.T) {
	text := "Sure! Here is the analysis:\n```json\n{\"score\": -0.3, \"confidence\": 0.7}\n```\nLet me know if you need more."
	r := ParseReading(text)

	if r.Score != -0.3 {
		t.Errorf("Expected score -0.3, got %v", r.Score)
	}
	if r.Confidence != 0.7 {
		t.Errorf("Expected confidence 0.7, got %v", r.Confidence)
	}
}

func TestParseReadingGarbageDegradesToNeutral(t *testing.T) {
	for _, text := range []string{"", "no json here", "{broken", "{]"} {
		r := ParseReading(text)
		if r.Score != 0 || r.Confidence != 0 {
			t.Errorf("ParseReading(%q) should be neutral, got score=%v confidence=%v", text, r.Score, r.Confidence)
		}
		if r.Source != types.SourceAIFallback {
			t.Errorf("Expected ai_fallback source, got %s", r.Source)
		}
	}
}

func TestParseReadingClampsScore(t *testing.T) {
	r := ParseReading(`{"score": 3.5, "confidence": 0.5}`)
	if r.Score != 1 {
		t.Errorf("Expected score clamped to 1, got %v", r.Score)
	}
}

func TestParseReadingRejectsOutOfRangeConfidence(t *testing.T) {
	r := ParseReading(`{"score": 0.2, "confidence": 4.0}`)
	if r.Confidence != 0 {
		t.Errorf("Out-of-range confidence should be dropped, got %v", r.Confidence)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("AAPL", map[string]any{"available_sources": 1})

	if !strings.Contains(p, "AAPL") {
		t.Error("Prompt should carry the symbol")
	}
	if !strings.Contains(p, "available_sources") {
		t.Error("Prompt should carry the context data")
	}
	if !strings.Contains(p, Schema) {
		t.Error("Prompt should carry the response schema")
	}
}

func TestSystemPrompt(t *testing.T) {
	if got := (Options{}).SystemPrompt(); got != DefaultSystem {
		t.Errorf("Expected default system prompt, got %q", got)
	}
	if got := (Options{System: "custom"}).SystemPrompt(); got != "custom" {
		t.Errorf("Expected custom system prompt, got %q", got)
	}
}
