// Package llm holds the prompt and response plumbing shared by the AI
// fallback analysts. Providers live in subpackages; they differ only in
// transport, not in what they ask or how the answer is read.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"investment-agent/internal/types"
)

// Schema is the strict JSON shape every analyst asks the model for.
const Schema = `{"score": <float -1.0..1.0>, "confidence": <float 0.0..1.0>, "rationale": "<short string>"}`

// DefaultSystem is used when no system prompt is configured.
const DefaultSystem = "You are a financial market sentiment analyst. " +
	"Assess the current market sentiment for the given stock symbol. " +
	"Output STRICT JSON only, no prose."

// Options carries the provider-independent model settings.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	System      string
}

// SystemPrompt returns the configured system prompt or the default.
func (o Options) SystemPrompt() string {
	if o.System != "" {
		return o.System
	}
	return DefaultSystem
}

// BuildUserPrompt composes the user message. contextData is opaque extra
// material (recent readings, market condition) serialized as JSON.
func BuildUserPrompt(symbol string, contextData map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", symbol)
	if len(contextData) > 0 {
		if raw, err := json.Marshal(contextData); err == nil {
			fmt.Fprintf(&b, "Context: %s\n", raw)
		}
	}
	fmt.Fprintf(&b, "\nRespond ONLY with compact JSON matching this schema:\n%s", Schema)
	return b.String()
}

type rawReading struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ParseReading locates a JSON object in the model output and converts it to
// a fallback reading. Unparseable output degrades to a neutral reading with
// zero confidence rather than an error; a confused model is still an answer.
func ParseReading(text string) types.SentimentReading {
	neutral := types.SentimentReading{
		Source:    types.SourceAIFallback,
		Timestamp: time.Now().Unix(),
	}

	t := strings.TrimSpace(text)
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return neutral
	}

	var raw rawReading
	if err := json.Unmarshal([]byte(t[start:end+1]), &raw); err != nil {
		return neutral
	}

	reading := neutral
	reading.Score = types.Clamp(raw.Score, -1.0, 1.0)
	if raw.Confidence >= 0 && raw.Confidence <= 1 {
		reading.Confidence = raw.Confidence
	}
	return reading
}
