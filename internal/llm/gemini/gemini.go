// Package gemini implements the AI fallback analyst on Google Gemini.
package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"investment-agent/internal/llm"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// Analyst queries Gemini for a sentiment estimate.
type Analyst struct {
	client *genai.Client
	opts   llm.Options
}

// New creates a Gemini analyst. Client construction touches the network
// config only, so the ambient context is fine here.
func New(ctx context.Context, apiKey string, opts llm.Options) (*Analyst, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	return &Analyst{client: client, opts: opts}, nil
}

func (a *Analyst) AnalyzeSentiment(ctx context.Context, symbol string, contextData map[string]any) (types.SentimentReading, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	temp := float32(a.opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(temp),
		SystemInstruction: genai.NewContentFromText(a.opts.SystemPrompt(), genai.RoleUser),
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.opts.Model, []*genai.Content{
		genai.NewContentFromText(llm.BuildUserPrompt(symbol, contextData), genai.RoleUser),
	}, config)
	if err != nil {
		return types.SentimentReading{}, err
	}

	text := resp.Text()
	if text == "" {
		return types.SentimentReading{}, errors.New("gemini: empty response")
	}

	return llm.ParseReading(text), nil
}
