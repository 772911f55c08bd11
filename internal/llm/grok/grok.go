// Package grok implements the AI fallback analyst on x.ai's Grok, reached
// through the OpenAI-compatible chat completions surface.
package grok

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"investment-agent/internal/llm"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

const defaultEndpoint = "https://api.x.ai/v1"

// Analyst queries Grok for a sentiment estimate.
type Analyst struct {
	client openai.Client
	opts   llm.Options
}

// New creates a Grok analyst. endpoint overrides the default x.ai base URL
// for proxies.
func New(apiKey, endpoint string, opts llm.Options) *Analyst {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = "grok-3-mini"
	}
	return &Analyst{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(endpoint),
		),
		opts: opts,
	}
}

func (a *Analyst) AnalyzeSentiment(ctx context.Context, symbol string, contextData map[string]any) (types.SentimentReading, error) {
	ctx, span := trace.StartSpan(ctx, "grok-api-call")
	defer span.End()

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(a.opts.SystemPrompt()),
			openai.UserMessage(llm.BuildUserPrompt(symbol, contextData)),
		},
		Temperature: openai.Float(a.opts.Temperature),
		MaxTokens:   openai.Int(int64(a.opts.MaxTokens)),
	})
	if err != nil {
		return types.SentimentReading{}, err
	}
	if len(resp.Choices) == 0 {
		return types.SentimentReading{}, errors.New("grok: no choices in response")
	}

	return llm.ParseReading(resp.Choices[0].Message.Content), nil
}
