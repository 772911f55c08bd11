// Package claude implements the AI fallback analyst on Anthropic Claude.
package claude

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"investment-agent/internal/llm"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// Analyst queries Claude for a sentiment estimate.
type Analyst struct {
	client anthropic.Client
	opts   llm.Options
}

// New creates a Claude analyst.
func New(apiKey string, opts llm.Options) *Analyst {
	if opts.Model == "" {
		opts.Model = string(anthropic.ModelClaudeSonnet4_5)
	}
	return &Analyst{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		opts:   opts,
	}
}

func (a *Analyst) AnalyzeSentiment(ctx context.Context, symbol string, contextData map[string]any) (types.SentimentReading, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.opts.Model),
		MaxTokens: int64(a.opts.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: a.opts.SystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(llm.BuildUserPrompt(symbol, contextData))),
		},
	}
	if a.opts.Temperature > 0 {
		params.Temperature = anthropic.Float(a.opts.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return types.SentimentReading{}, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return types.SentimentReading{}, errors.New("claude: empty response")
	}

	return llm.ParseReading(text.String()), nil
}
