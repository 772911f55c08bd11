// Package stocktwits is the social-primary sentiment source, built on the
// StockTwits symbol stream. Messages carry an optional Bullish/Bearish tag
// from their authors; untagged message bodies are scored with the lexicon
// analyzer so a stream without tags still yields a signal.
package stocktwits

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"investment-agent/internal/api"
	"investment-agent/internal/lexicon"
	"investment-agent/internal/sources"
	"investment-agent/internal/types"
)

const baseURL = "https://api.stocktwits.com"

// Source implements the social-primary SentimentSource.
type Source struct {
	client   *api.Client
	token    string
	analyzer *lexicon.Analyzer
}

// New creates a StockTwits source. The token is optional; the public stream
// endpoint works without one at a lower quota.
func New(token string, timeout time.Duration) *Source {
	return &Source{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithRateLimit(rate.Every(2*time.Second), 1),
		),
		token:    token,
		analyzer: lexicon.NewAnalyzer(),
	}
}

func (s *Source) Name() string { return string(types.SourceSocialPrimary) }

type streamResponse struct {
	Messages []struct {
		Body     string `json:"body"`
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

func (s *Source) GetSentiment(ctx context.Context, symbol string) (types.SentimentReading, error) {
	query := url.Values{}
	if s.token != "" {
		query.Set("access_token", s.token)
	}

	var resp streamResponse
	path := "/api/2/streams/symbol/" + url.PathEscape(symbol) + ".json"
	if err := s.client.GetJSON(ctx, path, query, &resp); err != nil {
		return types.SentimentReading{}, sources.Classify(err)
	}
	if len(resp.Messages) == 0 {
		return types.SentimentReading{}, sources.ErrUnavailable
	}

	bullish, bearish := 0, 0
	var untagged []string
	for _, msg := range resp.Messages {
		switch {
		case msg.Entities.Sentiment == nil:
			untagged = append(untagged, msg.Body)
		case msg.Entities.Sentiment.Basic == "Bullish":
			bullish++
		case msg.Entities.Sentiment.Basic == "Bearish":
			bearish++
		default:
			untagged = append(untagged, msg.Body)
		}
	}

	total := len(resp.Messages)
	tagged := bullish + bearish
	if tagged == 0 {
		// Nobody tagged their posts; fall back to scoring the text itself.
		result := s.analyzer.ScoreTexts(untagged)
		return types.SentimentReading{
			Source:      types.SourceSocialPrimary,
			Score:       result.Score,
			Confidence:  result.Confidence * 0.8, // text-derived, weaker than explicit tags
			SampleCount: total,
			Timestamp:   time.Now().Unix(),
		}, nil
	}

	return types.SentimentReading{
		Source:      types.SourceSocialPrimary,
		Score:       float64(bullish-bearish) / float64(tagged),
		Confidence:  types.Clamp(float64(tagged)/float64(total), 0, 1),
		SampleCount: total,
		Timestamp:   time.Now().Unix(),
	}, nil
}
