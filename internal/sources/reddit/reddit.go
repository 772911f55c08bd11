// Package reddit is the social-secondary sentiment source. Post titles and
// bodies from a public search are scored with the lexicon analyzer.
package reddit

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

const (
	baseURL  = "https://www.reddit.com"
	maxPosts = 25
)

// Source implements the social-secondary SentimentSource.
type Source struct {
	client   *api.Client
	analyzer *lexicon.Analyzer
}

// New creates a reddit source. Reddit requires a descriptive User-Agent on
// its public JSON endpoints.
func New(userAgent string, timeout time.Duration) *Source {
	return &Source{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithHeader("User-Agent", userAgent),
			api.WithRateLimit(rate.Every(2*time.Second), 1),
		),
		analyzer: lexicon.NewAnalyzer(),
	}
}

func (s *Source) Name() string { return string(types.SourceSocialSecondary) }

type searchResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *Source) GetSentiment(ctx context.Context, symbol string) (types.SentimentReading, error) {
	query := url.Values{
		"q":     {symbol + " stock"},
		"sort":  {"new"},
		"limit": {"25"},
		"t":     {"week"},
	}

	var resp searchResponse
	if err := s.client.GetJSON(ctx, "/search.json", query, &resp); err != nil {
		return types.SentimentReading{}, sources.Classify(err)
	}
	if len(resp.Data.Children) == 0 {
		return types.SentimentReading{}, sources.ErrUnavailable
	}

	var texts []string
	for i, child := range resp.Data.Children {
		if i >= maxPosts {
			break
		}
		texts = append(texts, child.Data.Title)
		if child.Data.Selftext != "" {
			texts = append(texts, child.Data.Selftext)
		}
	}

	result := s.analyzer.ScoreTexts(texts)
	return types.SentimentReading{
		Source:      types.SourceSocialSecondary,
		Score:       result.Score,
		Confidence:  result.Confidence,
		SampleCount: len(resp.Data.Children),
		Timestamp:   time.Now().Unix(),
	}, nil
}
