// Package marketaux is the news sentiment source. It prefers the MarketAux
// news API; without a key (or when the API is down) it degrades to scraping
// public headlines and scoring them with the lexicon analyzer.
package marketaux

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"investment-agent/internal/api"
	"investment-agent/internal/cache"
	"investment-agent/internal/lexicon"
	"investment-agent/internal/logger"
	"investment-agent/internal/news"
	"investment-agent/internal/sources"
	"investment-agent/internal/types"
)

const (
	baseURL     = "https://api.marketaux.com"
	maxArticles = 25
)

// Source implements the news SentimentSource.
type Source struct {
	client   *api.Client
	apiKey   string
	cache    cache.ReadingCache
	scraper  *news.Scraper
	analyzer *lexicon.Analyzer
	days     int
}

// New creates a news source. cache may be nil to disable caching.
func New(apiKey string, readingCache cache.ReadingCache, timeout time.Duration) *Source {
	return &Source{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithRateLimit(rate.Every(time.Second), 2),
		),
		apiKey:   apiKey,
		cache:    readingCache,
		scraper:  news.NewScraper(timeout),
		analyzer: lexicon.NewAnalyzer(),
		days:     7,
	}
}

func (s *Source) Name() string { return string(types.SourceNews) }

type newsResponse struct {
	Meta struct {
		Found    int `json:"found"`
		Returned int `json:"returned"`
	} `json:"meta"`
	Data []struct {
		Title    string `json:"title"`
		Entities []struct {
			Symbol         string  `json:"symbol"`
			SentimentScore float64 `json:"sentiment_score"`
		} `json:"entities"`
	} `json:"data"`
}

// GetSentiment returns the news reading for a symbol, from cache when fresh.
func (s *Source) GetSentiment(ctx context.Context, symbol string) (types.SentimentReading, error) {
	if s.cache != nil {
		if reading, ok := s.cache.Get(ctx, s.Name()+":"+symbol); ok {
			logger.Debug(ctx, "News reading served from cache", "symbol", symbol)
			return reading, nil
		}
	}

	reading, err := s.fetch(ctx, symbol)
	if err != nil {
		return types.SentimentReading{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, s.Name()+":"+symbol, reading)
	}
	return reading, nil
}

func (s *Source) fetch(ctx context.Context, symbol string) (types.SentimentReading, error) {
	if s.apiKey == "" {
		return s.scrapeFallback(ctx, symbol, nil)
	}

	reading, err := s.fetchAPI(ctx, symbol)
	if err != nil {
		// Scraped headlines are an independent path; a dead or throttled
		// API does not have to take the whole news source with it.
		return s.scrapeFallback(ctx, symbol, err)
	}
	return reading, nil
}

func (s *Source) fetchAPI(ctx context.Context, symbol string) (types.SentimentReading, error) {
	query := url.Values{
		"symbols":        {symbol},
		"filter_entities": {"true"},
		"language":       {"en"},
		"published_after": {time.Now().AddDate(0, 0, -s.days).Format("2006-01-02")},
		"limit":          {strconv.Itoa(maxArticles)},
		"api_token":      {s.apiKey},
	}

	var resp newsResponse
	if err := s.client.GetJSON(ctx, "/v1/news/all", query, &resp); err != nil {
		return types.SentimentReading{}, sources.Classify(err)
	}
	if len(resp.Data) == 0 {
		return types.SentimentReading{}, sources.ErrUnavailable
	}

	var sum float64
	scored := 0
	for _, article := range resp.Data {
		for _, entity := range article.Entities {
			if entity.Symbol == symbol {
				sum += entity.SentimentScore
				scored++
			}
		}
	}
	if scored == 0 {
		return types.SentimentReading{}, sources.ErrUnavailable
	}

	return types.SentimentReading{
		Source:      types.SourceNews,
		Score:       types.Clamp(sum/float64(scored), -1.0, 1.0),
		Confidence:  types.Clamp(float64(scored)/10.0, 0, 1),
		SampleCount: scored,
		Timestamp:   time.Now().Unix(),
	}, nil
}

func (s *Source) scrapeFallback(ctx context.Context, symbol string, apiErr error) (types.SentimentReading, error) {
	headlines := s.scraper.Headlines(ctx, symbol, maxArticles)
	if len(headlines) == 0 {
		if apiErr != nil {
			return types.SentimentReading{}, sources.Classify(apiErr)
		}
		return types.SentimentReading{}, sources.ErrUnavailable
	}
	if apiErr != nil {
		logger.Debug(ctx, "News API failed, using scraped headlines", "symbol", symbol, "error", apiErr)
	}

	result := s.analyzer.ScoreTexts(headlines)
	return types.SentimentReading{
		Source:      types.SourceNews,
		Score:       result.Score,
		Confidence:  result.Confidence,
		SampleCount: len(headlines),
		Timestamp:   time.Now().Unix(),
	}, nil
}
