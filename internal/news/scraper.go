// Package news scrapes financial headlines from public outlets. It backs the
// news sentiment source when no MarketAux API key is configured: scraped
// headlines are scored locally with the lexicon analyzer instead.
package news

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"investment-agent/internal/logger"
)

// Scraper collects recent headlines about a symbol from multiple outlets
type Scraper struct {
	outlets []Outlet
	timeout time.Duration
}

// Outlet defines one scraping target
type Outlet struct {
	Name             string
	BaseURL          string
	SearchPath       string // {symbol} is replaced with the ticker
	ArticleContainer string
	TitleSelector    string
	RateLimit        time.Duration
}

// NewScraper creates a scraper with the default outlets
func NewScraper(timeout time.Duration) *Scraper {
	return NewScraperWithOutlets(defaultOutlets(), timeout)
}

// NewScraperWithOutlets creates a scraper over a custom outlet set
func NewScraperWithOutlets(outlets []Outlet, timeout time.Duration) *Scraper {
	return &Scraper{
		outlets: outlets,
		timeout: timeout,
	}
}

func defaultOutlets() []Outlet {
	return []Outlet{
		{
			Name:             "YahooFinance",
			BaseURL:          "https://finance.yahoo.com",
			SearchPath:       "/quote/{symbol}/news",
			ArticleContainer: "li.stream-item",
			TitleSelector:    "h3",
			RateLimit:        2 * time.Second,
		},
		{
			Name:             "MarketWatch",
			BaseURL:          "https://www.marketwatch.com",
			SearchPath:       "/investing/stock/{symbol}",
			ArticleContainer: "div.article__content",
			TitleSelector:    "h3.article__headline a",
			RateLimit:        2 * time.Second,
		},
		{
			Name:             "Finviz",
			BaseURL:          "https://finviz.com",
			SearchPath:       "/quote.ashx?t={symbol}",
			ArticleContainer: "table.fullview-news-outer tr",
			TitleSelector:    "a.tab-link-news",
			RateLimit:        2 * time.Second,
		},
	}
}

// Headlines scrapes up to max headlines for the symbol across all outlets.
// Outlet failures are logged and skipped; a fully empty result is the
// caller's signal that the source is unavailable.
func (s *Scraper) Headlines(ctx context.Context, symbol string, max int) []string {
	var headlines []string
	seen := map[string]bool{}

	for _, outlet := range s.outlets {
		if len(headlines) >= max {
			break
		}
		for _, h := range s.scrapeOutlet(ctx, outlet, symbol, max-len(headlines)) {
			key := strings.ToLower(h)
			if !seen[key] {
				seen[key] = true
				headlines = append(headlines, h)
			}
		}
	}
	return headlines
}

func (s *Scraper) scrapeOutlet(ctx context.Context, outlet Outlet, symbol string, max int) []string {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: outlet.RateLimit})

	var titles []string
	c.OnHTML(outlet.ArticleContainer, func(e *colly.HTMLElement) {
		if len(titles) >= max {
			return
		}
		if title := headlineText(e.DOM, outlet.TitleSelector); title != "" {
			titles = append(titles, title)
		}
	})
	c.OnError(func(_ *colly.Response, err error) {
		logger.Debug(ctx, "Headline scrape failed", "outlet", outlet.Name, "symbol", symbol, "error", err)
	})

	url := outlet.BaseURL + strings.ReplaceAll(outlet.SearchPath, "{symbol}", symbol)
	if err := c.Visit(url); err != nil {
		logger.Debug(ctx, "Headline visit failed", "outlet", outlet.Name, "url", url, "error", err)
		return nil
	}
	c.Wait()
	return titles
}

// headlineText extracts and normalizes a headline from an article node
func headlineText(sel *goquery.Selection, selector string) string {
	title := strings.TrimSpace(sel.Find(selector).First().Text())
	if len(title) < 15 {
		return "" // nav fragments and tickers, not headlines
	}
	return strings.Join(strings.Fields(title), " ")
}
