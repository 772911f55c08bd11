package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"investment-agent/internal/cache"
	"investment-agent/internal/export"
	"investment-agent/internal/fusion"
	"investment-agent/internal/fusion/fusionobs"
	"investment-agent/internal/history"
	"investment-agent/internal/interfaces"
	"investment-agent/internal/llm"
	"investment-agent/internal/llm/claude"
	"investment-agent/internal/llm/gemini"
	"investment-agent/internal/llm/grok"
	"investment-agent/internal/llm/llmobs"
	"investment-agent/internal/llm/noop"
	"investment-agent/internal/logger"
	"investment-agent/internal/market"
	"investment-agent/internal/metrics"
	"investment-agent/internal/quotes"
	"investment-agent/internal/recommend"
	"investment-agent/internal/sources/marketaux"
	"investment-agent/internal/sources/reddit"
	"investment-agent/internal/sources/stocktwits"
	"investment-agent/internal/store"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("AGENT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

func loadSecrets(ctx context.Context) (*store.Secrets, error) {
	secrets, err := store.LoadSecrets()
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load secrets", err)
		return nil, err
	}
	return secrets, nil
}

// initializeCache picks Redis when an address is configured and it answers a
// ping, otherwise an in-process TTL cache.
func initializeCache(ctx context.Context, cfg *store.Config, secrets *store.Secrets) cache.ReadingCache {
	ttl := cfg.CacheTTL()
	if ttl == 0 {
		return nil
	}

	if secrets.RedisAddr != "" {
		r := cache.NewRedis(secrets.RedisAddr, ttl)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			logger.Warn(ctx, "Redis unreachable, using in-memory cache",
				"addr", secrets.RedisAddr, "error", err.Error())
		} else {
			logger.Info(ctx, "Using Redis reading cache", "addr", secrets.RedisAddr)
			return r
		}
	}
	return cache.NewMemory(ttl)
}

// initializeAnalyst builds the configured AI fallback analyst with
// observability. Misconfiguration degrades to the noop analyst instead of
// failing startup; the fusion engine treats a failed fallback gracefully
// anyway.
func initializeAnalyst(ctx context.Context, cfg *store.Config, secrets *store.Secrets) interfaces.Analyst {
	opts := llm.Options{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		System:      cfg.LLM.System,
	}

	var analyst interfaces.Analyst
	switch cfg.LLM.Provider {
	case "GROK":
		analyst = grok.New(secrets.GrokKey, os.Getenv("GROK_ENDPOINT"), opts)
	case "CLAUDE":
		analyst = claude.New(secrets.ClaudeKey, opts)
	case "GEMINI":
		g, err := gemini.New(ctx, secrets.GeminiKey, opts)
		if err != nil {
			logger.Warn(ctx, "Gemini client failed to initialize - using Noop analyst", "error", err.Error())
			analyst = noop.New()
		} else {
			analyst = g
		}
	default:
		analyst = noop.New()
		logger.Warn(ctx, "No LLM provider configured - using Noop analyst (always neutral)")
	}

	return llmobs.Wrap(analyst)
}

// initializeFuser wires the primary sources and fallback analyst into the
// fusion engine with observability.
func initializeFuser(cfg *store.Config, secrets *store.Secrets, analyst interfaces.Analyst, hist *history.Store) interfaces.Fuser {
	ctx := context.Background()
	readingCache := initializeCache(ctx, cfg, secrets)
	timeout := cfg.SourceTimeout()

	primaries := []fusion.Primary{
		{Role: types.SourceNews, Source: marketaux.New(secrets.MarketAuxKey, readingCache, timeout)},
		{Role: types.SourceSocialPrimary, Source: stocktwits.New(secrets.StockTwitsToken, timeout)},
		{Role: types.SourceSocialSecondary, Source: reddit.New(secrets.RedditUserAgent, timeout)},
	}

	engine := fusion.New(fusion.Config{
		Weights:             cfg.Weights(),
		ConfidenceThreshold: cfg.Sentiment.ConfidenceThreshold,
		SourceTimeout:       timeout,
		FallbackMode:        cfg.Sentiment.FallbackMode,
		FallbackWeight:      cfg.Sentiment.FallbackWeight,
	}, primaries, analyst)
	if hist != nil {
		engine.WithHistory(hist)
	}

	return fusionobs.Wrap(engine)
}

// initializeHistory connects to Postgres when DATABASE_URL is set. History is
// optional; without it recommendations are simply not persisted.
func initializeHistory(ctx context.Context, secrets *store.Secrets) *history.Store {
	if secrets.DatabaseURL == "" {
		logger.Info(ctx, "DATABASE_URL not set - history persistence disabled")
		return nil
	}
	hist, err := history.Open(secrets.DatabaseURL)
	if err != nil {
		logger.Warn(ctx, "History store unavailable - continuing without persistence", "error", err.Error())
		return nil
	}
	logger.Info(ctx, "History persistence enabled")
	return hist
}

// initializeRecommender builds the recommendation engine on top of the fuser.
func initializeRecommender(ctx context.Context, cfg *store.Config, secrets *store.Secrets, fuser interfaces.Fuser) interfaces.Recommender {
	var quoteClient *quotes.Client
	if secrets.AlphaVantageKey != "" {
		quoteClient = quotes.NewClient(secrets.AlphaVantageKey)
	} else {
		logger.Warn(ctx, "ALPHA_VANTAGE_API_KEY not set - technical component neutral")
	}

	var marketClient *market.Client
	if cfg.Market.Enabled {
		marketClient = market.NewClient(secrets.FREDKey)
	}

	return recommend.New(fuser, quoteClient, marketClient, recommend.Weights{
		Sentiment: cfg.Recommend.SentimentWeight,
		Technical: cfg.Recommend.TechnicalWeight,
		Market:    cfg.Recommend.MarketWeight,
	})
}

// startMetrics exposes /metrics when an address is configured.
func startMetrics(ctx context.Context, cfg *store.Config) {
	if cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		logger.Info(ctx, "Metrics listener started", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.ErrorWithErr(ctx, "Metrics listener failed", err)
		}
	}()
}

// scheduleExport runs the CSV exporter on the configured cron schedule and
// returns a stop function.
func scheduleExport(ctx context.Context, schedule string, exporter *export.Exporter, latest *snapshot) func() {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		recs := latest.get()
		if len(recs) == 0 {
			logger.Warn(ctx, "Export skipped - no recommendations yet")
			return
		}
		if path, err := exporter.WriteSnapshot(ctx, recs); err != nil {
			logger.ErrorWithErr(ctx, "Scheduled export failed", err)
		} else {
			logger.Info(ctx, "Scheduled export written", "path", path)
		}
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Invalid export schedule - scheduled export disabled", err, "schedule", schedule)
		return func() {}
	}
	c.Start()
	return func() { <-c.Stop().Done() }
}
