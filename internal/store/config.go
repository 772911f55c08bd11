package store

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"investment-agent/internal/types"
)

// Config is the yaml-backed application configuration. API keys and other
// secrets live in the environment, see Secrets.
type Config struct {
	PollSeconds int      `yaml:"poll_seconds" validate:"gte=0"`
	Universe    []string `yaml:"universe" validate:"min=1,dive,required"`

	Sentiment struct {
		NewsWeight            float64 `yaml:"news_weight" validate:"gte=0,lte=1"`
		SocialPrimaryWeight   float64 `yaml:"social_primary_weight" validate:"gte=0,lte=1"`
		SocialSecondaryWeight float64 `yaml:"social_secondary_weight" validate:"gte=0,lte=1"`
		ConfidenceThreshold   float64 `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
		FallbackMode          string  `yaml:"fallback_mode" validate:"oneof=replace blend"`
		FallbackWeight        float64 `yaml:"fallback_weight" validate:"gte=0,lte=1"`
		SourceTimeoutSeconds  int     `yaml:"source_timeout_seconds" validate:"gt=0"`
		CacheTTLMinutes       int     `yaml:"cache_ttl_minutes" validate:"gte=0"`
	} `yaml:"sentiment"`

	LLM struct {
		Provider    string  `yaml:"provider" validate:"oneof=GROK CLAUDE GEMINI NONE"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		System      string  `yaml:"system"`
	} `yaml:"llm"`

	Market struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"market"`

	Recommend struct {
		SentimentWeight float64 `yaml:"sentiment_weight" validate:"gte=0,lte=1"`
		TechnicalWeight float64 `yaml:"technical_weight" validate:"gte=0,lte=1"`
		MarketWeight    float64 `yaml:"market_weight" validate:"gte=0,lte=1"`
	} `yaml:"recommend"`

	Export struct {
		Enabled  bool   `yaml:"enabled"`
		Dir      string `yaml:"dir"`
		Schedule string `yaml:"schedule"` // cron expression
	} `yaml:"export"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Weights returns the configured fusion weights.
func (c *Config) Weights() types.FusionWeights {
	return types.FusionWeights{
		News:            c.Sentiment.NewsWeight,
		SocialPrimary:   c.Sentiment.SocialPrimaryWeight,
		SocialSecondary: c.Sentiment.SocialSecondaryWeight,
	}
}

// SourceTimeout returns the per-source timeout as a duration.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sentiment.SourceTimeoutSeconds) * time.Second
}

// CacheTTL returns the per-symbol reading cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Sentiment.CacheTTLMinutes) * time.Minute
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	sum := c.Sentiment.NewsWeight + c.Sentiment.SocialPrimaryWeight + c.Sentiment.SocialSecondaryWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("sentiment weights must sum to 1.0, got %.4f", sum)
	}
	wsum := c.Recommend.SentimentWeight + c.Recommend.TechnicalWeight + c.Recommend.MarketWeight
	if math.Abs(wsum-1.0) > 1e-9 {
		return fmt.Errorf("recommend weights must sum to 1.0, got %.4f", wsum)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.PollSeconds == 0 {
		c.PollSeconds = 900
	}
	s := &c.Sentiment
	if s.NewsWeight == 0 && s.SocialPrimaryWeight == 0 && s.SocialSecondaryWeight == 0 {
		s.NewsWeight = 0.4
		s.SocialPrimaryWeight = 0.3
		s.SocialSecondaryWeight = 0.3
	}
	if s.ConfidenceThreshold == 0 {
		s.ConfidenceThreshold = 0.7
	}
	if s.FallbackMode == "" {
		s.FallbackMode = "replace"
	}
	if s.FallbackWeight == 0 {
		s.FallbackWeight = 0.25
	}
	if s.SourceTimeoutSeconds == 0 {
		s.SourceTimeoutSeconds = 8
	}
	if s.CacheTTLMinutes == 0 {
		s.CacheTTLMinutes = 60
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}
	r := &c.Recommend
	if r.SentimentWeight == 0 && r.TechnicalWeight == 0 && r.MarketWeight == 0 {
		r.SentimentWeight = 0.5
		r.TechnicalWeight = 0.3
		r.MarketWeight = 0.2
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
	if c.Export.Schedule == "" {
		c.Export.Schedule = "0 22 * * *"
	}
}

// Secrets are environment-sourced credentials, loaded with envconfig after
// godotenv has pulled in any .env file.
type Secrets struct {
	MarketAuxKey    string `envconfig:"MARKETAUX_API_KEY"`
	AlphaVantageKey string `envconfig:"ALPHA_VANTAGE_API_KEY"`
	FREDKey         string `envconfig:"FRED_API_KEY"`
	StockTwitsToken string `envconfig:"STOCKTWITS_TOKEN"`
	RedditUserAgent string `envconfig:"REDDIT_USER_AGENT" default:"investment-agent/1.0"`
	GrokKey         string `envconfig:"GROK_API_KEY"`
	ClaudeKey       string `envconfig:"CLAUDE_API_KEY"`
	GeminiKey       string `envconfig:"GEMINI_API_KEY"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("loading secrets from env: %w", err)
	}
	return &s, nil
}
