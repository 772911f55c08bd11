package types

import "math"

// Source identifies where a sentiment reading came from.
type Source string

const (
	SourceNews            Source = "news"
	SourceSocialPrimary   Source = "social_primary"
	SourceSocialSecondary Source = "social_secondary"
	SourceAIFallback      Source = "ai_fallback"
)

// Label classifies a fused sentiment score.
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
)

// LabelForScore maps a score to its label. Scores inside [-0.1, 0.1]
// inclusive are neutral.
func LabelForScore(score float64) Label {
	switch {
	case score > 0.1:
		return LabelPositive
	case score < -0.1:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// SentimentReading is one source's opinion about a symbol. Immutable once
// produced.
type SentimentReading struct {
	Source      Source  `json:"source"`
	Score       float64 `json:"score"`      // -1.0 to 1.0
	Confidence  float64 `json:"confidence"` // 0.0 to 1.0
	SampleCount int     `json:"sample_count"`
	Timestamp   int64   `json:"timestamp"`
}

// FusionWeights holds the configured weight of each primary source. They sum
// to 1.0 when all three sources are present; the fusion engine renormalizes
// over whatever subset is actually available.
type FusionWeights struct {
	News            float64 `json:"news"`
	SocialPrimary   float64 `json:"social_primary"`
	SocialSecondary float64 `json:"social_secondary"`
}

// UnifiedSentiment is the fused result for one symbol. Computed fresh per
// query and never mutated after creation.
type UnifiedSentiment struct {
	Symbol              string             `json:"symbol"`
	Score               float64            `json:"score"`
	Label               Label              `json:"label"`
	Confidence          float64            `json:"confidence"`
	ContributingSources []SentimentReading `json:"contributing_sources"`
	UsedFallback        bool               `json:"used_fallback"`
	Timestamp           int64              `json:"timestamp"`
}

// MarketConditions summarizes macro indicators and the derived risk posture.
type MarketConditions struct {
	VIX               float64  `json:"vix"`
	Inflation         float64  `json:"inflation"`
	Unemployment      float64  `json:"unemployment"`
	FedFundsRate      float64  `json:"fed_funds_rate"`
	ConsumerSentiment float64  `json:"consumer_sentiment"`
	RiskScore         int      `json:"risk_score"`
	Condition         string   `json:"condition"`
	RiskDetails       []string `json:"risk_details,omitempty"`
}

// Indicators holds the technical summary computed from a daily close series.
type Indicators struct {
	SMA20      float64 `json:"sma_20"`
	SMA50      float64 `json:"sma_50"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
}

// Quote is a daily close series for a symbol, oldest first.
type Quote struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
	Latest float64   `json:"latest"`
	Time   int64     `json:"time"`
}

// Recommendation is the final consumer-facing output for one symbol.
type Recommendation struct {
	Symbol         string           `json:"symbol"`
	Action         string           `json:"action"` // STRONG_BUY, BUY, HOLD, SELL
	CompositeScore float64          `json:"composite_score"`
	Price          float64          `json:"price,omitempty"`
	Sentiment      UnifiedSentiment `json:"sentiment"`
	Market         string           `json:"market_condition,omitempty"`
	Commentary     string           `json:"commentary"`
	Time           int64            `json:"time"`
}
