// Package lexicon scores raw financial text with Loughran-McDonald style
// word lists. It is the offline stand-in for a hosted classifier: sources
// that only return raw text (social posts, scraped headlines) run it to get
// a score/confidence pair in the same shape the API-backed sources produce.
package lexicon

import (
	"strings"
	"unicode"

	"investment-agent/internal/types"
)

// Analyzer scores text batches against financial sentiment word lists
type Analyzer struct {
	positiveWords    map[string]bool
	negativeWords    map[string]bool
	uncertaintyWords map[string]bool
}

// NewAnalyzer creates a new lexicon analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positiveWords:    loadPositiveWords(),
		negativeWords:    loadNegativeWords(),
		uncertaintyWords: loadUncertaintyWords(),
	}
}

// Result is the outcome of scoring a batch of texts.
type Result struct {
	Score       float64 // -1.0 to 1.0
	Confidence  float64 // 0.0 to 1.0
	TotalWords  int
	Positive    int
	Negative    int
	Uncertainty int
}

// ScoreTexts scores a batch of texts as one signal. An empty batch scores
// neutral with zero confidence.
func (a *Analyzer) ScoreTexts(texts []string) Result {
	var res Result
	for _, text := range texts {
		words := tokenize(strings.ToLower(text))
		res.TotalWords += len(words)
		for _, w := range words {
			if a.positiveWords[w] {
				res.Positive++
			}
			if a.negativeWords[w] {
				res.Negative++
			}
			if a.uncertaintyWords[w] {
				res.Uncertainty++
			}
		}
	}

	if res.TotalWords == 0 {
		return res
	}

	posRatio := float64(res.Positive) / float64(res.TotalWords)
	negRatio := float64(res.Negative) / float64(res.TotalWords)
	uncRatio := float64(res.Uncertainty) / float64(res.TotalWords)

	// Sentiment words are a few percent of typical financial text; amplify
	// the net ratio into a usable signal and damp it by hedging language.
	net := (posRatio - negRatio) * 10
	net *= 1.0 - types.Clamp(uncRatio*20, 0, 1)*0.5
	res.Score = types.Clamp(net, -1.0, 1.0)

	// Confidence follows how much of the text carried signal at all.
	hits := float64(res.Positive + res.Negative)
	res.Confidence = types.Clamp(hits/float64(res.TotalWords)*12, 0, 1)
	if hits == 0 {
		res.Confidence = 0.1 // no signal, not no answer
	}
	return res
}

func tokenize(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

// Word lists based on financial sentiment dictionaries
// (Loughran-McDonald financial sentiment word lists)

func loadPositiveWords() map[string]bool {
	words := []string{
		"achieve", "attain", "beat", "beats", "benefit", "better", "breakout",
		"bullish", "competitive", "delight", "dividend", "enhance", "excellent",
		"exceptional", "extraordinary", "favorable", "gain", "gains", "good",
		"great", "grew", "growth", "improve", "improved", "improvement",
		"innovation", "innovative", "leader", "leading", "opportunity",
		"optimal", "optimistic", "outperform", "positive", "profit",
		"profitable", "progress", "prosper", "rally", "record", "recovery",
		"remarkable", "robust", "solid", "strength", "strong", "succeed",
		"success", "successful", "superior", "surge", "surpass", "tremendous",
		"upbeat", "upgrade", "valuable", "winning",
	}
	m := make(map[string]bool)
	for _, w := range words {
		m[w] = true
	}
	return m
}

func loadNegativeWords() map[string]bool {
	words := []string{
		"abandon", "adverse", "bearish", "challenge", "challenging", "concern",
		"concerns", "correction", "crash", "crisis", "damage", "decline",
		"decrease", "default", "deficit", "deteriorate", "difficult",
		"difficulty", "disappoint", "disappointing", "downgrade", "downturn",
		"erode", "fail", "failure", "falling", "fear", "fraud", "headwind",
		"impair", "impairment", "inadequate", "investigation", "lawsuit",
		"loss", "losses", "miss", "missed", "negative", "obstacle", "plunge",
		"poor", "problem", "recession", "restructuring", "risk", "risks",
		"selloff", "slowdown", "slump", "uncertain", "uncertainty",
		"underperform", "unfavorable", "unprofitable", "volatile",
		"volatility", "warning", "weak", "weakness", "worse", "worsen",
		"worst",
	}
	m := make(map[string]bool)
	for _, w := range words {
		m[w] = true
	}
	return m
}

func loadUncertaintyWords() map[string]bool {
	words := []string{
		"almost", "anticipate", "anticipates", "appear", "appears",
		"approximately", "assume", "assumes", "believe", "believes", "could",
		"depend", "depending", "estimate", "estimates", "expect", "expects",
		"forecast", "forecasts", "likely", "may", "maybe", "might", "outlook",
		"pending", "perhaps", "possible", "possibly", "potential", "predict",
		"predicts", "project", "projects", "should", "somewhat", "suggest",
		"suggests", "unclear", "unlikely", "variable", "would",
	}
	m := make(map[string]bool)
	for _, w := range words {
		m[w] = true
	}
	return m
}
