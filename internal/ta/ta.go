// Package ta computes technical indicators over a daily close series and
// condenses them into a 0-100 trend score.
package ta

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"investment-agent/internal/types"
)

// MinCloses is the shortest series the indicator set can be computed on. The
// 50-period moving average is the binding constraint.
const MinCloses = 50

// Compute derives the indicator summary from closes, oldest first.
func Compute(closes []float64) (types.Indicators, error) {
	if len(closes) < MinCloses {
		return types.Indicators{}, fmt.Errorf("ta: need at least %d closes, got %d", MinCloses, len(closes))
	}

	sma20 := talib.Sma(closes, 20)
	sma50 := talib.Sma(closes, 50)
	rsi := talib.Rsi(closes, 14)
	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	upper, middle, lower := talib.BBands(closes, 20, 2.0, 2.0, talib.SMA)

	last := len(closes) - 1
	return types.Indicators{
		SMA20:      sma20[last],
		SMA50:      sma50[last],
		RSI:        rsi[last],
		MACD:       macd[last],
		MACDSignal: signal[last],
		MACDHist:   hist[last],
		BBUpper:    upper[last],
		BBMiddle:   middle[last],
		BBLower:    lower[last],
	}, nil
}

// Score condenses the indicators into a 0-100 trend score given the latest
// price. Counts bullish versus bearish signals: RSI extremes and mid-range,
// MACD histogram sign, and price against both moving averages.
func Score(ind types.Indicators, price float64) float64 {
	var bullish, bearish float64

	switch {
	case ind.RSI > 70:
		bearish++
	case ind.RSI < 30:
		bullish++
	case ind.RSI > 40 && ind.RSI < 60:
		bullish += 0.5
	}

	if ind.MACDHist > 0 {
		bullish++
	} else {
		bearish++
	}

	if price > ind.SMA20 {
		bullish++
	} else {
		bearish++
	}
	if price > ind.SMA50 {
		bullish++
	} else {
		bearish++
	}

	total := bullish + bearish
	if total == 0 {
		return 50
	}
	return bullish / total * 100
}
