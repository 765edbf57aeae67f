package health

import (
	"github.com/stockpulse/backend/internal/stocks"
)

// Health labels, mapped exhaustively from the final score.
const (
	LabelStrongBuy = "Strong Buy"
	LabelHold      = "Hold"
	LabelRiskySell = "Risky Sell"
)

// Scoring windows and weights.
const (
	baseScore = 40

	maxBarWindow   = 200 // bars considered at most
	shortTrendBars = 50  // SMA window for the short-term trend check
	longTrendBars  = 200 // SMA window for the golden-cross check
	volumeBars     = 10  // bars needed for the volume-momentum check
	volumeHalf     = 5
	newsWindow     = 5 // headlines considered at most
	sentimentUpper = 0.2
	sentimentLower = -0.2
	trendBonus     = 20
	volumeBonus    = 10
	sentimentDelta = 10
)

// Assessment is the derived health of one ticker. It is recomputed on
// every read and never persisted.
type Assessment struct {
	Score int    `json:"health_score"`
	Label string `json:"health_badge"`
}

// Score computes the 0-100 health score and label for one ticker.
//
// bars must be ordered most-recent-first and news most-recent-first; the
// repository is the only producer of both sequences and orders them in SQL,
// so the engine does not re-sort. The function is total: zero-length inputs
// score 0, short histories simply skip the gates they cannot satisfy.
func Score(bars []stocks.PriceBar, news []stocks.NewsItem) Assessment {
	if len(bars) == 0 {
		return Assessment{Score: 0, Label: LabelFor(0)}
	}

	score := baseScore

	window := bars
	if len(window) > maxBarWindow {
		window = window[:maxBarWindow]
	}
	latest := window[0].Close

	// Short-term trend: latest close above the 50-day average.
	// sma50 is carried forward because the golden-cross stage below is
	// gated on it having been computed, not on window length alone.
	var sma50 float64
	haveSMA50 := false
	if len(window) >= shortTrendBars {
		sma50 = meanClose(window[:shortTrendBars])
		haveSMA50 = true
		if latest > sma50 {
			score += trendBonus
		}
	}

	// Long-term trend: 50-day average above the 200-day average
	if len(window) >= longTrendBars && haveSMA50 {
		sma200 := meanClose(window[:longTrendBars])
		if sma50 > sma200 {
			score += trendBonus
		}
	}

	// Volume momentum: recent 5-day average volume above the prior 5 days
	if len(window) >= volumeBars {
		recentVol := meanVolume(window[:volumeHalf])
		pastVol := meanVolume(window[volumeHalf:volumeBars])
		if recentVol > pastVol {
			score += volumeBonus
		}
	}

	// News sentiment: average of the 5 most recent headlines
	recent := news
	if len(recent) > newsWindow {
		recent = recent[:newsWindow]
	}
	if len(recent) > 0 {
		avg := meanSentiment(recent)
		if avg > sentimentUpper {
			score += sentimentDelta
		} else if avg < sentimentLower {
			score -= sentimentDelta
		}
	}

	score = clamp(score, 0, 100)
	return Assessment{Score: score, Label: LabelFor(score)}
}

// LabelFor maps a final score to its label. The three ranges partition
// [0,100] with no gaps or overlap.
func LabelFor(score int) string {
	switch {
	case score >= 70:
		return LabelStrongBuy
	case score >= 50:
		return LabelHold
	default:
		return LabelRiskySell
	}
}

func meanClose(bars []stocks.PriceBar) float64 {
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

func meanVolume(bars []stocks.PriceBar) float64 {
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars))
}

func meanSentiment(news []stocks.NewsItem) float64 {
	var sum float64
	for _, n := range news {
		sum += n.Sentiment
	}
	return sum / float64(len(news))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
