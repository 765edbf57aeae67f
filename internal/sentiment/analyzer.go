// Package sentiment scores headline text on a [-1, 1] scale.
//
// The Analyzer type is the boundary: ingestion only depends on the
// function signature, so the lexicon scorer below can be swapped for an
// external model without touching the ingestion path.
package sentiment

import (
	"math"
	"strings"
)

// Analyzer maps a piece of text to a sentiment score in [-1, 1], where
// -1 is most negative and 1 is most positive.
type Analyzer func(text string) float64

// Word weights for the default financial-news lexicon. Values follow the
// usual valence convention: roughly -4 (most negative) to +4 (most
// positive), normalized at the end.
var lexicon = map[string]float64{
	// positive
	"gain": 1.8, "gains": 1.8, "surge": 2.4, "surges": 2.4, "soar": 2.6,
	"soars": 2.6, "rally": 2.0, "rallies": 2.0, "jump": 1.8, "jumps": 1.8,
	"rise": 1.4, "rises": 1.4, "climb": 1.4, "climbs": 1.4, "beat": 1.6,
	"beats": 1.6, "record": 1.5, "strong": 1.7, "growth": 1.6, "profit": 1.5,
	"profits": 1.5, "upgrade": 1.9, "upgrades": 1.9, "upgraded": 1.9,
	"outperform": 2.0, "buy": 1.2, "bullish": 2.2, "win": 1.8, "wins": 1.8,
	"boost": 1.6, "boosts": 1.6, "expand": 1.2, "expands": 1.2,
	"recovery": 1.4, "dividend": 0.8, "approval": 1.4, "approved": 1.4,
	"positive": 1.5, "high": 0.9, "higher": 1.1, "best": 2.0, "top": 1.0,
	"success": 1.9, "successful": 1.9, "robust": 1.5, "momentum": 1.0,

	// negative
	"fall": -1.4, "falls": -1.4, "drop": -1.6, "drops": -1.6, "plunge": -2.6,
	"plunges": -2.6, "crash": -3.0, "crashes": -3.0, "slump": -2.2,
	"slumps": -2.2, "sink": -1.8, "sinks": -1.8, "tumble": -2.0,
	"tumbles": -2.0, "decline": -1.4, "declines": -1.4, "loss": -1.7,
	"losses": -1.7, "miss": -1.5, "misses": -1.5, "weak": -1.6,
	"downgrade": -1.9, "downgrades": -1.9, "downgraded": -1.9,
	"underperform": -2.0, "sell": -1.2, "bearish": -2.2, "fraud": -3.2,
	"probe": -1.8, "investigation": -1.8, "lawsuit": -2.0, "fine": -1.3,
	"fined": -1.3, "penalty": -1.5, "debt": -1.0, "default": -2.4,
	"bankruptcy": -3.4, "layoff": -2.2, "layoffs": -2.2, "cut": -1.1,
	"cuts": -1.2, "warning": -1.6, "warns": -1.6, "risk": -1.0,
	"risks": -1.0, "fear": -1.8, "fears": -1.8, "negative": -1.5,
	"low": -0.9, "lower": -1.1, "worst": -2.4, "scandal": -2.8,
	"crisis": -2.4, "recall": -1.6, "halt": -1.4, "halts": -1.4,
	"delay": -1.2, "delays": -1.2, "concern": -1.2, "concerns": -1.2,
}

// negators flip the valence of the following scored word
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"isnt": true, "wasnt": true, "dont": true, "doesnt": true,
	"wont": true, "cant": true,
}

// normalization constant; keeps small sums away from the extremes
const alpha = 15.0

// Lexicon returns the default lexicon-based analyzer
func Lexicon() Analyzer {
	return analyzeLexicon
}

// Neutral returns an analyzer that scores everything 0. Used in tests
// and as the fallback when analysis is disabled.
func Neutral() Analyzer {
	return func(string) float64 { return 0 }
}

func analyzeLexicon(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	negate := false
	for _, tok := range tokens {
		if negators[tok] {
			negate = true
			continue
		}

		if valence, ok := lexicon[tok]; ok {
			if negate {
				valence = -valence
			}
			sum += valence
		}
		negate = false
	}

	if sum == 0 {
		return 0
	}

	// Normalize the raw sum into (-1, 1)
	score := sum / math.Sqrt(sum*sum+alpha)
	return clampFloat(score, -1, 1)
}

// tokenize lowercases and strips everything except letters and digits
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '\'':
			return -1 // "isn't" -> "isnt"
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
