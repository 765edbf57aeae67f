package health

import (
	"testing"
	"time"

	"github.com/stockpulse/backend/internal/stocks"
)

// makeBars builds n bars ordered most-recent-first. closes and volumes are
// indexed the same way: index 0 is the most recent bar.
func makeBars(closes []float64, volumes []int64) []stocks.PriceBar {
	bars := make([]stocks.PriceBar, len(closes))
	base := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		vol := int64(1000)
		if volumes != nil {
			vol = volumes[i]
		}
		bars[i] = stocks.PriceBar{
			Ticker: "TEST.NS",
			Date:   base.AddDate(0, 0, -i),
			Open:   closes[i],
			Close:  closes[i],
			Volume: vol,
		}
	}
	return bars
}

func flatBars(n int, close float64, volume int64) []stocks.PriceBar {
	closes := make([]float64, n)
	volumes := make([]int64, n)
	for i := range closes {
		closes[i] = close
		volumes[i] = volume
	}
	return makeBars(closes, volumes)
}

func makeNews(sentiments ...float64) []stocks.NewsItem {
	news := make([]stocks.NewsItem, len(sentiments))
	base := time.Date(2024, 6, 14, 18, 0, 0, 0, time.UTC)
	for i, s := range sentiments {
		news[i] = stocks.NewsItem{
			Ticker:      "TEST.NS",
			Headline:    "headline",
			Sentiment:   s,
			PublishedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return news
}

func TestScore_NoBars(t *testing.T) {
	got := Score(nil, nil)

	if got.Score != 0 {
		t.Errorf("Score with no bars = %d, want 0", got.Score)
	}
	if got.Label != LabelRiskySell {
		t.Errorf("Label with no bars = %q, want %q", got.Label, LabelRiskySell)
	}

	// News without bars still scores 0
	got = Score(nil, makeNews(0.9, 0.9, 0.9))
	if got.Score != 0 {
		t.Errorf("Score with news but no bars = %d, want 0", got.Score)
	}
}

func TestScore_FlatShortHistory(t *testing.T) {
	// 5 identical bars: no gate reaches its threshold, base score stands
	bars := flatBars(5, 10, 100)

	got := Score(bars, nil)
	if got.Score != 40 {
		t.Errorf("Score = %d, want 40", got.Score)
	}
	if got.Label != LabelRiskySell {
		t.Errorf("Label = %q, want %q", got.Label, LabelRiskySell)
	}
}

func TestScore_MomentumVolumeAndSentiment(t *testing.T) {
	// 60 bars with the most recent close highest, recent volume above past
	// volume, and clearly positive news: 40 + 20 + 10 + 10 = 80.
	closes := make([]float64, 60)
	volumes := make([]int64, 60)
	for i := range closes {
		closes[i] = 100 - float64(i) // rising toward the present
		volumes[i] = 1000
	}
	for i := 0; i < 5; i++ {
		volumes[i] = 2000
	}
	bars := makeBars(closes, volumes)
	news := makeNews(0.5, 0.6, 0.4)

	got := Score(bars, news)
	if got.Score != 80 {
		t.Errorf("Score = %d, want 80", got.Score)
	}
	if got.Label != LabelStrongBuy {
		t.Errorf("Label = %q, want %q", got.Label, LabelStrongBuy)
	}
}

func TestScore_GoldenCrossRequiresShortAverage(t *testing.T) {
	// 200 bars where the older half is much cheaper, so sma50 > sma200,
	// but the latest close sits below sma50: the short-term bonus fails
	// while the long-term bonus still applies because sma50 was computed.
	closes := make([]float64, 200)
	for i := range closes {
		if i < 50 {
			closes[i] = 100
		} else {
			closes[i] = 10
		}
	}
	closes[0] = 50 // below sma50 (~99), above nothing else
	bars := makeBars(closes, nil)

	got := Score(bars, nil)
	// 40 base + 0 short-term + 20 golden cross + 0 volume
	if got.Score != 60 {
		t.Errorf("Score = %d, want 60", got.Score)
	}
}

func TestScore_NoGoldenCrossBelowShortWindow(t *testing.T) {
	// Fewer than 50 bars: neither trend bonus can fire regardless of shape
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10
	}
	bars := makeBars(closes, nil)

	got := Score(bars, nil)
	if got.Score != 40 {
		t.Errorf("Score = %d, want 40", got.Score)
	}
}

func TestScore_AllBonusesClampAt100(t *testing.T) {
	// Every gate passes: 40 + 20 + 20 + 10 + 10 caps at exactly 100
	closes := make([]float64, 250)
	volumes := make([]int64, 250)
	for i := range closes {
		if i < 50 {
			closes[i] = 100
		} else {
			closes[i] = 10
		}
		volumes[i] = 1000
	}
	closes[0] = 200 // above sma50
	for i := 0; i < 5; i++ {
		volumes[i] = 5000
	}
	bars := makeBars(closes, volumes)
	news := makeNews(0.8, 0.9, 0.7, 0.6, 0.8)

	got := Score(bars, news)
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.Label != LabelStrongBuy {
		t.Errorf("Label = %q, want %q", got.Label, LabelStrongBuy)
	}

	// Only the most recent 200 bars may participate: bars beyond the
	// window must not change the result.
	if again := Score(bars[:200], news); again != got {
		t.Errorf("truncated window changed result: %+v vs %+v", again, got)
	}
}

func TestScore_NegativeSentimentPenalty(t *testing.T) {
	bars := flatBars(5, 10, 100)
	news := makeNews(-0.5, -0.4, -0.6)

	got := Score(bars, news)
	if got.Score != 30 {
		t.Errorf("Score = %d, want 30", got.Score)
	}
	if got.Label != LabelRiskySell {
		t.Errorf("Label = %q, want %q", got.Label, LabelRiskySell)
	}
}

func TestScore_NeutralSentimentNoChange(t *testing.T) {
	bars := flatBars(5, 10, 100)

	tests := []struct {
		name string
		news []stocks.NewsItem
	}{
		{"exactly upper threshold", makeNews(0.2, 0.2, 0.2)},
		{"exactly lower threshold", makeNews(-0.2, -0.2, -0.2)},
		{"mixed averaging to zero", makeNews(0.5, -0.5)},
		{"no news", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(bars, tt.news)
			if got.Score != 40 {
				t.Errorf("Score = %d, want 40", got.Score)
			}
		})
	}
}

func TestScore_UsesAtMostFiveNewsItems(t *testing.T) {
	bars := flatBars(5, 10, 100)

	// Five strongly negative recent items followed by many positive older
	// ones: only the recent five participate.
	news := makeNews(-0.9, -0.9, -0.9, -0.9, -0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9)

	got := Score(bars, news)
	if got.Score != 30 {
		t.Errorf("Score = %d, want 30 (only the 5 most recent items count)", got.Score)
	}
}

func TestScore_Idempotent(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	bars := makeBars(closes, nil)
	news := makeNews(0.5, 0.1, -0.3)

	first := Score(bars, news)
	for i := 0; i < 10; i++ {
		if again := Score(bars, news); again != first {
			t.Fatalf("Score not idempotent: run %d gave %+v, first gave %+v", i, again, first)
		}
	}
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, LabelRiskySell},
		{49, LabelRiskySell},
		{50, LabelHold},
		{69, LabelHold},
		{70, LabelStrongBuy},
		{100, LabelStrongBuy},
	}

	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}

	// Exhaustive partition over the whole range
	for s := 0; s <= 100; s++ {
		label := LabelFor(s)
		switch {
		case s >= 70 && label != LabelStrongBuy:
			t.Errorf("LabelFor(%d) = %q, want %q", s, label, LabelStrongBuy)
		case s >= 50 && s < 70 && label != LabelHold:
			t.Errorf("LabelFor(%d) = %q, want %q", s, label, LabelHold)
		case s < 50 && label != LabelRiskySell:
			t.Errorf("LabelFor(%d) = %q, want %q", s, label, LabelRiskySell)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, want int
	}{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{140, 100},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, 0, 100); got != tt.want {
			t.Errorf("clamp(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
