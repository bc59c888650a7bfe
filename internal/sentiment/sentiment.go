package sentiment

import "context"

// Reading is one sentiment observation for a symbol.
// Sentiment is bounded to [-1, 1] (bearish to bullish) and NewsImpact to
// [0.1, 0.9]; providers outside those ranges are clamped by ClampReading.
type Reading struct {
	Sentiment  float64 `json:"sentiment"`
	NewsImpact float64 `json:"news_impact"`
}

// Source supplies sentiment readings. Implementations may wrap news feeds,
// fear/greed indexes, or social metrics.
type Source interface {
	Score(ctx context.Context, symbol string) (Reading, error)
}

// ClampReading forces a reading into its contractual bounds.
func ClampReading(r Reading) Reading {
	if r.Sentiment > 1 {
		r.Sentiment = 1
	} else if r.Sentiment < -1 {
		r.Sentiment = -1
	}
	if r.NewsImpact > 0.9 {
		r.NewsImpact = 0.9
	} else if r.NewsImpact < 0.1 {
		r.NewsImpact = 0.1
	}
	return r
}

// StaticSource returns a fixed reading. Used when no external feed is
// configured and in tests.
type StaticSource struct {
	Reading Reading
}

// NewNeutralSource returns a source reporting neutral sentiment with
// mid-range news impact.
func NewNeutralSource() *StaticSource {
	return &StaticSource{Reading: Reading{Sentiment: 0, NewsImpact: 0.5}}
}

func (s *StaticSource) Score(ctx context.Context, symbol string) (Reading, error) {
	return ClampReading(s.Reading), nil
}

// IndexSource adapts a 0-100 fear/greed style index into a Reading.
// 0 maps to extreme fear (-1), 100 to extreme greed (+1). News impact grows
// with distance from the neutral midpoint: extreme readings usually come
// with heavy news flow.
type IndexSource struct {
	Fetch func(ctx context.Context) (int, error)
}

func (s *IndexSource) Score(ctx context.Context, symbol string) (Reading, error) {
	idx, err := s.Fetch(ctx)
	if err != nil {
		return Reading{}, err
	}
	score := float64(idx)/50.0 - 1.0
	distance := score
	if distance < 0 {
		distance = -distance
	}
	return ClampReading(Reading{
		Sentiment:  score,
		NewsImpact: 0.1 + distance*0.8,
	}), nil
}
