package indicator

import (
	"ai-trading-engine/internal/market"
	"ai-trading-engine/internal/sentiment"
)

// TrendDirection is the coarse direction of the 24h move.
type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
)

// Analysis is the full derived view of one market snapshot. It is computed
// on demand, consumed by a strategy generator, then discarded; nothing in
// this struct is persisted.
type Analysis struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`

	TrendDirection  TrendDirection `json:"trend_direction"`
	Volatility      float64        `json:"volatility"`
	MomentumScore   float64        `json:"momentum_score"`
	SupportLevel    float64        `json:"support_level"`
	ResistanceLevel float64        `json:"resistance_level"`
	RSIValue        float64        `json:"rsi_value"`
	MarketRegime    Regime         `json:"market_regime"`
	NewsImpact      float64        `json:"news_impact"`     // 0.1 - 0.9
	SentimentScore  float64        `json:"sentiment_score"` // -1 - 1

	VolumeStrength     float64 `json:"volume_strength"`
	TrendStrength      float64 `json:"trend_strength"`
	MarketCorrelation  float64 `json:"market_correlation"`
	VolatilityForecast float64 `json:"volatility_forecast"`
	Microstructure     float64 `json:"microstructure"`
	MarketStrength     float64 `json:"market_strength"`
	ProfitPotential    float64 `json:"profit_potential"`
	RiskLevel          float64 `json:"risk_level"`
}

// Analyze derives the full Analysis for one snapshot. Sentiment comes from
// the caller's sentiment source reading; it is clamped to its contractual
// bounds here so downstream generators never see out-of-range values.
// Degenerate inputs (zero price, zero volume, inverted range) produce
// neutral defaults instead of errors.
func Analyze(snap *market.Snapshot, reading sentiment.Reading) *Analysis {
	reading = sentiment.ClampReading(reading)

	momentum := CalculateMomentum(snap.Change24h)
	volatility := CalculateEnhancedVolatility(snap.Change24h, snap.High24h, snap.Low24h, snap.CurrentPrice)
	rsi := CalculateRSIApprox(snap.Change24h)
	support, resistance := CalculateFibonacciLevels(snap.High24h, snap.Low24h, snap.CurrentPrice)
	regime := ClassifyRegime(snap.Change24h, volatility*100.0)

	trendStrength := CalculateTrendStrength(snap.Change24h, momentum)
	volumeStrength := CalculateVolumeStrength(snap.Volume, momentum)

	var direction TrendDirection
	switch {
	case snap.Change24h > 0.5:
		direction = TrendUp
	case snap.Change24h < -0.5:
		direction = TrendDown
	default:
		direction = TrendSideways
	}

	return &Analysis{
		Symbol:       snap.Symbol,
		CurrentPrice: snap.CurrentPrice,

		TrendDirection:  direction,
		Volatility:      volatility,
		MomentumScore:   momentum,
		SupportLevel:    support,
		ResistanceLevel: resistance,
		RSIValue:        rsi,
		MarketRegime:    regime,
		NewsImpact:      reading.NewsImpact,
		SentimentScore:  reading.Sentiment,

		VolumeStrength:     volumeStrength,
		TrendStrength:      trendStrength,
		MarketCorrelation:  CalculateMarketCorrelation(trendStrength, reading.Sentiment),
		VolatilityForecast: CalculateVolatilityForecast(volatility, momentum),
		Microstructure:     CalculateMicrostructure(snap.High24h, snap.Low24h, snap.CurrentPrice),
		MarketStrength:     CalculateMarketStrength(momentum, volumeStrength, trendStrength, rsi),
		ProfitPotential:    CalculateProfitPotential(momentum, trendStrength, volumeStrength),
		RiskLevel:          CalculateRiskLevel(volatility, volumeStrength, momentum),
	}
}
