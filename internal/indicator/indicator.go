package indicator

import "math"

// ============================================================================
// CORE INDICATORS
// ============================================================================

// CalculateMomentum maps a 24h percent change onto a 0-1 momentum score.
// A 10% move (either direction) saturates the score.
func CalculateMomentum(change24h float64) float64 {
	return math.Min(1.0, math.Abs(change24h)/10.0)
}

// CalculateRSIApprox derives an RSI-like value from a single 24h change.
// This is intentionally not a Wilder RSI: the engine works from a ticker
// snapshot, not a candle series, so relative strength is approximated from
// the one available change sample. Returns neutral 50 when the change is
// zero (the raw formula degenerates there).
func CalculateRSIApprox(change24h float64) float64 {
	if change24h == 0 {
		return 50.0
	}

	var rs float64
	if change24h > 0 {
		rs = change24h
	} else {
		rs = 1.0 / math.Abs(change24h)
	}

	return 100.0 - (100.0 / (1.0 + rs))
}

// CalculateVolatility converts a 24h percent change into a volatility
// fraction.
func CalculateVolatility(change24h float64) float64 {
	return math.Abs(change24h) / 100.0
}

// CalculateEnhancedVolatility widens the change-based volatility with the
// 24h high/low range. Returns the change-based value when the price is not
// usable.
func CalculateEnhancedVolatility(change24h, high, low, price float64) float64 {
	vol := CalculateVolatility(change24h)
	if price <= 0 || high < low {
		return vol
	}

	rangePct := (high - low) / price * 100.0
	return math.Max(vol, rangePct/100.0)
}

// ============================================================================
// MARKET REGIME
// ============================================================================

// Regime is a coarse market classification used to partition learned
// outcomes.
type Regime string

const (
	RegimeTrending Regime = "trending"
	RegimeRanging  Regime = "ranging"
	RegimeVolatile Regime = "volatile"
)

// ClassifyRegime buckets the market by volatility first, then trend.
// The volatility check takes precedence: a 6% range day is
// "volatile" even when the net change also exceeds the trend threshold.
func ClassifyRegime(change24h, volatilityPct float64) Regime {
	if volatilityPct > 5.0 {
		return RegimeVolatile
	}
	if math.Abs(change24h) > 3.0 {
		return RegimeTrending
	}
	return RegimeRanging
}

// ============================================================================
// FIBONACCI SUPPORT / RESISTANCE
// ============================================================================

var fibRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}

// CalculateFibonacciLevels derives support and resistance from standard
// retracement ratios over the 24h range. Support is the highest level below
// the current price, resistance the lowest level above it; when no level
// qualifies the bands fall back to +/-5% of the current price.
func CalculateFibonacciLevels(high, low, current float64) (support, resistance float64) {
	support = current * 0.95
	resistance = current * 1.05

	if high <= low {
		return support, resistance
	}

	span := high - low
	bestSupport := math.Inf(-1)
	bestResistance := math.Inf(1)

	for _, r := range fibRatios {
		level := low + r*span
		if level < current && level > bestSupport {
			bestSupport = level
		}
		if level > current && level < bestResistance {
			bestResistance = level
		}
	}

	if !math.IsInf(bestSupport, -1) {
		support = bestSupport
	}
	if !math.IsInf(bestResistance, 1) {
		resistance = bestResistance
	}
	return support, resistance
}

// ============================================================================
// COMPOSITE SCORES
// ============================================================================

// CalculateTrendStrength blends momentum with the raw change magnitude.
// A 5% daily move counts as a fully developed trend.
func CalculateTrendStrength(change24h, momentum float64) float64 {
	changeComponent := math.Min(1.0, math.Abs(change24h)/5.0)
	return clamp01(0.6*momentum + 0.4*changeComponent)
}

// CalculateVolumeStrength scores 24h volume against a 1M reference with a
// small momentum kicker. Zero or negative volume scores zero participation.
func CalculateVolumeStrength(volume, momentum float64) float64 {
	if volume <= 0 {
		return 0
	}
	volumeComponent := math.Min(1.0, volume/1_000_000.0)
	return clamp01(0.7*volumeComponent + 0.3*momentum)
}

// CalculateMarketCorrelation estimates how aligned the symbol is with the
// broad market from trend strength and sentiment agreement.
func CalculateMarketCorrelation(trendStrength, sentimentScore float64) float64 {
	return clamp01(0.5 + 0.35*trendStrength + 0.15*sentimentScore)
}

// CalculateVolatilityForecast projects near-term volatility: current
// volatility persists, amplified when momentum is high.
func CalculateVolatilityForecast(volatility, momentum float64) float64 {
	return volatility * (0.8 + 0.4*momentum)
}

// CalculateMicrostructure places the current price within the 24h range
// (0 = at the low, 1 = at the high). Neutral 0.5 for a degenerate range.
func CalculateMicrostructure(high, low, current float64) float64 {
	if high <= low {
		return 0.5
	}
	return clamp01((current - low) / (high - low))
}

// CalculateMarketStrength is the composite health score: momentum, volume
// participation, trend and RSI position, weighted toward momentum.
func CalculateMarketStrength(momentum, volumeStrength, trendStrength, rsi float64) float64 {
	return clamp01(0.3*momentum + 0.25*volumeStrength + 0.25*trendStrength + 0.2*(rsi/100.0))
}

// CalculateProfitPotential estimates upside from momentum, trend and
// participation.
func CalculateProfitPotential(momentum, trendStrength, volumeStrength float64) float64 {
	return clamp01(0.4*momentum + 0.3*trendStrength + 0.3*volumeStrength)
}

// CalculateRiskLevel scores trade risk: volatility dominates, thin volume
// raises it, strong momentum adds chase risk.
func CalculateRiskLevel(volatility, volumeStrength, momentum float64) float64 {
	volComponent := math.Min(1.0, volatility*10.0)
	return clamp01(0.5*volComponent + 0.3*(1.0-volumeStrength) + 0.2*momentum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
