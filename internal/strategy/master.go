package strategy

import (
	"fmt"

	"ai-trading-engine/internal/botconfig"
	"ai-trading-engine/internal/indicator"
)

// master runs every sub-strategy, keeps the highest-confidence result and
// re-weights it with the bot's learned history for the chosen (action,
// regime) bucket. Selection uses strict greater-than over the fixed
// evaluation order, so the earlier strategy wins exact confidence ties.
func (g *Generator) master(a *indicator.Analysis, cfg *botconfig.BotConfig) *Signal {
	var best *Signal
	for _, kind := range subStrategies {
		candidate, err := g.Generate(kind, a, cfg)
		if err != nil {
			continue
		}
		if best == nil || candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	chosen := *best
	chosen.Strategy = KindMaster

	if chosen.Action == ActionHold {
		chosen.Reasoning = fmt.Sprintf("master: best candidate %s holds: %s",
			best.Strategy, best.Reasoning)
		return &chosen
	}

	adj := g.learning.AdjustmentFor(cfg.BotID, string(chosen.Action), a.MarketRegime)

	// A raised confidence requirement is applied by deflating the signal's
	// confidence: the engine gates on the bot's fixed threshold, so
	// confidence/thresholdMultiplier is equivalent to demanding
	// confidence >= threshold*multiplier.
	chosen.Confidence = clamp01(chosen.Confidence / adj.ThresholdMultiplier)
	chosen.RiskScore = clamp01(chosen.RiskScore * adj.RiskMultiplier)
	chosen.SizeMultiplier = volatilitySizeMultiplier(a.Volatility) * adj.RiskMultiplier

	if chosen.TakeProfit != nil {
		scaled := scaleTakeProfit(a.CurrentPrice, *chosen.TakeProfit, regimeProfitMultiplier(a.MarketRegime))
		chosen.TakeProfit = ptr(scaled)
	}

	chosen.Reasoning = fmt.Sprintf("master: %s via %s (win rate %.0f%%, bucket samples %d): %s",
		chosen.Action, best.Strategy, adj.WinRate, adj.BucketSamples, best.Reasoning)

	return &chosen
}

// volatilitySizeMultiplier sizes up calm markets and down choppy ones.
func volatilitySizeMultiplier(volatility float64) float64 {
	switch {
	case volatility < 0.02:
		return 1.2
	case volatility > 0.05:
		return 0.7
	default:
		return 1.0
	}
}

// regimeProfitMultiplier stretches or shrinks the take-profit distance by
// market regime: trending markets run further, volatile ones reverse
// sooner.
func regimeProfitMultiplier(regime indicator.Regime) float64 {
	switch regime {
	case indicator.RegimeTrending:
		return 1.3
	case indicator.RegimeVolatile:
		return 0.8
	default:
		return 1.1
	}
}

// scaleTakeProfit multiplies the take-profit distance from the current
// price, preserving direction.
func scaleTakeProfit(price, takeProfit, multiplier float64) float64 {
	return price + (takeProfit-price)*multiplier
}
