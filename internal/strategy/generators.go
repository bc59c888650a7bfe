package strategy

import (
	"fmt"
	"math"
	"time"

	"ai-trading-engine/internal/botconfig"
	"ai-trading-engine/internal/indicator"
)

// trendFollow trades in the direction of an established trend with strong
// momentum. Confidence scales linearly with momentum, capped at 0.9 for
// longs and 0.85 for shorts.
func (g *Generator) trendFollow(a *indicator.Analysis) *Signal {
	const minMomentum = 0.6

	switch {
	case a.TrendDirection == indicator.TrendUp && a.MomentumScore > minMomentum:
		return &Signal{
			Action:     ActionBuy,
			Confidence: math.Min(0.9, a.MomentumScore),
			Reasoning: fmt.Sprintf("uptrend with momentum %.2f above %.2f threshold",
				a.MomentumScore, minMomentum),
			TargetPrice:     ptr(a.ResistanceLevel),
			StopLoss:        ptr(a.SupportLevel),
			TakeProfit:      ptr(a.CurrentPrice * 1.05),
			RiskScore:       clamp01(a.RiskLevel),
			MarketSentiment: SentimentBullish,
			SizeMultiplier:  1.0,
			Strategy:        KindTrendFollow,
			GeneratedAt:     time.Now(),
		}
	case a.TrendDirection == indicator.TrendDown && a.MomentumScore > minMomentum:
		return &Signal{
			Action:     ActionSell,
			Confidence: math.Min(0.85, a.MomentumScore),
			Reasoning: fmt.Sprintf("downtrend with momentum %.2f above %.2f threshold",
				a.MomentumScore, minMomentum),
			TargetPrice:     ptr(a.SupportLevel),
			StopLoss:        ptr(a.ResistanceLevel),
			TakeProfit:      ptr(a.CurrentPrice * 0.95),
			RiskScore:       clamp01(a.RiskLevel),
			MarketSentiment: SentimentBearish,
			SizeMultiplier:  1.0,
			Strategy:        KindTrendFollow,
			GeneratedAt:     time.Now(),
		}
	}

	return hold(KindTrendFollow, a,
		fmt.Sprintf("no established trend (%s, momentum %.2f)", a.TrendDirection, a.MomentumScore))
}

// mlSimulated combines momentum, sentiment magnitude and inverse
// volatility into a single prediction score, then thresholds on momentum
// and sentiment sign to pick direction. Despite the name this is the same
// linear-threshold shape as the other generators.
func (g *Generator) mlSimulated(a *indicator.Analysis) *Signal {
	prediction := clamp01(0.5*a.MomentumScore +
		0.3*math.Abs(a.SentimentScore) +
		0.2*(1.0-clamp01(a.Volatility*10)))

	const minMomentum = 0.5
	const minSentiment = 0.1

	var action Action
	switch {
	case a.MomentumScore > minMomentum && a.SentimentScore >= minSentiment:
		action = ActionBuy
	case a.MomentumScore > minMomentum && a.SentimentScore <= -minSentiment:
		action = ActionSell
	default:
		return hold(KindMLSim, a,
			fmt.Sprintf("prediction %.2f lacks directional agreement (momentum %.2f, sentiment %.2f)",
				prediction, a.MomentumScore, a.SentimentScore))
	}

	band := 0.025
	takeProfit := a.CurrentPrice * (1 + band)
	stopLoss := a.CurrentPrice * (1 - band)
	target := a.CurrentPrice * (1 + band/2)
	if action == ActionSell {
		takeProfit = a.CurrentPrice * (1 - band)
		stopLoss = a.CurrentPrice * (1 + band)
		target = a.CurrentPrice * (1 - band/2)
	}

	return &Signal{
		Action:     action,
		Confidence: prediction,
		Reasoning: fmt.Sprintf("model prediction %.2f with %s sentiment alignment",
			prediction, sentimentFor(action)),
		TargetPrice:     ptr(target),
		StopLoss:        ptr(stopLoss),
		TakeProfit:      ptr(takeProfit),
		RiskScore:       clamp01(0.6*clamp01(a.Volatility*10) + 0.4*(1-prediction)),
		MarketSentiment: sentimentFor(action),
		SizeMultiplier:  1.0,
		Strategy:        KindMLSim,
		GeneratedAt:     time.Now(),
	}
}

// scalp fades RSI extremes when there is enough volatility to produce a
// quick move, with tight 1.5-2% target and stop bands.
func (g *Generator) scalp(a *indicator.Analysis) *Signal {
	const minVolatility = 0.02

	if a.Volatility <= minVolatility {
		return hold(KindScalp, a,
			fmt.Sprintf("volatility %.3f too low for scalping", a.Volatility))
	}

	switch {
	case a.RSIValue < 30:
		return &Signal{
			Action:     ActionBuy,
			Confidence: math.Min(0.85, 0.6+(30-a.RSIValue)/50.0),
			Reasoning: fmt.Sprintf("oversold RSI %.1f with volatility %.3f",
				a.RSIValue, a.Volatility),
			TargetPrice:     ptr(a.CurrentPrice * 1.015),
			StopLoss:        ptr(a.CurrentPrice * 0.985),
			TakeProfit:      ptr(a.CurrentPrice * 1.02),
			RiskScore:       clamp01(a.RiskLevel),
			MarketSentiment: SentimentBullish,
			SizeMultiplier:  1.0,
			Strategy:        KindScalp,
			GeneratedAt:     time.Now(),
		}
	case a.RSIValue > 70:
		return &Signal{
			Action:     ActionSell,
			Confidence: math.Min(0.85, 0.6+(a.RSIValue-70)/50.0),
			Reasoning: fmt.Sprintf("overbought RSI %.1f with volatility %.3f",
				a.RSIValue, a.Volatility),
			TargetPrice:     ptr(a.CurrentPrice * 0.985),
			StopLoss:        ptr(a.CurrentPrice * 1.015),
			TakeProfit:      ptr(a.CurrentPrice * 0.98),
			RiskScore:       clamp01(a.RiskLevel),
			MarketSentiment: SentimentBearish,
			SizeMultiplier:  1.0,
			Strategy:        KindScalp,
			GeneratedAt:     time.Now(),
		}
	}

	return hold(KindScalp, a,
		fmt.Sprintf("RSI %.1f in neutral band", a.RSIValue))
}

// momentum trades only when momentum is strong and the trend direction
// agrees. Confidence is the momentum score itself.
func (g *Generator) momentum(a *indicator.Analysis) *Signal {
	const minMomentum = 0.7

	if a.MomentumScore <= minMomentum {
		return hold(KindMomentum, a,
			fmt.Sprintf("momentum %.2f below %.2f threshold", a.MomentumScore, minMomentum))
	}

	var action Action
	switch a.TrendDirection {
	case indicator.TrendUp:
		action = ActionBuy
	case indicator.TrendDown:
		action = ActionSell
	default:
		return hold(KindMomentum, a, "strong momentum without trend agreement")
	}

	takeProfit := a.CurrentPrice * 1.04
	stopLoss := a.CurrentPrice * 0.975
	target := a.CurrentPrice * 1.025
	if action == ActionSell {
		takeProfit = a.CurrentPrice * 0.96
		stopLoss = a.CurrentPrice * 1.025
		target = a.CurrentPrice * 0.975
	}

	return &Signal{
		Action:     action,
		Confidence: clamp01(a.MomentumScore),
		Reasoning: fmt.Sprintf("momentum %.2f confirmed by %s trend",
			a.MomentumScore, a.TrendDirection),
		TargetPrice:     ptr(target),
		StopLoss:        ptr(stopLoss),
		TakeProfit:      ptr(takeProfit),
		RiskScore:       clamp01(a.RiskLevel),
		MarketSentiment: sentimentFor(action),
		SizeMultiplier:  1.0,
		Strategy:        KindMomentum,
		GeneratedAt:     time.Now(),
	}
}

// sentiment trades on strong sentiment backed by meaningful news flow.
// Confidence blends sentiment magnitude and news impact using the bot's
// configured weight.
func (g *Generator) sentiment(a *indicator.Analysis, cfg *botconfig.BotConfig) *Signal {
	const minSentiment = 0.3

	magnitude := math.Abs(a.SentimentScore)
	if magnitude <= minSentiment || a.NewsImpact <= cfg.NewsImpactThreshold {
		return hold(KindSentiment, a,
			fmt.Sprintf("sentiment %.2f / news impact %.2f below gates",
				a.SentimentScore, a.NewsImpact))
	}

	action := ActionBuy
	if a.SentimentScore < 0 {
		action = ActionSell
	}

	confidence := clamp01(cfg.SentimentWeight*magnitude + (1-cfg.SentimentWeight)*a.NewsImpact)

	band := 0.03
	takeProfit := a.CurrentPrice * (1 + band)
	stopLoss := a.CurrentPrice * (1 - band*0.7)
	target := a.CurrentPrice * (1 + band*0.6)
	if action == ActionSell {
		takeProfit = a.CurrentPrice * (1 - band)
		stopLoss = a.CurrentPrice * (1 + band*0.7)
		target = a.CurrentPrice * (1 - band*0.6)
	}

	return &Signal{
		Action:     action,
		Confidence: confidence,
		Reasoning: fmt.Sprintf("%s sentiment %.2f with news impact %.2f",
			sentimentFor(action), a.SentimentScore, a.NewsImpact),
		TargetPrice:     ptr(target),
		StopLoss:        ptr(stopLoss),
		TakeProfit:      ptr(takeProfit),
		RiskScore:       clamp01(0.5*clamp01(a.Volatility*10) + 0.5*(1-a.NewsImpact)),
		MarketSentiment: sentimentFor(action),
		SizeMultiplier:  1.0,
		Strategy:        KindSentiment,
		GeneratedAt:     time.Now(),
	}
}
