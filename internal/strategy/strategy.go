package strategy

import (
	"fmt"
	"time"

	"ai-trading-engine/internal/botconfig"
	"ai-trading-engine/internal/indicator"
	"ai-trading-engine/internal/learning"
)

// Action is the trade decision of one analysis cycle.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// MarketSentiment is the generator's directional read of the market.
type MarketSentiment string

const (
	SentimentBullish MarketSentiment = "bullish"
	SentimentBearish MarketSentiment = "bearish"
	SentimentNeutral MarketSentiment = "neutral"
)

// Signal is the decision tuple produced by a generator for one analysis
// cycle. HOLD signals carry nil price targets; Confidence and RiskScore
// are always within [0, 1].
type Signal struct {
	Action          Action          `json:"action"`
	Confidence      float64         `json:"confidence"`
	Reasoning       string          `json:"reasoning"`
	TargetPrice     *float64        `json:"target_price,omitempty"`
	StopLoss        *float64        `json:"stop_loss,omitempty"`
	TakeProfit      *float64        `json:"take_profit,omitempty"`
	RiskScore       float64         `json:"risk_score"`
	MarketSentiment MarketSentiment `json:"market_sentiment"`

	// SizeMultiplier scales the computed order size. Only the master
	// strategy moves it off 1.0 (volatility-based sizing).
	SizeMultiplier float64 `json:"size_multiplier"`

	Strategy    Kind      `json:"strategy"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Kind is the closed set of strategy variants. Dispatch is an exhaustive
// switch over these values; there is no runtime fallback for unknown tags.
type Kind int

const (
	KindTrendFollow Kind = iota
	KindMLSim
	KindScalp
	KindMomentum
	KindSentiment
	KindMaster
)

// subStrategies is the fixed evaluation order the master uses. Ties on
// confidence keep the earlier entry.
var subStrategies = []Kind{KindTrendFollow, KindMLSim, KindScalp, KindMomentum, KindSentiment}

func (k Kind) String() string {
	switch k {
	case KindTrendFollow:
		return "trend-follow"
	case KindMLSim:
		return "ml-simulated"
	case KindScalp:
		return "scalp"
	case KindMomentum:
		return "momentum"
	case KindSentiment:
		return "sentiment"
	case KindMaster:
		return "master"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configuration strategy tag onto its Kind.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case "trend-follow":
		return KindTrendFollow, nil
	case "ml-simulated":
		return KindMLSim, nil
	case "scalp":
		return KindScalp, nil
	case "momentum":
		return KindMomentum, nil
	case "sentiment":
		return KindSentiment, nil
	case "master":
		return KindMaster, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", tag)
	}
}

// Generator produces trading signals. The learning store is only consulted
// by the master strategy; the plain generators are pure functions of the
// analysis and bot config.
type Generator struct {
	learning *learning.Store
}

// NewGenerator creates a signal generator backed by the given learning
// store.
func NewGenerator(store *learning.Store) *Generator {
	return &Generator{learning: store}
}

// Generate dispatches to the variant's generator. Every variant is total:
// for any well-formed analysis it returns a signal, falling back to HOLD
// with a reasoning string when no tradeable condition exists. An error is
// returned only for a Kind outside the closed set.
func (g *Generator) Generate(kind Kind, a *indicator.Analysis, cfg *botconfig.BotConfig) (*Signal, error) {
	switch kind {
	case KindTrendFollow:
		return g.trendFollow(a), nil
	case KindMLSim:
		return g.mlSimulated(a), nil
	case KindScalp:
		return g.scalp(a), nil
	case KindMomentum:
		return g.momentum(a), nil
	case KindSentiment:
		return g.sentiment(a, cfg), nil
	case KindMaster:
		return g.master(a, cfg), nil
	default:
		return nil, fmt.Errorf("generate: unknown strategy kind %d", int(kind))
	}
}

// hold builds the no-trade signal shared by all generators. Price targets
// stay nil: there is nothing to target when not trading.
func hold(kind Kind, a *indicator.Analysis, reason string) *Signal {
	return &Signal{
		Action:          ActionHold,
		Confidence:      0.3,
		Reasoning:       reason,
		RiskScore:       clamp01(a.RiskLevel),
		MarketSentiment: SentimentNeutral,
		SizeMultiplier:  1.0,
		Strategy:        kind,
		GeneratedAt:     time.Now(),
	}
}

func sentimentFor(action Action) MarketSentiment {
	switch action {
	case ActionBuy:
		return SentimentBullish
	case ActionSell:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

func ptr(v float64) *float64 { return &v }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
