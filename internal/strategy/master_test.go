package strategy

import (
	"math"
	"strings"
	"testing"

	"ai-trading-engine/internal/indicator"
	"ai-trading-engine/internal/learning"
)

func masterAnalysis() *indicator.Analysis {
	a := baseAnalysis()
	a.TrendDirection = indicator.TrendUp
	a.MomentumScore = 0.8
	return a
}

// TestMasterHoldPassthrough tests that a quiet market produces a HOLD
// with no learned re-weighting applied
func TestMasterHoldPassthrough(t *testing.T) {
	gen := NewGenerator(learning.NewStore(0, 0))
	sig, err := gen.Generate(KindMaster, baseAnalysis(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != ActionHold {
		t.Fatalf("action = %s, want HOLD", sig.Action)
	}
	if sig.Strategy != KindMaster {
		t.Errorf("strategy = %s, want master", sig.Strategy)
	}
	if sig.TargetPrice != nil || sig.StopLoss != nil || sig.TakeProfit != nil {
		t.Error("HOLD must not carry price targets")
	}
}

// TestMasterTieBreak tests that exact confidence ties go to the earlier
// strategy in the evaluation order
func TestMasterTieBreak(t *testing.T) {
	gen := NewGenerator(learning.NewStore(0, 0))

	// trend-follow and momentum both produce BUY at confidence 0.80 here;
	// trend-follow evaluates first and must win.
	sig, err := gen.Generate(KindMaster, masterAnalysis(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != ActionBuy {
		t.Fatalf("action = %s, want BUY", sig.Action)
	}
	if !strings.Contains(sig.Reasoning, "via trend-follow") {
		t.Errorf("reasoning = %q, want trend-follow to win the tie", sig.Reasoning)
	}
	if math.Abs(sig.Confidence-0.8) > 1e-9 {
		t.Errorf("confidence = %.3f, want 0.8 with neutral adjustments", sig.Confidence)
	}
	if sig.SizeMultiplier != 1.0 {
		t.Errorf("size multiplier = %.2f, want 1.0 at moderate volatility", sig.SizeMultiplier)
	}
}

// TestMasterRegimeTakeProfit tests the take-profit stretch by regime
func TestMasterRegimeTakeProfit(t *testing.T) {
	gen := NewGenerator(learning.NewStore(0, 0))

	a := masterAnalysis()
	a.MarketRegime = indicator.RegimeTrending
	sig, _ := gen.Generate(KindMaster, a, testConfig())
	if sig.TakeProfit == nil {
		t.Fatal("expected a take profit")
	}
	// trend-follow base take profit 52500; trending stretches the 2500
	// distance by 1.3.
	if math.Abs(*sig.TakeProfit-53250) > 1e-6 {
		t.Errorf("trending take profit = %.2f, want 53250", *sig.TakeProfit)
	}

	a = masterAnalysis() // ranging regime, multiplier 1.1
	sig, _ = gen.Generate(KindMaster, a, testConfig())
	if math.Abs(*sig.TakeProfit-52750) > 1e-6 {
		t.Errorf("ranging take profit = %.2f, want 52750", *sig.TakeProfit)
	}
}

// TestMasterLosingHistoryDeflatesConfidence tests the learned threshold
// raise on a losing bot
func TestMasterLosingHistoryDeflatesConfidence(t *testing.T) {
	store := learning.NewStore(0, 0)
	cfg := testConfig()

	// Ten losing SELL trades: overall win rate 0% with negative average
	// profit, but the BUY bucket stays empty so only the global adjustment
	// applies (threshold x1.2, risk x0.7 x0.8).
	for i := 0; i < 10; i++ {
		store.RecordOutcome(cfg.BotID, learning.Outcome{
			Action: "SELL", Regime: indicator.RegimeRanging, Confidence: 0.7, Pnl: -5,
		})
	}

	gen := NewGenerator(store)
	sig, err := gen.Generate(KindMaster, masterAnalysis(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != ActionBuy {
		t.Fatalf("action = %s, want BUY", sig.Action)
	}
	if math.Abs(sig.Confidence-0.8/1.2) > 1e-9 {
		t.Errorf("confidence = %.4f, want %.4f after threshold raise", sig.Confidence, 0.8/1.2)
	}
	if math.Abs(sig.SizeMultiplier-0.56) > 1e-9 {
		t.Errorf("size multiplier = %.4f, want 0.56 after risk cut", sig.SizeMultiplier)
	}
}

// TestMasterWinningBucketBoostsConfidence tests the combined global and
// bucket-level trust boost on a winning bot
func TestMasterWinningBucketBoostsConfidence(t *testing.T) {
	store := learning.NewStore(0, 0)
	cfg := testConfig()

	for i := 0; i < 6; i++ {
		store.RecordOutcome(cfg.BotID, learning.Outcome{
			Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.8, Pnl: 10,
		})
	}

	gen := NewGenerator(store)
	sig, _ := gen.Generate(KindMaster, masterAnalysis(), cfg)
	if sig.Action != ActionBuy {
		t.Fatalf("action = %s, want BUY", sig.Action)
	}
	// Global win rate 100% lowers the threshold to 0.9; the 6-sample BUY
	// bucket at 100% success lowers it again to 0.81.
	if math.Abs(sig.Confidence-clamp01(0.8/0.81)) > 1e-9 {
		t.Errorf("confidence = %.4f, want %.4f after trust boost", sig.Confidence, 0.8/0.81)
	}
	// Risk multiplier 1.3 * 1.2 at moderate volatility.
	if math.Abs(sig.SizeMultiplier-1.56) > 1e-9 {
		t.Errorf("size multiplier = %.4f, want 1.56", sig.SizeMultiplier)
	}
}

// TestMasterVolatilitySizing tests calm and choppy sizing without history
func TestMasterVolatilitySizing(t *testing.T) {
	gen := NewGenerator(learning.NewStore(0, 0))

	a := masterAnalysis()
	a.Volatility = 0.01
	sig, _ := gen.Generate(KindMaster, a, testConfig())
	if sig.SizeMultiplier != 1.2 {
		t.Errorf("calm market size = %.2f, want 1.2", sig.SizeMultiplier)
	}

	a = masterAnalysis()
	a.Volatility = 0.06
	sig, _ = gen.Generate(KindMaster, a, testConfig())
	if sig.SizeMultiplier != 0.7 {
		t.Errorf("choppy market size = %.2f, want 0.7", sig.SizeMultiplier)
	}
}
