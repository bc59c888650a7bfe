package learning

import (
	"fmt"
	"math"
	"testing"

	"ai-trading-engine/internal/indicator"
)

// TestRecordOutcomeCounters tests that N recorded outcomes always yield
// total trades N with profitable trades bounded by the total
func TestRecordOutcomeCounters(t *testing.T) {
	store := NewStore(0, 0)

	pnls := []float64{10, -5, 0, 3.2, -1.1, 7, -7, 0.01}
	wantWins := 0
	for _, pnl := range pnls {
		store.RecordOutcome("bot-1", Outcome{
			Action: "BUY", Regime: indicator.RegimeTrending, Confidence: 0.7, Pnl: pnl,
		})
		if pnl > 0 {
			wantWins++
		}
	}

	agg := store.Aggregate("bot-1", "BUY", indicator.RegimeTrending)
	if agg.TotalTrades != len(pnls) {
		t.Errorf("total trades = %d, want %d", agg.TotalTrades, len(pnls))
	}
	if agg.ProfitableTrades != wantWins {
		t.Errorf("profitable trades = %d, want %d", agg.ProfitableTrades, wantWins)
	}
	if agg.ProfitableTrades > agg.TotalTrades {
		t.Error("profitable trades exceeds total trades")
	}
}

// TestAggregateUnknownBucket tests the zero-state read path
func TestAggregateUnknownBucket(t *testing.T) {
	store := NewStore(0, 0)
	agg := store.Aggregate("nobody", "BUY", indicator.RegimeRanging)
	if agg.TotalTrades != 0 || agg.TotalPnl != 0 || agg.AverageConfidence != 0 {
		t.Errorf("unknown bucket should read as zero, got %+v", agg)
	}
}

// TestConfidenceRecencyWeighting tests the (old+new)/2 average
func TestConfidenceRecencyWeighting(t *testing.T) {
	store := NewStore(0, 0)

	store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.8, Pnl: 1})
	store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.4, Pnl: 1})
	store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.6, Pnl: 1})

	agg := store.Aggregate("bot-1", "BUY", indicator.RegimeRanging)
	want := ((0.8+0.4)/2 + 0.6) / 2
	if math.Abs(agg.AverageConfidence-want) > 1e-9 {
		t.Errorf("average confidence = %.4f, want %.4f", agg.AverageConfidence, want)
	}
}

// TestEvictionKeepsProfitHistory tests that evicting a cold aggregate
// bucket never touches the bot's profit record
func TestEvictionKeepsProfitHistory(t *testing.T) {
	store := NewStore(3, 0)

	actions := []string{"BUY", "SELL"}
	regimes := []indicator.Regime{indicator.RegimeTrending, indicator.RegimeRanging, indicator.RegimeVolatile}
	n := 0
	for _, action := range actions {
		for _, regime := range regimes {
			store.RecordOutcome("bot-1", Outcome{Action: action, Regime: regime, Confidence: 0.5, Pnl: 1})
			n++
		}
	}

	if store.Len() != 3 {
		t.Errorf("store holds %d buckets, want capacity 3", store.Len())
	}
	// Oldest bucket (BUY/trending) must be gone, newest must survive.
	if agg := store.Aggregate("bot-1", "BUY", indicator.RegimeTrending); agg.TotalTrades != 0 {
		t.Error("oldest bucket should have been evicted")
	}
	if agg := store.Aggregate("bot-1", "SELL", indicator.RegimeVolatile); agg.TotalTrades != 1 {
		t.Error("newest bucket should survive eviction")
	}
	// Profit history is independent of aggregate eviction.
	if got := len(store.ProfitHistory("bot-1")); got != n {
		t.Errorf("profit history length = %d, want %d", got, n)
	}
}

// TestEvictionRefreshesOnWrite tests that rewriting a bucket protects it
func TestEvictionRefreshesOnWrite(t *testing.T) {
	store := NewStore(2, 0)

	out := func(action string, regime indicator.Regime) Outcome {
		return Outcome{Action: action, Regime: regime, Confidence: 0.5, Pnl: 1}
	}

	store.RecordOutcome("bot-1", out("BUY", indicator.RegimeTrending))
	store.RecordOutcome("bot-1", out("SELL", indicator.RegimeTrending))
	store.RecordOutcome("bot-1", out("BUY", indicator.RegimeTrending)) // refresh
	store.RecordOutcome("bot-1", out("BUY", indicator.RegimeRanging))  // evicts SELL

	if agg := store.Aggregate("bot-1", "BUY", indicator.RegimeTrending); agg.TotalTrades != 2 {
		t.Errorf("refreshed bucket trades = %d, want 2", agg.TotalTrades)
	}
	if agg := store.Aggregate("bot-1", "SELL", indicator.RegimeTrending); agg.TotalTrades != 0 {
		t.Error("stale bucket should have been evicted")
	}
}

// TestProfitHistoryCap tests the independent history bound
func TestProfitHistoryCap(t *testing.T) {
	store := NewStore(0, 4)

	for i := 0; i < 10; i++ {
		store.RecordOutcome("bot-1", Outcome{
			Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: float64(i),
		})
	}

	history := store.ProfitHistory("bot-1")
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	// Newest entries are kept, oldest dropped.
	for i, pnl := range history {
		if want := float64(6 + i); pnl != want {
			t.Errorf("history[%d] = %.0f, want %.0f", i, pnl, want)
		}
	}
}

// TestInsightsRoundTrip tests win rate and average profit arithmetic
func TestInsightsRoundTrip(t *testing.T) {
	store := NewStore(0, 0)

	store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeTrending, Confidence: 0.7, Pnl: 100})
	store.RecordOutcome("bot-1", Outcome{Action: "SELL", Regime: indicator.RegimeTrending, Confidence: 0.7, Pnl: -50})

	in := store.Insights("bot-1")
	if in.WinRate != 50 {
		t.Errorf("win rate = %.1f, want 50", in.WinRate)
	}
	if in.AverageProfit != 25 {
		t.Errorf("average profit = %.1f, want 25", in.AverageProfit)
	}
	if in.TotalTrades != 2 {
		t.Errorf("total trades = %d, want 2", in.TotalTrades)
	}
	if in.BestStrategy != "BUY/trending" {
		t.Errorf("best strategy = %q, want BUY/trending", in.BestStrategy)
	}
}

// TestInsightsNoHistory tests the insufficient-data sentinel
func TestInsightsNoHistory(t *testing.T) {
	store := NewStore(0, 0)
	in := store.Insights("nobody")
	if in.BestStrategy != InsufficientData {
		t.Errorf("best strategy = %q, want %q", in.BestStrategy, InsufficientData)
	}
	if in.WinRate != 0 || in.TotalTrades != 0 || len(in.Suggestions) != 0 {
		t.Errorf("empty history should yield zero insights, got %+v", in)
	}
}

// TestInsightsSuggestions tests the suggestion branches
func TestInsightsSuggestions(t *testing.T) {
	losing := NewStore(0, 0)
	for i := 0; i < 10; i++ {
		losing.RecordOutcome("bot-1", Outcome{Action: "SELL", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: -2})
	}
	in := losing.Insights("bot-1")
	if len(in.Suggestions) != 3 {
		t.Errorf("losing bot suggestions = %d, want 3 (threshold, trending, risk)", len(in.Suggestions))
	}

	winning := NewStore(0, 0)
	for i := 0; i < 10; i++ {
		winning.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeTrending, Confidence: 0.5, Pnl: 2})
	}
	in = winning.Insights("bot-1")
	if len(in.Suggestions) != 2 {
		t.Errorf("winning bot suggestions = %d, want 2 (size, targets)", len(in.Suggestions))
	}
}

// TestAdjustmentFor tests the multiplier table
func TestAdjustmentFor(t *testing.T) {
	const eps = 1e-9

	t.Run("no history is neutral", func(t *testing.T) {
		store := NewStore(0, 0)
		adj := store.AdjustmentFor("bot-1", "BUY", indicator.RegimeRanging)
		if adj.ThresholdMultiplier != 1.0 || adj.RiskMultiplier != 1.0 {
			t.Errorf("neutral adjustment expected, got %+v", adj)
		}
	})

	t.Run("losing history raises the bar", func(t *testing.T) {
		store := NewStore(0, 0)
		for i := 0; i < 10; i++ {
			store.RecordOutcome("bot-1", Outcome{Action: "SELL", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: -1})
		}
		adj := store.AdjustmentFor("bot-1", "BUY", indicator.RegimeRanging)
		if math.Abs(adj.ThresholdMultiplier-1.2) > eps {
			t.Errorf("threshold multiplier = %.3f, want 1.2", adj.ThresholdMultiplier)
		}
		if math.Abs(adj.RiskMultiplier-0.56) > eps {
			t.Errorf("risk multiplier = %.3f, want 0.56", adj.RiskMultiplier)
		}
	})

	t.Run("bucket below sample floor is ignored", func(t *testing.T) {
		store := NewStore(0, 0)
		// 4 perfect BUY trades: win rate 100% triggers the global boost but
		// the bucket stays below the 5-sample floor.
		for i := 0; i < 4; i++ {
			store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: 1})
		}
		adj := store.AdjustmentFor("bot-1", "BUY", indicator.RegimeRanging)
		if math.Abs(adj.ThresholdMultiplier-0.9) > eps {
			t.Errorf("threshold multiplier = %.3f, want 0.9 (global only)", adj.ThresholdMultiplier)
		}
		if adj.BucketSamples != 4 {
			t.Errorf("bucket samples = %d, want 4", adj.BucketSamples)
		}
	})

	t.Run("strong bucket compounds the boost", func(t *testing.T) {
		store := NewStore(0, 0)
		for i := 0; i < 6; i++ {
			store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: 1})
		}
		adj := store.AdjustmentFor("bot-1", "BUY", indicator.RegimeRanging)
		if math.Abs(adj.ThresholdMultiplier-0.81) > eps {
			t.Errorf("threshold multiplier = %.3f, want 0.81", adj.ThresholdMultiplier)
		}
		if math.Abs(adj.RiskMultiplier-1.56) > eps {
			t.Errorf("risk multiplier = %.3f, want 1.56", adj.RiskMultiplier)
		}
	})

	t.Run("weak bucket cuts trust hard", func(t *testing.T) {
		store := NewStore(0, 0)
		// 2 wins out of 10 in the bucket: win rate 20% and success 0.2.
		for i := 0; i < 10; i++ {
			pnl := -1.0
			if i < 2 {
				pnl = 1.0
			}
			store.RecordOutcome("bot-1", Outcome{Action: "BUY", Regime: indicator.RegimeRanging, Confidence: 0.5, Pnl: pnl})
		}
		adj := store.AdjustmentFor("bot-1", "BUY", indicator.RegimeRanging)
		if math.Abs(adj.ThresholdMultiplier-1.2*1.5) > eps {
			t.Errorf("threshold multiplier = %.3f, want 1.8", adj.ThresholdMultiplier)
		}
		if math.Abs(adj.RiskMultiplier-0.56*0.6) > eps {
			t.Errorf("risk multiplier = %.3f, want 0.336", adj.RiskMultiplier)
		}
	})
}

// TestStoreConcurrentWrites tests that parallel recording keeps counts
// exact
func TestStoreConcurrentWrites(t *testing.T) {
	store := NewStore(0, 0)

	const workers = 8
	const perWorker = 50
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			bot := fmt.Sprintf("bot-%d", w%2)
			for i := 0; i < perWorker; i++ {
				store.RecordOutcome(bot, Outcome{
					Action: "BUY", Regime: indicator.RegimeTrending, Confidence: 0.5, Pnl: 1,
				})
			}
		}(w)
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	total := 0
	for _, bot := range []string{"bot-0", "bot-1"} {
		total += store.Aggregate(bot, "BUY", indicator.RegimeTrending).TotalTrades
	}
	if total != workers*perWorker {
		t.Errorf("total recorded trades = %d, want %d", total, workers*perWorker)
	}
}
