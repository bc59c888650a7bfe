package learning

import "ai-trading-engine/internal/indicator"

// Adjustment carries the learned multipliers the master strategy applies
// to a candidate signal. ThresholdMultiplier scales the confidence
// requirement (above 1 demands more conviction); RiskMultiplier scales the
// signal's risk score and position sizing appetite.
type Adjustment struct {
	ThresholdMultiplier float64 `json:"threshold_multiplier"`
	RiskMultiplier      float64 `json:"risk_multiplier"`
	WinRate             float64 `json:"win_rate"`      // percent, 0 when no history
	BucketSamples       int     `json:"bucket_samples"`
}

// minBucketSamples is how many outcomes a specific (action, regime) bucket
// needs before its success rate adjusts trust.
const minBucketSamples = 5

// AdjustmentFor computes the multipliers for a prospective trade. A losing
// bot gets a raised confidence bar and shrunken risk; a winning bot gets
// the opposite. On top of that, once the specific (action, regime) bucket
// has enough samples its own success rate tilts trust further.
func (s *Store) AdjustmentFor(botID, action string, regime indicator.Regime) Adjustment {
	s.mu.Lock()
	history := s.profits[botID]

	var bucket Aggregate
	if el, ok := s.aggregates[Key{BotID: botID, Action: action, Regime: regime}]; ok {
		bucket = *el.Value.(*entry).agg
	}
	s.mu.Unlock()

	adj := Adjustment{ThresholdMultiplier: 1.0, RiskMultiplier: 1.0}

	if len(history) > 0 {
		wins := 0
		total := 0.0
		for _, pnl := range history {
			if pnl > 0 {
				wins++
			}
			total += pnl
		}
		winRate := float64(wins) / float64(len(history)) * 100.0
		avgProfit := total / float64(len(history))
		adj.WinRate = winRate

		switch {
		case winRate < 40:
			adj.ThresholdMultiplier *= 1.2
			adj.RiskMultiplier *= 0.7
			if avgProfit < 0 {
				adj.RiskMultiplier *= 0.8
			}
		case winRate > 70:
			adj.ThresholdMultiplier *= 0.9
			adj.RiskMultiplier *= 1.3
		}
	}

	adj.BucketSamples = bucket.TotalTrades
	if bucket.TotalTrades >= minBucketSamples {
		success := float64(bucket.ProfitableTrades) / float64(bucket.TotalTrades)
		if success > 0.6 {
			adj.ThresholdMultiplier *= 0.9
			adj.RiskMultiplier *= 1.2
		} else if success < 0.3 {
			adj.ThresholdMultiplier *= 1.5
			adj.RiskMultiplier *= 0.6
		}
	}

	return adj
}
