package learning

import "fmt"

// InsufficientData is reported as the best strategy when a bot has no
// recorded outcomes yet.
const InsufficientData = "insufficient_data"

// Insights summarizes a bot's learned performance with actionable
// suggestions.
type Insights struct {
	WinRate       float64  `json:"win_rate"` // percent
	AverageProfit float64  `json:"average_profit"`
	TotalTrades   int      `json:"total_trades"`
	BestStrategy  string   `json:"best_strategy"`
	Suggestions   []string `json:"suggestions"`
}

// Insights derives win rate, average profit and improvement suggestions
// from the bot's profit history. A bot with no history gets the
// insufficient-data sentinel and no suggestions.
func (s *Store) Insights(botID string) Insights {
	s.mu.Lock()
	history := s.profits[botID]
	best := s.bestBucketLocked(botID)
	s.mu.Unlock()

	if len(history) == 0 {
		return Insights{WinRate: 0, BestStrategy: InsufficientData}
	}

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

	var suggestions []string
	if winRate < 40 {
		suggestions = append(suggestions,
			"raise confidence threshold before entering trades",
			"focus on trending markets where signals are stronger")
	}
	if winRate > 70 {
		suggestions = append(suggestions,
			"increase position size to capitalize on the edge",
			"explore more aggressive profit targets")
	}
	if avgProfit < 0 {
		suggestions = append(suggestions, "reduce risk per trade")
	}

	return Insights{
		WinRate:       winRate,
		AverageProfit: avgProfit,
		TotalTrades:   len(history),
		BestStrategy:  best,
		Suggestions:   suggestions,
	}
}

// bestBucketLocked picks the bot's highest win-rate (action, regime)
// bucket. Caller must hold s.mu.
func (s *Store) bestBucketLocked(botID string) string {
	best := InsufficientData
	bestRate := -1.0

	for key, el := range s.aggregates {
		if key.BotID != botID {
			continue
		}
		agg := el.Value.(*entry).agg
		if agg.TotalTrades == 0 {
			continue
		}
		rate := float64(agg.ProfitableTrades) / float64(agg.TotalTrades)
		if rate > bestRate {
			bestRate = rate
			best = fmt.Sprintf("%s/%s", key.Action, key.Regime)
		}
	}
	return best
}
