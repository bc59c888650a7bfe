package learning

import (
	"container/list"
	"sync"

	"ai-trading-engine/internal/indicator"
)

// Key identifies one learned outcome bucket.
type Key struct {
	BotID  string
	Action string
	Regime indicator.Regime
}

// Aggregate accumulates outcomes for one (bot, action, regime) bucket.
type Aggregate struct {
	TotalTrades       int     `json:"total_trades"`
	ProfitableTrades  int     `json:"profitable_trades"`
	TotalPnl          float64 `json:"total_pnl"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Outcome is one realized trade result to be recorded.
type Outcome struct {
	Action     string
	Regime     indicator.Regime
	Confidence float64
	Pnl        float64
}

type entry struct {
	key Key
	agg *Aggregate
}

// Store keeps learned trade outcomes in memory. Aggregates live in a
// bounded LRU keyed by (bot, action, regime); per-bot profit histories are
// capped independently, so evicting a cold aggregate never discards a
// bot's profit record. All methods are safe for concurrent use by multiple
// bot goroutines, and none of them returns an error: reads of unknown bots
// yield zero state, writes create buckets lazily.
type Store struct {
	mu sync.Mutex

	capacity   int
	aggregates map[Key]*list.Element
	order      *list.List // front = most recently used

	profitCap int
	profits   map[string][]float64
}

const (
	// DefaultCapacity bounds the number of aggregate buckets.
	DefaultCapacity = 100
	// DefaultProfitCap bounds each bot's profit history length.
	DefaultProfitCap = 500
)

// NewStore creates a learning store. Non-positive capacities fall back to
// the defaults.
func NewStore(capacity, profitCap int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if profitCap <= 0 {
		profitCap = DefaultProfitCap
	}
	return &Store{
		capacity:   capacity,
		aggregates: make(map[Key]*list.Element),
		order:      list.New(),
		profitCap:  profitCap,
		profits:    make(map[string][]float64),
	}
}

// RecordOutcome folds one realized trade into the bot's aggregate bucket
// and profit history. The confidence average is the recency-weighted
// (old+new)/2, not a true mean: recent conviction dominates stale history.
func (s *Store) RecordOutcome(botID string, o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{BotID: botID, Action: o.Action, Regime: o.Regime}

	el, ok := s.aggregates[key]
	if !ok {
		el = s.order.PushFront(&entry{key: key, agg: &Aggregate{}})
		s.aggregates[key] = el
		s.evictLocked()
	} else {
		s.order.MoveToFront(el)
	}

	agg := el.Value.(*entry).agg
	agg.TotalTrades++
	agg.TotalPnl += o.Pnl
	if o.Pnl > 0 {
		agg.ProfitableTrades++
	}
	if agg.AverageConfidence == 0 {
		agg.AverageConfidence = o.Confidence
	} else {
		agg.AverageConfidence = (agg.AverageConfidence + o.Confidence) / 2
	}

	history := append(s.profits[botID], o.Pnl)
	if len(history) > s.profitCap {
		history = history[len(history)-s.profitCap:]
	}
	s.profits[botID] = history
}

// Aggregate returns a copy of the bucket for the key, or a zero aggregate
// when none exists. Reading does not refresh LRU order.
func (s *Store) Aggregate(botID, action string, regime indicator.Regime) Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.aggregates[Key{BotID: botID, Action: action, Regime: regime}]
	if !ok {
		return Aggregate{}
	}
	return *el.Value.(*entry).agg
}

// Len reports the number of aggregate buckets currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aggregates)
}

// ProfitHistory returns a copy of the bot's recorded PnL values, oldest
// first.
func (s *Store) ProfitHistory(botID string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.profits[botID]
	out := make([]float64, len(history))
	copy(out, history)
	return out
}

// evictLocked drops least recently used buckets until the store fits its
// capacity. Caller must hold s.mu.
func (s *Store) evictLocked() {
	for len(s.aggregates) > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		s.order.Remove(oldest)
		delete(s.aggregates, oldest.Value.(*entry).key)
	}
}
