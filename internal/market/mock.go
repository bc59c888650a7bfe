package market

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// MockProvider serves simulated snapshots for development and paper trading.
// Prices follow a seeded random walk so runs are reproducible.
type MockProvider struct {
	rng    *rand.Rand
	prices map[string]float64
	mu     sync.Mutex
}

// NewMockProvider creates a mock provider seeded for deterministic runs.
func NewMockProvider(seed int64) *MockProvider {
	return &MockProvider{
		rng: rand.New(rand.NewSource(seed)),
		prices: map[string]float64{
			"BTCUSDT": 104500.00,
			"ETHUSDT": 3900.00,
			"BNBUSDT": 710.00,
			"SOLUSDT": 220.00,
			"XRPUSDT": 2.35,
		},
	}
}

// GetSnapshot returns a simulated snapshot for the symbol. Unknown symbols
// start from a base price of 100.
func (m *MockProvider) GetSnapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	price, ok := m.prices[symbol]
	if !ok {
		price = 100.0
	}

	// Random walk: -0.5% to +0.5% per call
	price *= 1 + (m.rng.Float64()-0.5)*0.01
	m.prices[symbol] = price

	change := (m.rng.Float64() - 0.45) * 8 // skews slightly bullish
	high := price * (1 + m.rng.Float64()*0.03)
	low := price * (1 - m.rng.Float64()*0.03)

	return &Snapshot{
		Symbol:       symbol,
		CurrentPrice: price,
		Volume:       500_000 + m.rng.Float64()*2_000_000,
		Change24h:    change,
		High24h:      high,
		Low24h:       low,
		FetchedAt:    time.Now(),
	}, nil
}
