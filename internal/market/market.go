package market

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the upstream market data source could not serve
// the request. Callers skip the current cycle; they must not substitute
// stale or fabricated values.
var ErrUnavailable = errors.New("market data unavailable")

// Snapshot is a point-in-time view of a symbol's 24h market state.
type Snapshot struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	Volume       float64   `json:"volume"`
	Change24h    float64   `json:"change_24h"` // percent
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Provider fetches market snapshots. Implementations wrap exchange APIs;
// failures must wrap ErrUnavailable so callers can classify them.
type Provider interface {
	GetSnapshot(ctx context.Context, symbol string) (*Snapshot, error)
}
