package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ai-trading-engine/internal/market"
)

// PaperAdapter simulates an exchange account in memory: a decimal balance
// ledger, market-order fills at the provider's current price, and open
// position tracking with realized PnL on close. It backs dry runs and
// tests; no network calls except to the snapshot provider for close
// prices.
type PaperAdapter struct {
	mu        sync.Mutex
	provider  market.Provider
	balances  map[string]map[string]decimal.Decimal // accountID -> asset -> free
	positions map[string]*Position                  // positionID -> position
	accounts  map[string]string                     // positionID -> accountID
	logger    zerolog.Logger
}

// NewPaperAdapter creates a paper adapter. The provider supplies close
// prices when positions are unwound.
func NewPaperAdapter(provider market.Provider, logger zerolog.Logger) *PaperAdapter {
	return &PaperAdapter{
		provider:  provider,
		balances:  make(map[string]map[string]decimal.Decimal),
		positions: make(map[string]*Position),
		accounts:  make(map[string]string),
		logger:    logger.With().Str("component", "paper_adapter").Logger(),
	}
}

// Deposit credits an asset balance, creating the account if needed.
func (p *PaperAdapter) Deposit(accountID, asset string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balances[accountID] == nil {
		p.balances[accountID] = make(map[string]decimal.Decimal)
	}
	p.balances[accountID][asset] = p.balances[accountID][asset].Add(amount)
}

// GetBalances returns the account's free balances.
func (p *PaperAdapter) GetBalances(ctx context.Context, accountID, exchange string) ([]Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger := p.balances[accountID]
	out := make([]Balance, 0, len(ledger))
	for asset, free := range ledger {
		out = append(out, Balance{Asset: asset, Free: free})
	}
	return out, nil
}

// PlaceOrder fills a market order at the request price, debits the quote
// balance and opens a tracked position.
func (p *PaperAdapter) PlaceOrder(ctx context.Context, accountID, exchange string, req OrderRequest) (*OrderResult, error) {
	if req.Price == nil {
		return nil, fmt.Errorf("paper adapter requires a reference price for %s", req.Symbol)
	}

	quote := QuoteAsset(req.Symbol)

	p.mu.Lock()
	defer p.mu.Unlock()

	free := decimal.Zero
	if ledger := p.balances[accountID]; ledger != nil {
		free = ledger[quote]
	}
	if free.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: need %s %s, have %s", ErrInsufficientBalance,
			req.Amount.StringFixed(2), quote, free.StringFixed(2))
	}

	p.balances[accountID][quote] = free.Sub(req.Amount)

	now := time.Now()
	pos := &Position{
		ID:         uuid.NewString(),
		BotID:      req.BotID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Notional:   req.Amount,
		EntryPrice: *req.Price,
		OpenedAt:   now,
	}
	p.positions[pos.ID] = pos
	p.accounts[pos.ID] = accountID

	result := &OrderResult{
		OrderID:       uuid.NewString(),
		ClientOrderID: fmt.Sprintf("paper-%s", pos.ID[:8]),
		Symbol:        req.Symbol,
		Side:          req.Side,
		Amount:        req.Amount,
		FillPrice:     *req.Price,
		ExecutedAt:    now,
	}

	p.logger.Info().
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Str("notional", req.Amount.StringFixed(2)).
		Str("price", req.Price.StringFixed(4)).
		Msg("paper order filled")

	return result, nil
}

// OpenPositions lists the bot's open positions on the account.
func (p *PaperAdapter) OpenPositions(ctx context.Context, accountID, exchange, botID string) ([]Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Position
	for id, pos := range p.positions {
		if p.accounts[id] == accountID && pos.BotID == botID {
			out = append(out, *pos)
		}
	}
	return out, nil
}

// ClosePosition unwinds a position at the provider's current price,
// credits the realized proceeds back to the quote balance and reports the
// PnL.
func (p *PaperAdapter) ClosePosition(ctx context.Context, accountID, exchange, positionID string) (*CloseResult, error) {
	p.mu.Lock()
	pos, ok := p.positions[positionID]
	if !ok || p.accounts[positionID] != accountID {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, positionID)
	}
	p.mu.Unlock()

	snap, err := p.provider.GetSnapshot(ctx, pos.Symbol)
	if err != nil {
		return nil, fmt.Errorf("close %s: %w", pos.Symbol, err)
	}
	closePrice := decimal.NewFromFloat(snap.CurrentPrice)

	// PnL on the committed notional: longs gain when price rises, shorts
	// when it falls.
	move := closePrice.Sub(pos.EntryPrice).Div(pos.EntryPrice)
	if pos.Side == "SELL" {
		move = move.Neg()
	}
	pnl := pos.Notional.Mul(move)

	p.mu.Lock()
	delete(p.positions, positionID)
	delete(p.accounts, positionID)
	quote := QuoteAsset(pos.Symbol)
	if p.balances[accountID] == nil {
		p.balances[accountID] = make(map[string]decimal.Decimal)
	}
	p.balances[accountID][quote] = p.balances[accountID][quote].Add(pos.Notional).Add(pnl)
	p.mu.Unlock()

	p.logger.Info().
		Str("symbol", pos.Symbol).
		Str("side", pos.Side).
		Str("pnl", pnl.StringFixed(2)).
		Msg("paper position closed")

	return &CloseResult{
		Position:   *pos,
		ClosePrice: closePrice,
		Pnl:        pnl,
		ClosedAt:   time.Now(),
	}, nil
}
