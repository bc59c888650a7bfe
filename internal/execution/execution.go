package execution

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ai-trading-engine/internal/botconfig"
)

// ErrInsufficientBalance indicates the account's free balance cannot cover
// the requested order. The trade is skipped; it is never fatal to the bot.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrPositionNotFound indicates the position to close no longer exists.
var ErrPositionNotFound = errors.New("position not found")

// Balance is one asset's free balance on an exchange account.
type Balance struct {
	Asset string          `json:"asset"`
	Free  decimal.Decimal `json:"free"`
}

// OrderRequest describes a market order to submit.
type OrderRequest struct {
	BotID  string           `json:"bot_id"`
	Symbol string           `json:"symbol"`
	Side   string           `json:"side"` // BUY or SELL
	Type   string           `json:"type"` // MARKET
	Amount decimal.Decimal  `json:"amount"` // quote notional
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// OrderResult is the fill report for a submitted order.
type OrderResult struct {
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
	FillPrice     decimal.Decimal `json:"fill_price"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// Position is an open position held for a bot.
type Position struct {
	ID         string          `json:"id"`
	BotID      string          `json:"bot_id"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Notional   decimal.Decimal `json:"notional"` // quote amount committed
	EntryPrice decimal.Decimal `json:"entry_price"`
	OpenedAt   time.Time       `json:"opened_at"`
}

// CloseResult reports the realized outcome of closing a position.
type CloseResult struct {
	Position   Position        `json:"position"`
	ClosePrice decimal.Decimal `json:"close_price"`
	Pnl        decimal.Decimal `json:"pnl"`
	ClosedAt   time.Time       `json:"closed_at"`
}

// Adapter submits orders and manages positions against an exchange
// account. Implementations wrap real exchange clients; PaperAdapter
// simulates one in memory.
type Adapter interface {
	GetBalances(ctx context.Context, accountID, exchange string) ([]Balance, error)
	PlaceOrder(ctx context.Context, accountID, exchange string, req OrderRequest) (*OrderResult, error)
	OpenPositions(ctx context.Context, accountID, exchange, botID string) ([]Position, error)
	ClosePosition(ctx context.Context, accountID, exchange, positionID string) (*CloseResult, error)
}

// knownQuotes are checked longest-first when splitting a symbol.
var knownQuotes = []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "BNB"}

// QuoteAsset extracts the quote asset from a concatenated symbol such as
// BTCUSDT. Unknown symbols default to USDT.
func QuoteAsset(symbol string) string {
	for _, q := range knownQuotes {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return q
		}
	}
	return "USDT"
}

var sizingHaircut = decimal.NewFromFloat(0.95)

// SizeOrder computes the quote notional to commit: the bot's configured
// quote amount, capped at 95% of the free balance, scaled by risk per
// trade and the AI risk multiplier.
func SizeOrder(cfg *botconfig.BotConfig, freeQuote decimal.Decimal) decimal.Decimal {
	base := decimal.NewFromFloat(cfg.QuoteAmount)
	capped := freeQuote.Mul(sizingHaircut)
	if capped.LessThan(base) {
		base = capped
	}
	if base.IsNegative() {
		return decimal.Zero
	}
	return base.
		Mul(decimal.NewFromFloat(cfg.RiskPerTrade)).
		Mul(decimal.NewFromFloat(cfg.AIRiskMultiplier))
}
