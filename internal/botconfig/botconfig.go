package botconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// ErrNotFound indicates no configuration exists for the requested bot.
var ErrNotFound = errors.New("bot config not found")

var validate = validator.New()

// BotConfig is the per-bot trading configuration. The engine treats it as
// read-only: it is loaded from the configuration store and never written
// back.
type BotConfig struct {
	BotID     string `json:"bot_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
	Exchange  string `json:"exchange" validate:"required"`
	Symbol    string `json:"symbol" validate:"required"`
	Strategy  string `json:"strategy" validate:"required"`

	ConfidenceThreshold float64 `json:"confidence_threshold" default:"0.7" validate:"gte=0,lte=1"`
	RiskPerTrade        float64 `json:"risk_per_trade" default:"0.02" validate:"gt=0,lte=1"`
	AIRiskMultiplier    float64 `json:"ai_risk_multiplier" default:"1.0" validate:"gt=0,lte=5"`
	QuoteAmount         float64 `json:"quote_amount" default:"100" validate:"gt=0"`
	SentimentWeight     float64 `json:"sentiment_weight" default:"0.6" validate:"gte=0,lte=1"`
	NewsImpactThreshold float64 `json:"news_impact_threshold" default:"0.5" validate:"gte=0.1,lte=0.9"`

	CycleInterval time.Duration `json:"cycle_interval" default:"30s" validate:"gte=1s"`
}

// Normalize applies defaults to unset fields and validates the result.
func (c *BotConfig) Normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply bot config defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate bot config %s: %w", c.BotID, err)
	}
	return nil
}

// Store provides read-only access to bot configurations.
type Store interface {
	Get(botID string) (*BotConfig, error)
}

// MemoryStore is a Store backed by an in-memory map, used by the demo
// binary and tests.
type MemoryStore struct {
	configs map[string]*BotConfig
}

// NewMemoryStore normalizes and indexes the given configs.
func NewMemoryStore(configs ...*BotConfig) (*MemoryStore, error) {
	s := &MemoryStore{configs: make(map[string]*BotConfig, len(configs))}
	for _, c := range configs {
		if err := c.Normalize(); err != nil {
			return nil, err
		}
		s.configs[c.BotID] = c
	}
	return s, nil
}

func (s *MemoryStore) Get(botID string) (*BotConfig, error) {
	c, ok := s.configs[botID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, botID)
	}
	return c, nil
}
