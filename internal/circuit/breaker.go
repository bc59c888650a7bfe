package circuit

import (
	"sync"
	"time"
)

// State is the breaker state for one bot.
type State string

const (
	StateClosed   State = "closed"    // normal operation
	StateOpen     State = "open"      // trading halted
	StateHalfOpen State = "half_open" // one probe trade allowed
)

// Config holds the breaker thresholds.
type Config struct {
	Enabled              bool          `json:"enabled"`
	MaxConsecutiveLosses int           `json:"max_consecutive_losses"`
	Cooldown             time.Duration `json:"cooldown"`
}

// DefaultConfig returns safe defaults: trip after 5 straight losses, half
// an hour of cooldown.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		MaxConsecutiveLosses: 5,
		Cooldown:             30 * time.Minute,
	}
}

type botState struct {
	state             State
	consecutiveLosses int
	trippedAt         time.Time
}

// Breaker halts a bot's trading after a run of consecutive losses. Each
// bot trips independently. After the cooldown the breaker goes half-open
// and admits a single probe trade: a win closes it again, a loss re-trips
// it immediately.
type Breaker struct {
	mu     sync.Mutex
	config Config
	bots   map[string]*botState

	now func() time.Time // test hook
}

// NewBreaker creates a breaker. Zero thresholds fall back to defaults.
func NewBreaker(config Config) *Breaker {
	if config.MaxConsecutiveLosses <= 0 {
		config.MaxConsecutiveLosses = DefaultConfig().MaxConsecutiveLosses
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultConfig().Cooldown
	}
	return &Breaker{
		config: config,
		bots:   make(map[string]*botState),
		now:    time.Now,
	}
}

// Allow reports whether the bot may trade right now.
func (b *Breaker) Allow(botID string) bool {
	if !b.config.Enabled {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.bots[botID]
	if s == nil || s.state == StateClosed {
		return true
	}

	if s.state == StateOpen && b.now().Sub(s.trippedAt) >= b.config.Cooldown {
		s.state = StateHalfOpen
	}
	return s.state == StateHalfOpen
}

// RecordOutcome feeds one realized trade result into the breaker.
func (b *Breaker) RecordOutcome(botID string, pnl float64) {
	if !b.config.Enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.bots[botID]
	if s == nil {
		s = &botState{state: StateClosed}
		b.bots[botID] = s
	}

	if pnl > 0 {
		s.consecutiveLosses = 0
		s.state = StateClosed
		return
	}
	if pnl == 0 {
		return
	}

	s.consecutiveLosses++
	if s.state == StateHalfOpen || s.consecutiveLosses >= b.config.MaxConsecutiveLosses {
		s.state = StateOpen
		s.trippedAt = b.now()
	}
}

// StateFor reports the bot's current breaker state.
func (b *Breaker) StateFor(botID string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.bots[botID]; s != nil {
		return s.state
	}
	return StateClosed
}

// Reset clears the bot's breaker, re-enabling trading immediately.
func (b *Breaker) Reset(botID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bots, botID)
}
