package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-trading-engine/internal/botconfig"
	"ai-trading-engine/internal/circuit"
	"ai-trading-engine/internal/events"
	"ai-trading-engine/internal/execution"
	"ai-trading-engine/internal/indicator"
	"ai-trading-engine/internal/learning"
	"ai-trading-engine/internal/market"
	"ai-trading-engine/internal/metrics"
	"ai-trading-engine/internal/sentiment"
	"ai-trading-engine/internal/strategy"
)

// DefaultCycleTimeout bounds the collaborator calls of one analysis cycle.
const DefaultCycleTimeout = 10 * time.Second

// Deps are the collaborators the engine orchestrates. Everything is
// injected; the engine holds no process-wide state, so tests can build
// isolated instances.
type Deps struct {
	Provider  market.Provider
	Sentiment sentiment.Source
	Adapter   execution.Adapter
	Learning  *learning.Store
	Configs   botconfig.Store
	Bus       *events.EventBus
	Logger    zerolog.Logger

	// Breaker halts trading after loss streaks. Nil disables the check.
	Breaker *circuit.Breaker

	// CycleTimeout caps provider and adapter calls per cycle. Zero means
	// DefaultCycleTimeout.
	CycleTimeout time.Duration
}

// Engine drives the per-bot analysis loops: snapshot -> indicators ->
// strategy -> (maybe) order, with outcomes folded back into the learning
// store.
type Engine struct {
	provider     market.Provider
	sentiment    sentiment.Source
	adapter      execution.Adapter
	learning     *learning.Store
	configs      botconfig.Store
	bus          *events.EventBus
	logger       zerolog.Logger
	breaker      *circuit.Breaker
	cycleTimeout time.Duration

	mu      sync.Mutex
	runners map[string]*runner
	meta    map[string]tradeMeta // botID|symbol|side -> signal context at entry
	wg      sync.WaitGroup
}

// tradeMeta preserves the decision context of an open trade so the
// learning store can be updated with the analysis that produced it.
type tradeMeta struct {
	action     string
	regime     indicator.Regime
	confidence float64
}

type runner struct {
	botID  string
	cfg    *botconfig.BotConfig
	kind   strategy.Kind
	gen    *strategy.Generator
	cancel context.CancelFunc
}

// New builds an engine from its collaborators.
func New(deps Deps) *Engine {
	timeout := deps.CycleTimeout
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	return &Engine{
		provider:     deps.Provider,
		sentiment:    deps.Sentiment,
		adapter:      deps.Adapter,
		learning:     deps.Learning,
		configs:      deps.Configs,
		bus:          deps.Bus,
		logger:       deps.Logger.With().Str("component", "engine").Logger(),
		breaker:      deps.Breaker,
		cycleTimeout: timeout,
		runners:      make(map[string]*runner),
		meta:         make(map[string]tradeMeta),
	}
}

// StartBot launches the bot's periodic analysis loop. Returns an error if
// the bot is unknown, misconfigured, or already running.
func (e *Engine) StartBot(ctx context.Context, botID string) error {
	cfg, err := e.configs.Get(botID)
	if err != nil {
		return fmt.Errorf("start bot: %w", err)
	}
	kind, err := strategy.ParseKind(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("start bot %s: %w", botID, err)
	}

	e.mu.Lock()
	if _, running := e.runners[botID]; running {
		e.mu.Unlock()
		return fmt.Errorf("bot %s already running", botID)
	}

	botCtx, cancel := context.WithCancel(ctx)
	r := &runner{
		botID:  botID,
		cfg:    cfg,
		kind:   kind,
		gen:    strategy.NewGenerator(e.learning),
		cancel: cancel,
	}
	e.runners[botID] = r
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(botCtx, r)

	e.bus.Publish(events.Event{Type: events.EventBotStarted, BotID: botID,
		Data: map[string]interface{}{"strategy": cfg.Strategy, "symbol": cfg.Symbol}})
	e.logger.Info().Str("bot_id", botID).Str("strategy", cfg.Strategy).
		Str("symbol", cfg.Symbol).Msg("bot started")

	return nil
}

// run is the bot's loop: one cycle per tick until the context is
// cancelled. A failing cycle is logged and skipped, never fatal.
func (e *Engine) run(ctx context.Context, r *runner) {
	defer e.wg.Done()

	ticker := time.NewTicker(r.cfg.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.cycle(ctx, r)
		case <-ctx.Done():
			return
		}
	}
}

// CloseFailure records one position that could not be closed during stop.
type CloseFailure struct {
	Position execution.Position
	Err      error
}

// CloseReport summarizes the best-effort position unwind of a stopping
// bot.
type CloseReport struct {
	Closed []execution.CloseResult
	Failed []CloseFailure
}

// StopBot cancels the bot's loop and closes its open positions
// best-effort: individual close failures are collected in the report and
// do not abort the remaining closures.
func (e *Engine) StopBot(botID string) (*CloseReport, error) {
	e.mu.Lock()
	r, ok := e.runners[botID]
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("bot %s not running", botID)
	}
	delete(e.runners, botID)
	e.mu.Unlock()

	r.cancel()

	report := &CloseReport{}

	ctx, cancel := context.WithTimeout(context.Background(), e.cycleTimeout)
	defer cancel()

	positions, err := e.adapter.OpenPositions(ctx, r.cfg.AccountID, r.cfg.Exchange, botID)
	if err != nil {
		e.logger.Error().Err(err).Str("bot_id", botID).Msg("listing open positions failed")
	}

	for _, pos := range positions {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), e.cycleTimeout)
		result, err := e.adapter.ClosePosition(closeCtx, r.cfg.AccountID, r.cfg.Exchange, pos.ID)
		closeCancel()

		if err != nil {
			e.logger.Warn().Err(err).Str("bot_id", botID).Str("position_id", pos.ID).
				Msg("position close failed")
			report.Failed = append(report.Failed, CloseFailure{Position: pos, Err: err})
			continue
		}

		report.Closed = append(report.Closed, *result)
		e.recordClose(botID, *result)
	}

	e.bus.Publish(events.Event{Type: events.EventBotStopped, BotID: botID,
		Data: map[string]interface{}{
			"closed": len(report.Closed),
			"failed": len(report.Failed),
		}})
	e.logger.Info().Str("bot_id", botID).Int("closed", len(report.Closed)).
		Int("failed", len(report.Failed)).Msg("bot stopped")

	return report, nil
}

// StopAll stops every running bot and waits for their loops to exit.
func (e *Engine) StopAll() map[string]*CloseReport {
	e.mu.Lock()
	ids := make([]string, 0, len(e.runners))
	for id := range e.runners {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	reports := make(map[string]*CloseReport, len(ids))
	for _, id := range ids {
		if report, err := e.StopBot(id); err == nil {
			reports[id] = report
		}
	}
	e.wg.Wait()
	return reports
}

// Running reports whether the bot's loop is active.
func (e *Engine) Running(botID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.runners[botID]
	return ok
}

// Insights exposes the learning store's summary for a bot.
func (e *Engine) Insights(botID string) learning.Insights {
	return e.learning.Insights(botID)
}

// recordClose folds a realized close back into the learning store using
// the decision context captured when the trade was opened.
func (e *Engine) recordClose(botID string, result execution.CloseResult) {
	key := metaKey(botID, result.Position.Symbol, result.Position.Side)

	e.mu.Lock()
	m, ok := e.meta[key]
	delete(e.meta, key)
	e.mu.Unlock()

	if !ok {
		// Trade predates this process or was opened out of band; bucket it
		// under the ranging regime rather than dropping the outcome.
		m = tradeMeta{action: result.Position.Side, regime: indicator.RegimeRanging, confidence: 0.5}
	}

	pnl, _ := result.Pnl.Float64()
	if e.breaker != nil {
		e.breaker.RecordOutcome(botID, pnl)
	}
	e.learning.RecordOutcome(botID, learning.Outcome{
		Action:     m.action,
		Regime:     m.regime,
		Confidence: m.confidence,
		Pnl:        pnl,
	})
	metrics.LearningEntries.Set(float64(e.learning.Len()))
	e.bus.PublishTradeClosed(botID, result.Position.Symbol, pnl)
}

func metaKey(botID, symbol, side string) string {
	return botID + "|" + symbol + "|" + side
}
