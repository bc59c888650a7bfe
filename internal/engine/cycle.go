package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ai-trading-engine/internal/events"
	"ai-trading-engine/internal/execution"
	"ai-trading-engine/internal/indicator"
	"ai-trading-engine/internal/metrics"
	"ai-trading-engine/internal/sentiment"
	"ai-trading-engine/internal/strategy"
)

// cycle runs one analyze-and-maybe-trade pass for a bot. Any failure logs,
// increments an error counter and skips the cycle; the bot keeps running.
func (e *Engine) cycle(ctx context.Context, r *runner) {
	start := time.Now()
	defer func() {
		metrics.CycleDuration.WithLabelValues(r.botID).Observe(time.Since(start).Seconds())
	}()

	log := e.logger.With().Str("bot_id", r.botID).Str("symbol", r.cfg.Symbol).Logger()

	cctx, cancel := context.WithTimeout(ctx, e.cycleTimeout)
	defer cancel()

	snap, err := e.provider.GetSnapshot(cctx, r.cfg.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unavailable, cycle skipped")
		metrics.CycleErrors.WithLabelValues("market_data").Inc()
		e.bus.Publish(events.Event{Type: events.EventCycleError, BotID: r.botID,
			Data: map[string]interface{}{"reason": "market_data", "error": err.Error()}})
		return
	}

	reading, err := e.sentiment.Score(cctx, r.cfg.Symbol)
	if err != nil {
		// Sentiment is enrichment: degrade to neutral rather than skipping.
		log.Debug().Err(err).Msg("sentiment source failed, using neutral reading")
		reading = sentiment.Reading{Sentiment: 0, NewsImpact: 0.5}
	}

	analysis := indicator.Analyze(snap, reading)

	sig, err := r.gen.Generate(r.kind, analysis, r.cfg)
	if err != nil {
		log.Error().Err(err).Msg("signal generation failed")
		metrics.CycleErrors.WithLabelValues("config").Inc()
		return
	}

	metrics.SignalsTotal.WithLabelValues(sig.Strategy.String(), string(sig.Action)).Inc()
	e.bus.PublishSignal(r.botID, sig.Strategy.String(), r.cfg.Symbol, string(sig.Action),
		sig.Reasoning, sig.Confidence)

	if sig.Action == strategy.ActionHold || sig.Confidence < r.cfg.ConfidenceThreshold {
		log.Debug().Str("action", string(sig.Action)).Float64("confidence", sig.Confidence).
			Float64("threshold", r.cfg.ConfidenceThreshold).Msg("no trade this cycle")
		return
	}

	if e.breaker != nil && !e.breaker.Allow(r.botID) {
		log.Info().Str("state", string(e.breaker.StateFor(r.botID))).
			Msg("circuit breaker open, trade blocked")
		metrics.TradesTotal.WithLabelValues("skipped").Inc()
		e.bus.Publish(events.Event{Type: events.EventTradeSkipped, BotID: r.botID,
			Data: map[string]interface{}{"reason": "circuit breaker open"}})
		return
	}

	e.execute(cctx, r, analysis, sig, log)
}

// execute sizes and submits the order for an actionable signal.
func (e *Engine) execute(ctx context.Context, r *runner, analysis *indicator.Analysis,
	sig *strategy.Signal, log zerolog.Logger) {

	balances, err := e.adapter.GetBalances(ctx, r.cfg.AccountID, r.cfg.Exchange)
	if err != nil {
		log.Warn().Err(err).Msg("balance fetch failed, cycle skipped")
		metrics.CycleErrors.WithLabelValues("execution").Inc()
		return
	}

	quote := execution.QuoteAsset(r.cfg.Symbol)
	free := decimal.Zero
	for _, b := range balances {
		if b.Asset == quote {
			free = b.Free
			break
		}
	}

	notional := execution.SizeOrder(r.cfg, free).Mul(decimal.NewFromFloat(sig.SizeMultiplier))
	if !notional.IsPositive() {
		log.Debug().Msg("computed order size is zero, trade skipped")
		metrics.TradesTotal.WithLabelValues("skipped").Inc()
		return
	}

	if free.LessThan(notional) {
		log.Info().Str("needed", notional.StringFixed(2)).Str("free", free.StringFixed(2)).
			Str("asset", quote).Msg("insufficient balance, trade skipped")
		metrics.TradesTotal.WithLabelValues("skipped").Inc()
		e.bus.Publish(events.Event{Type: events.EventTradeSkipped, BotID: r.botID,
			Data: map[string]interface{}{"reason": execution.ErrInsufficientBalance.Error()}})
		return
	}

	price := decimal.NewFromFloat(analysis.CurrentPrice)
	result, err := e.adapter.PlaceOrder(ctx, r.cfg.AccountID, r.cfg.Exchange, execution.OrderRequest{
		BotID:  r.botID,
		Symbol: r.cfg.Symbol,
		Side:   string(sig.Action),
		Type:   "MARKET",
		Amount: notional,
		Price:  &price,
	})
	if err != nil {
		log.Error().Err(err).Msg("order placement failed")
		metrics.CycleErrors.WithLabelValues("execution").Inc()
		metrics.TradesTotal.WithLabelValues("failed").Inc()
		return
	}

	e.mu.Lock()
	e.meta[metaKey(r.botID, r.cfg.Symbol, string(sig.Action))] = tradeMeta{
		action:     string(sig.Action),
		regime:     analysis.MarketRegime,
		confidence: sig.Confidence,
	}
	e.mu.Unlock()

	metrics.TradesTotal.WithLabelValues("executed").Inc()
	e.bus.Publish(events.Event{Type: events.EventOrderPlaced, BotID: r.botID,
		Data: map[string]interface{}{
			"order_id": result.OrderID,
			"symbol":   result.Symbol,
			"side":     result.Side,
			"notional": result.Amount.InexactFloat64(),
			"price":    result.FillPrice.InexactFloat64(),
		}})
	log.Info().Str("side", result.Side).Str("notional", result.Amount.StringFixed(2)).
		Str("price", result.FillPrice.StringFixed(4)).Msg("order placed")
}
