package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ai-trading-engine/config"
	"ai-trading-engine/internal/botconfig"
	"ai-trading-engine/internal/circuit"
	"ai-trading-engine/internal/engine"
	"ai-trading-engine/internal/events"
	"ai-trading-engine/internal/execution"
	"ai-trading-engine/internal/learning"
	"ai-trading-engine/internal/logging"
	"ai-trading-engine/internal/market"
	"ai-trading-engine/internal/metrics"
	"ai-trading-engine/internal/sentiment"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.LoggingConfig.Level, cfg.LoggingConfig.Pretty)
	logger.Info().Msg("ai trading engine starting")

	if cfg.MetricsConfig.Enabled {
		metrics.Register()
		logger.Info().Msg("prometheus collectors registered")
	}

	// Event bus
	eventBus := events.NewEventBus()
	eventBus.SubscribeAll(func(ev events.Event) {
		logger.Debug().Str("event", string(ev.Type)).Str("bot_id", ev.BotID).Msg("event")
	})

	// Market data: the demo runs against the simulated provider
	provider := market.NewMockProvider(cfg.MarketConfig.MockSeed)

	// Execution: paper adapter with a funded demo account
	adapter := execution.NewPaperAdapter(provider, logger)
	adapter.Deposit("demo", "USDT", decimal.NewFromFloat(cfg.EngineConfig.PaperQuoteAmount))

	// Learning store
	store := learning.NewStore(cfg.LearningConfig.AggregateCapacity, cfg.LearningConfig.ProfitHistoryCap)

	// Demo bot configurations
	configs, err := botconfig.NewMemoryStore(
		&botconfig.BotConfig{
			BotID:     "demo-master-btc",
			AccountID: "demo",
			Exchange:  "paper",
			Symbol:    "BTCUSDT",
			Strategy:  "master",
		},
		&botconfig.BotConfig{
			BotID:     "demo-trend-eth",
			AccountID: "demo",
			Exchange:  "paper",
			Symbol:    "ETHUSDT",
			Strategy:  "trend-follow",
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid bot configuration")
	}

	breaker := circuit.NewBreaker(circuit.Config{
		Enabled:              cfg.CircuitConfig.Enabled,
		MaxConsecutiveLosses: cfg.CircuitConfig.MaxConsecutiveLosses,
		Cooldown:             cfg.CircuitConfig.Cooldown,
	})

	eng := engine.New(engine.Deps{
		Provider:     provider,
		Sentiment:    sentiment.NewNeutralSource(),
		Adapter:      adapter,
		Learning:     store,
		Configs:      configs,
		Bus:          eventBus,
		Logger:       logger,
		Breaker:      breaker,
		CycleTimeout: cfg.EngineConfig.CycleTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, botID := range []string{"demo-master-btc", "demo-trend-eth"} {
		if err := eng.StartBot(ctx, botID); err != nil {
			logger.Fatal().Err(err).Str("bot_id", botID).Msg("failed to start bot")
		}
	}

	logger.Info().Msg("engine running, press ctrl+c to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping bots")
	cancel()

	reports := eng.StopAll()
	for botID, report := range reports {
		logger.Info().Str("bot_id", botID).
			Int("positions_closed", len(report.Closed)).
			Int("close_failures", len(report.Failed)).
			Msg("bot shutdown report")
		insights := eng.Insights(botID)
		logger.Info().Str("bot_id", botID).
			Float64("win_rate", insights.WinRate).
			Float64("average_profit", insights.AverageProfit).
			Str("best_strategy", insights.BestStrategy).
			Msg("learning insights")
	}

	logger.Info().Msg("engine stopped")
}
