package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the engine-level configuration. Bot-specific settings live in
// the bot configuration store; this covers process-wide knobs only.
type Config struct {
	EngineConfig   EngineConfig   `json:"engine"`
	LearningConfig LearningConfig `json:"learning"`
	MarketConfig   MarketConfig   `json:"market"`
	CircuitConfig  CircuitConfig  `json:"circuit"`
	LoggingConfig  LoggingConfig  `json:"logging"`
	MetricsConfig  MetricsConfig  `json:"metrics"`
}

// CircuitConfig controls the loss-streak circuit breaker.
type CircuitConfig struct {
	Enabled              bool          `json:"enabled"`
	MaxConsecutiveLosses int           `json:"max_consecutive_losses"`
	Cooldown             time.Duration `json:"cooldown"`
}

// EngineConfig controls the analysis loop.
type EngineConfig struct {
	CycleTimeout     time.Duration `json:"cycle_timeout"`
	PaperTrading     bool          `json:"paper_trading"`
	PaperQuoteAmount float64       `json:"paper_quote_amount"` // initial quote balance per demo account
}

// LearningConfig bounds the adaptive learning store.
type LearningConfig struct {
	AggregateCapacity int `json:"aggregate_capacity"`
	ProfitHistoryCap  int `json:"profit_history_cap"`
}

// MarketConfig controls the snapshot provider.
type MarketConfig struct {
	MockMode bool  `json:"mock_mode"` // use simulated data
	MockSeed int64 `json:"mock_seed"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Pretty bool   `json:"pretty"` // console writer instead of JSON
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// Load reads config.json when present, then applies environment variable
// overrides (these take precedence).
func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start from defaults
		cfg = defaultConfig()
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		EngineConfig: EngineConfig{
			CycleTimeout:     10 * time.Second,
			PaperTrading:     true,
			PaperQuoteAmount: 10_000,
		},
		LearningConfig: LearningConfig{
			AggregateCapacity: 100,
			ProfitHistoryCap:  500,
		},
		MarketConfig: MarketConfig{
			MockMode: true,
			MockSeed: 1,
		},
		CircuitConfig: CircuitConfig{
			Enabled:              true,
			MaxConsecutiveLosses: 5,
			Cooldown:             30 * time.Minute,
		},
		LoggingConfig: LoggingConfig{Level: "info"},
		MetricsConfig: MetricsConfig{Enabled: true},
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	cfg.EngineConfig.CycleTimeout = getEnvDurationOrDefault("ENGINE_CYCLE_TIMEOUT", cfg.EngineConfig.CycleTimeout)
	cfg.EngineConfig.PaperTrading = getEnvOrDefault("ENGINE_PAPER_TRADING", boolString(cfg.EngineConfig.PaperTrading)) == "true"
	cfg.EngineConfig.PaperQuoteAmount = getEnvFloatOrDefault("ENGINE_PAPER_QUOTE_AMOUNT", cfg.EngineConfig.PaperQuoteAmount)

	cfg.LearningConfig.AggregateCapacity = getEnvIntOrDefault("LEARNING_AGGREGATE_CAPACITY", cfg.LearningConfig.AggregateCapacity)
	cfg.LearningConfig.ProfitHistoryCap = getEnvIntOrDefault("LEARNING_PROFIT_HISTORY_CAP", cfg.LearningConfig.ProfitHistoryCap)

	cfg.MarketConfig.MockMode = getEnvOrDefault("MARKET_MOCK_MODE", boolString(cfg.MarketConfig.MockMode)) == "true"
	cfg.MarketConfig.MockSeed = int64(getEnvIntOrDefault("MARKET_MOCK_SEED", int(cfg.MarketConfig.MockSeed)))

	cfg.CircuitConfig.Enabled = getEnvOrDefault("CIRCUIT_ENABLED", boolString(cfg.CircuitConfig.Enabled)) == "true"
	cfg.CircuitConfig.MaxConsecutiveLosses = getEnvIntOrDefault("CIRCUIT_MAX_CONSECUTIVE_LOSSES", cfg.CircuitConfig.MaxConsecutiveLosses)
	cfg.CircuitConfig.Cooldown = getEnvDurationOrDefault("CIRCUIT_COOLDOWN", cfg.CircuitConfig.Cooldown)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Pretty = getEnvOrDefault("LOG_PRETTY", boolString(cfg.LoggingConfig.Pretty)) == "true"

	cfg.MetricsConfig.Enabled = getEnvOrDefault("METRICS_ENABLED", boolString(cfg.MetricsConfig.Enabled)) == "true"
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.EngineConfig.CycleTimeout <= 0 {
		return fmt.Errorf("engine.cycle_timeout must be positive, got %s", c.EngineConfig.CycleTimeout)
	}
	if c.LearningConfig.AggregateCapacity <= 0 {
		return fmt.Errorf("learning.aggregate_capacity must be positive, got %d", c.LearningConfig.AggregateCapacity)
	}
	if c.LearningConfig.ProfitHistoryCap <= 0 {
		return fmt.Errorf("learning.profit_history_cap must be positive, got %d", c.LearningConfig.ProfitHistoryCap)
	}
	if c.CircuitConfig.Enabled && c.CircuitConfig.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("circuit.max_consecutive_losses must be positive, got %d", c.CircuitConfig.MaxConsecutiveLosses)
	}
	if c.EngineConfig.PaperTrading && c.EngineConfig.PaperQuoteAmount <= 0 {
		return fmt.Errorf("engine.paper_quote_amount must be positive in paper mode, got %.2f", c.EngineConfig.PaperQuoteAmount)
	}
	return nil
}

func loadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
