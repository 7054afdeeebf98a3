package main

import (
	"context"
	"fmt"
	"os"

	"dhan-ai-trader/internal/broker/brokerobs"
	"dhan-ai-trader/internal/broker/zerodha"
	"dhan-ai-trader/internal/engine"
	"dhan-ai-trader/internal/engine/engineobs"
	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/llm/gemini"
	"dhan-ai-trader/internal/llm/llmobs"
	"dhan-ai-trader/internal/llm/noop"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/store"
	"dhan-ai-trader/internal/trace"
	"dhan-ai-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes env, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeBroker returns the broker wrapped with observability
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := zerodha.NewZerodha(zerodha.Params{
		Mode:        cfg.Mode,
		APIKey:      os.Getenv("KITE_API_KEY"),
		AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
		Exchange:    cfg.Exchange,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return brokerobs.Wrap(brk)
}

// initializeDecider returns the decision source wrapped with observability
func initializeDecider(ctx context.Context, cfg *store.Config) interfaces.DecisionSource {
	var decider interfaces.DecisionSource

	switch cfg.LLM.Provider {
	case "GEMINI":
		decider = gemini.NewDecider(cfg)
	default:
		decider = noop.NewDecider()
		logger.Warn(ctx, "No model provider configured - using Noop decider (always HOLD)")
	}

	return llmobs.Wrap(decider)
}

// initializeEngine returns the trading engine wrapped with observability
func initializeEngine(cfg *store.Config, brk interfaces.Broker, decider interfaces.DecisionSource) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, brk, decider))
}
