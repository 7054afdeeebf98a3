package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dhan-ai-trader/internal/eod"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	brk := initializeBroker(ctx, cfg)
	if err := brk.Start(ctx, cfg.Universe); err != nil {
		logger.ErrorWithErr(ctx, "Broker startup failed", err)
		os.Exit(1)
	}
	defer brk.Stop(context.Background())

	decider := initializeDecider(ctx, cfg)
	eng := initializeEngine(cfg, brk, decider)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	logger.Info(ctx, "Trader started",
		"mode", cfg.Mode,
		"universe", cfg.Universe,
		"poll_seconds", cfg.PollSeconds,
		"provider", cfg.LLM.Provider,
	)

	for {
		select {
		case <-tick.C:
			for _, id := range cfg.Universe {
				if _, err := eng.Step(ctx, id); err != nil {
					logger.ErrorWithErr(ctx, "Step failed", err, "security_id", id)
				}
			}
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				if p, err := eod.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "EOD CSV written", "path", p)
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			if p, err := eod.SummarizeToday(); err == nil && p != "" {
				logger.Info(ctx, "EOD CSV written", "path", p)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}
