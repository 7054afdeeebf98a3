package noop

import (
	"context"

	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/types"
)

// Decider is a fallback decision source used when no model provider is
// configured. It always answers HOLD.
type Decider struct{}

func NewDecider() *Decider {
	return &Decider{}
}

func (d *Decider) Analyze(ctx context.Context, securityID string, snap types.MarketSnapshot, features types.FeatureSet, position types.Position) (string, error) {
	logger.Debug(ctx, "Noop decider called - always returns HOLD", "security_id", securityID)
	return `{"action":"HOLD","confidence":0.0,"quantity":0,"reasoning":"noop_decider_fallback"}`, nil
}
