package interfaces

import (
	"context"

	"dhan-ai-trader/internal/types"
)

// DecisionSource produces a raw, possibly malformed decision payload for
// one instrument. The engine normalizes the payload itself; anything a
// source returns, including garbage, must end up as a safe HOLD.
type DecisionSource interface {
	Analyze(ctx context.Context, securityID string, snap types.MarketSnapshot, features types.FeatureSet, position types.Position) (string, error)
}
