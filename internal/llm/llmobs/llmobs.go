package llmobs

import (
	"context"

	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/trace"
	"dhan-ai-trader/internal/types"
)

// observableDecider wraps a DecisionSource with logging and tracing
type observableDecider struct {
	decider interfaces.DecisionSource
}

// Compile-time interface check
var _ interfaces.DecisionSource = (*observableDecider)(nil)

// Wrap wraps a decision source with observability middleware
func Wrap(decider interfaces.DecisionSource) interfaces.DecisionSource {
	return &observableDecider{decider: decider}
}

func (od *observableDecider) Analyze(ctx context.Context, securityID string, snap types.MarketSnapshot, features types.FeatureSet, position types.Position) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Analyze")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting trading decision",
		"security_id", securityID,
		"price", snap.LastPrice,
		"feature_count", len(features),
	)

	raw, err := od.decider.Analyze(ctx, securityID, snap, features, position)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading decision", err,
			"security_id", securityID,
			"price", snap.LastPrice,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Trading decision received",
		"security_id", securityID,
		"payload_bytes", len(raw),
	)

	return raw, nil
}
