package engineobs

import (
	"context"
	"time"

	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/trace"
	"dhan-ai-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Step(ctx context.Context, securityID string) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting trading cycle",
		"security_id", securityID,
	)

	result, err := oe.engine.Step(ctx, securityID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"security_id", securityID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"security_id", securityID,
		"action", result.Recommendation.Action,
		"confidence", result.Recommendation.Confidence,
		"strategy", result.Strategy,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
