package interfaces

import (
	"context"

	"dhan-ai-trader/internal/types"
)

type Engine interface {
	Step(ctx context.Context, securityID string) (*types.StepResult, error)
}
