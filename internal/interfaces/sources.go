package interfaces

import (
	"context"
	"time"

	"dhan-ai-trader/internal/types"
)

// MarketDataSource yields the current market snapshot per instrument.
type MarketDataSource interface {
	Snapshot(ctx context.Context, securityID string) (types.MarketSnapshot, error)
}

// HistoricalDataSource returns daily OHLC candles for a date range. It
// may fail or be unavailable; callers degrade to an empty context.
type HistoricalDataSource interface {
	DailyCandles(ctx context.Context, securityID string, from, to time.Time) ([]types.Candle, error)
}

// CapitalSource reports the currently available trading capital.
type CapitalSource interface {
	AvailableFunds(ctx context.Context) (float64, error)
}

// PositionSource reports the current net position per instrument.
type PositionSource interface {
	NetPosition(ctx context.Context, securityID string) (types.Position, error)
}

// Broker aggregates every external read and the order-placement call.
type Broker interface {
	MarketDataSource
	HistoricalDataSource
	CapitalSource
	PositionSource
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
	Start(ctx context.Context, securityIDs []string) error
	Stop(ctx context.Context)
}
