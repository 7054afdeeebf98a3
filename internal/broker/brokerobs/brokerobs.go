package brokerobs

import (
	"context"
	"fmt"
	"time"

	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/trace"
	"dhan-ai-trader/internal/types"
)

// observableBroker wraps a Broker with logging and tracing
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{broker: broker}
}

func (ob *observableBroker) Snapshot(ctx context.Context, securityID string) (types.MarketSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Snapshot")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Fetching market snapshot", "security_id", securityID)

	snap, err := ob.broker.Snapshot(ctx, securityID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch snapshot", err, "security_id", securityID)
		return types.MarketSnapshot{}, err
	}

	logger.DebugSkip(ctx, 1, "Snapshot fetched successfully",
		"security_id", securityID, "price", snap.LastPrice)
	return snap, nil
}

func (ob *observableBroker) DailyCandles(ctx context.Context, securityID string, from, to time.Time) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.DailyCandles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching daily candles",
		"security_id", securityID,
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
	)

	candles, err := ob.broker.DailyCandles(ctx, securityID, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch daily candles", err, "security_id", securityID)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Daily candles fetched successfully",
		"security_id", securityID, "count", len(candles))
	return candles, nil
}

func (ob *observableBroker) AvailableFunds(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.AvailableFunds")
	defer span.End()

	funds, err := ob.broker.AvailableFunds(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch available funds", err)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Available funds fetched", "funds", funds)
	return funds, nil
}

func (ob *observableBroker) NetPosition(ctx context.Context, securityID string) (types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.NetPosition")
	defer span.End()

	pos, err := ob.broker.NetPosition(ctx, securityID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch net position", err, "security_id", securityID)
		return types.Position{}, err
	}

	logger.DebugSkip(ctx, 1, "Net position fetched",
		"security_id", securityID, "net_qty", pos.NetQty)
	return pos, nil
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"security_id", req.SecurityID,
		"side", req.Side,
		"qty", req.Qty,
		"tag", req.Tag,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"security_id", req.SecurityID,
			"side", req.Side,
			"qty", req.Qty,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"security_id", req.SecurityID,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}

func (ob *observableBroker) Start(ctx context.Context, securityIDs []string) error {
	ctx, span := trace.StartSpan(ctx, "broker.Start")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting broker", "securities", securityIDs, "count", len(securityIDs))

	if err := ob.broker.Start(ctx, securityIDs); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to start broker", err, "securities", securityIDs)
		return fmt.Errorf("broker start failed: %w", err)
	}

	logger.InfoSkip(ctx, 1, "Broker started successfully", "securities", securityIDs)
	return nil
}

func (ob *observableBroker) Stop(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "broker.Stop")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Stopping broker")
	ob.broker.Stop(ctx)
	logger.InfoSkip(ctx, 1, "Broker stopped successfully")
}
