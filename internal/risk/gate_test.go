package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"dhan-ai-trader/internal/types"
)

var errFundsDown = errors.New("funds source down")

func testGateConfig() GateConfig {
	return GateConfig{
		MinConfidence:      0.7,
		RiskPerTrade:       0.02,
		MaxPositionSize:    1000,
		StopLossPercent:    0.05,
		MaxDailyTrades:     10,
		MaxTradesPerSymbol: 10,
	}
}

func newTestGate(cfg GateConfig, capital float64) *Gate {
	counters := NewCounterStore()
	funds := NewFundsCache(&stubCapital{amount: capital}, time.Minute)
	return NewGate(cfg, counters, funds)
}

func buyRec(conf float64) types.TradeRecommendation {
	return types.TradeRecommendation{Action: "BUY", Confidence: conf}
}

func TestGateDeniesLowConfidence(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	if g.ShouldExecute(context.Background(), buyRec(0.5), "RELIANCE", 10, 0) {
		t.Error("confidence 0.5 below minimum 0.7 must be denied")
	}
	if !g.ShouldExecute(context.Background(), buyRec(0.7), "RELIANCE", 10, 0) {
		t.Error("confidence equal to minimum must pass")
	}
}

func TestGateDeniesHold(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	rec := types.TradeRecommendation{Action: "HOLD", Confidence: 0.99}
	if g.ShouldExecute(context.Background(), rec, "TCS", 10, 0) {
		t.Error("HOLD must never execute")
	}
}

func TestGateDeniesZeroQuantity(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	if g.ShouldExecute(context.Background(), buyRec(0.9), "INFY", 0, 0) {
		t.Error("zero quantity must be denied")
	}
}

func TestGateTradingHours(t *testing.T) {
	cfg := testGateConfig()
	cfg.TradingStart = "09:15"
	cfg.TradingEnd = "15:30"
	g := newTestGate(cfg, 100000)

	ist := time.FixedZone("IST", 19800)
	g.now = func() time.Time { return time.Date(2025, 1, 6, 10, 0, 0, 0, ist) }
	if !g.ShouldExecute(context.Background(), buyRec(0.9), "SBIN", 10, 0) {
		t.Error("10:00 IST inside 09:15-15:30 must pass")
	}

	g.now = func() time.Time { return time.Date(2025, 1, 6, 16, 0, 0, 0, ist) }
	if g.ShouldExecute(context.Background(), buyRec(0.9), "SBIN", 10, 0) {
		t.Error("16:00 IST outside the window must be denied")
	}
}

func TestGateUnparseableHoursPass(t *testing.T) {
	cfg := testGateConfig()
	cfg.TradingStart = "whenever"
	cfg.TradingEnd = "15:30"
	g := newTestGate(cfg, 100000)
	if !g.ShouldExecute(context.Background(), buyRec(0.9), "ITC", 10, 0) {
		t.Error("unparseable trading window must not block execution")
	}
}

func TestGateDailyTradeCap(t *testing.T) {
	cfg := testGateConfig()
	cfg.MaxDailyTrades = 2
	g := newTestGate(cfg, 100000)

	g.counters.Record("RELIANCE")
	if !g.ShouldExecute(context.Background(), buyRec(0.9), "TCS", 10, 0) {
		t.Error("one trade under the aggregate cap must pass")
	}
	g.counters.Record("TCS")
	if g.ShouldExecute(context.Background(), buyRec(0.9), "INFY", 10, 0) {
		t.Error("aggregate cap reached must deny")
	}
}

func TestGatePerSymbolTradeCap(t *testing.T) {
	cfg := testGateConfig()
	cfg.MaxTradesPerSymbol = 1
	g := newTestGate(cfg, 100000)

	g.counters.Record("LT")
	if g.ShouldExecute(context.Background(), buyRec(0.9), "LT", 10, 0) {
		t.Error("per-symbol cap reached must deny")
	}
	if !g.ShouldExecute(context.Background(), buyRec(0.9), "TITAN", 10, 0) {
		t.Error("another instrument under its cap must pass")
	}
}

func TestGateDeniesNakedShort(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	rec := types.TradeRecommendation{Action: "SELL", Confidence: 0.9}
	if g.ShouldExecute(context.Background(), rec, "MARUTI", 10, 0) {
		t.Error("SELL while flat with shorting disabled must be denied")
	}

	cfg := testGateConfig()
	cfg.AllowShortSelling = true
	g = newTestGate(cfg, 100000)
	if !g.ShouldExecute(context.Background(), rec, "MARUTI", 10, 0) {
		t.Error("SELL while flat with shorting enabled must pass")
	}
}

func TestResolveQuantityFromRiskBudget(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	rec := buyRec(0.9)
	// 100000 * 0.02 / (1600 * 0.05) = 25
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 0); qty != 25 {
		t.Errorf("qty = %d, want 25", qty)
	}
}

func TestResolveQuantityHonorsUpstream(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	rec := buyRec(0.9)
	rec.Quantity = 7
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 0); qty != 7 {
		t.Errorf("qty = %d, want upstream 7", qty)
	}
}

func TestResolveQuantityClampsBuyToPositionHeadroom(t *testing.T) {
	cfg := testGateConfig()
	cfg.MaxPositionSize = 30
	g := newTestGate(cfg, 100000)

	rec := buyRec(0.9)
	rec.Quantity = 50
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 10); qty != 20 {
		t.Errorf("qty = %d, want clamp to headroom 20", qty)
	}
	// Already at the cap: nothing to buy.
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 30); qty != 0 {
		t.Errorf("qty at cap = %d, want 0", qty)
	}
}

func TestResolveQuantityClampsSellToHolding(t *testing.T) {
	g := newTestGate(testGateConfig(), 100000)
	rec := types.TradeRecommendation{Action: "SELL", Confidence: 0.9, Quantity: 100}

	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 40); qty != 40 {
		t.Errorf("sell qty = %d, want clamp to holding 40", qty)
	}
	// Flat with shorting disabled yields nothing to sell.
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 0); qty != 0 {
		t.Errorf("flat sell qty = %d, want 0", qty)
	}
}

func TestResolveQuantitySellUnclampedWhenShortingAllowed(t *testing.T) {
	cfg := testGateConfig()
	cfg.AllowShortSelling = true
	g := newTestGate(cfg, 100000)
	rec := types.TradeRecommendation{Action: "SELL", Confidence: 0.9, Quantity: 100}
	if qty := g.ResolveQuantity(context.Background(), rec, 1600, 0); qty != 100 {
		t.Errorf("short sell qty = %d, want 100", qty)
	}
}

func TestResolveQuantityZeroOnFundsFailure(t *testing.T) {
	counters := NewCounterStore()
	funds := NewFundsCache(&stubCapital{err: errFundsDown}, time.Minute)
	g := NewGate(testGateConfig(), counters, funds)
	if qty := g.ResolveQuantity(context.Background(), buyRec(0.9), 1600, 0); qty != 0 {
		t.Errorf("qty with unavailable funds = %d, want 0", qty)
	}
}
