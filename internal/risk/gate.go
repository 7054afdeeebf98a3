package risk

import (
	"context"
	"strconv"
	"strings"
	"time"

	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/types"
)

// GateConfig carries the risk limits the execution gate enforces. The
// per-symbol cap is expected to be resolved by config loading; the gate
// itself never falls back to the aggregate cap.
type GateConfig struct {
	MinConfidence      float64
	RiskPerTrade       float64
	MaxPositionSize    int
	StopLossPercent    float64
	MaxDailyTrades     int
	MaxTradesPerSymbol int
	AllowShortSelling  bool
	TradingStart       string // "HH:MM", IST
	TradingEnd         string
}

// Gate decides whether a candidate trade may be executed. It performs a
// short-circuiting sequence of hard vetoes and mutates nothing except
// the day rollover of the counter store.
type Gate struct {
	cfg      GateConfig
	counters *CounterStore
	funds    *FundsCache
	now      func() time.Time
}

func NewGate(cfg GateConfig, counters *CounterStore, funds *FundsCache) *Gate {
	return &Gate{cfg: cfg, counters: counters, funds: funds, now: istNow}
}

// ResolveQuantity determines the final order quantity for a
// recommendation. A positive upstream quantity is honoured; otherwise
// the risk budget sizes the order. BUY is clamped to the headroom under
// MaxPositionSize, SELL to the held quantity unless shorting is allowed.
func (g *Gate) ResolveQuantity(ctx context.Context, rec types.TradeRecommendation, price, netQty float64) int {
	qty := rec.Quantity
	if qty <= 0 {
		capital, ok := g.funds.Available(ctx)
		if !ok {
			return 0
		}
		qty = Quantity(price, capital, g.cfg.RiskPerTrade, rec.StopLoss, g.cfg.StopLossPercent)
	}

	switch rec.Action {
	case "BUY":
		if g.cfg.MaxPositionSize > 0 {
			allowable := g.cfg.MaxPositionSize - int(netQty)
			if allowable < 0 {
				allowable = 0
			}
			if qty > allowable {
				qty = allowable
			}
		}
	case "SELL":
		if netQty > 0 {
			if qty > int(netQty) {
				qty = int(netQty)
			}
		} else if !g.cfg.AllowShortSelling {
			qty = 0
		}
	}

	if qty < 0 {
		return 0
	}
	return qty
}

// ShouldExecute runs the veto chain in a fixed order: actionable action,
// confidence floor, trading hours, daily caps (after day rollover),
// positive quantity, and the short-selling rule.
func (g *Gate) ShouldExecute(ctx context.Context, rec types.TradeRecommendation, securityID string, qty int, netQty float64) bool {
	if !rec.Actionable() {
		return false
	}

	if rec.Confidence < g.cfg.MinConfidence {
		logger.Info(ctx, "Skipping trade due to low confidence",
			"security_id", securityID,
			"confidence", rec.Confidence,
			"min_confidence", g.cfg.MinConfidence,
		)
		return false
	}

	if !g.withinTradingHours() {
		logger.Info(ctx, "Skipping trade - outside configured trading hours",
			"security_id", securityID)
		return false
	}

	g.counters.Rollover()
	if g.cfg.MaxDailyTrades > 0 && g.counters.Total() >= g.cfg.MaxDailyTrades {
		logger.Risk(ctx, securityID, "DAILY_TRADE_LIMIT",
			"total_trades", g.counters.Total(),
			"max_daily_trades", g.cfg.MaxDailyTrades,
		)
		return false
	}
	if g.cfg.MaxTradesPerSymbol > 0 && g.counters.For(securityID) >= g.cfg.MaxTradesPerSymbol {
		logger.Risk(ctx, securityID, "SYMBOL_TRADE_LIMIT",
			"symbol_trades", g.counters.For(securityID),
			"max_trades_per_symbol", g.cfg.MaxTradesPerSymbol,
		)
		return false
	}

	if qty <= 0 {
		logger.Info(ctx, "Skipping trade - calculated quantity is zero",
			"security_id", securityID)
		return false
	}

	if rec.Action == "SELL" && netQty <= 0 && !g.cfg.AllowShortSelling {
		logger.Info(ctx, "Skipping SELL - no holdings and short selling disabled",
			"security_id", securityID, "net_qty", netQty)
		return false
	}

	return true
}

// withinTradingHours checks the IST wall clock against the configured
// window. An unset or unparseable window passes.
func (g *Gate) withinTradingHours() bool {
	start, okS := parseClock(g.cfg.TradingStart)
	end, okE := parseClock(g.cfg.TradingEnd)
	if !okS || !okE {
		return true
	}
	now := g.now()
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= start && minutes <= end
}

// parseClock parses "HH:MM" into minutes from midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
