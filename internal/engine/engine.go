package engine

import (
	"context"
	"time"

	"dhan-ai-trader/internal/decision"
	"dhan-ai-trader/internal/features"
	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/risk"
	"dhan-ai-trader/internal/store"
	"dhan-ai-trader/internal/strategy"
	"dhan-ai-trader/internal/tradelog"
	"dhan-ai-trader/internal/types"
)

type Engine struct {
	cfg       *store.Config
	brk       interfaces.Broker
	decider   interfaces.DecisionSource
	extractor *features.Extractor
	scorer    *strategy.Scorer
	gate      *risk.Gate
	counters  *risk.CounterStore
	funds     *risk.FundsCache
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, brk interfaces.Broker, decider interfaces.DecisionSource) *Engine {
	counters := risk.NewCounterStore()
	funds := risk.NewFundsCache(brk, time.Duration(cfg.Risk.FundsCacheTTLSeconds)*time.Second)

	gate := risk.NewGate(risk.GateConfig{
		MinConfidence:      cfg.Risk.MinConfidence,
		RiskPerTrade:       cfg.Risk.RiskPerTrade,
		MaxPositionSize:    cfg.Risk.MaxPositionSize,
		StopLossPercent:    cfg.Risk.StopLossPercent,
		MaxDailyTrades:     cfg.Risk.MaxDailyTrades,
		MaxTradesPerSymbol: cfg.Risk.MaxTradesPerSymbol,
		AllowShortSelling:  cfg.Risk.AllowShortSelling,
		TradingStart:       cfg.Risk.TradingHours.Start,
		TradingEnd:         cfg.Risk.TradingHours.End,
	}, counters, funds)

	var scorer *strategy.Scorer
	if cfg.Strategy.Enabled {
		scorer = strategy.NewScorer(brk, cfg.Strategy.LookbackDays)
	}

	return &Engine{
		cfg:       cfg,
		brk:       brk,
		decider:   decider,
		extractor: features.NewExtractor(cfg.Features.LookbackTicks),
		scorer:    scorer,
		gate:      gate,
		counters:  counters,
		funds:     funds,
	}
}

// Step runs one full decision cycle for a single instrument: snapshot,
// feature extraction, strategy ranking, model decision, risk gating and
// optional order placement.
func (e *Engine) Step(ctx context.Context, securityID string) (*types.StepResult, error) {
	logger.Debug(ctx, "Starting trading step", "security_id", securityID)

	snap, err := e.brk.Snapshot(ctx, securityID)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch snapshot", err, "security_id", securityID)
		return nil, err
	}
	price := snap.LastPrice

	fs := e.extractor.Update(snap)
	logger.Debug(ctx, "Features extracted",
		"security_id", securityID,
		"feature_count", len(fs),
		"history_depth", e.extractor.Depth(securityID),
	)

	// Position lookup degrades to flat; a broker hiccup must not stall
	// the decision cycle.
	pos, err := e.brk.NetPosition(ctx, securityID)
	if err != nil {
		logger.Warn(ctx, "Position lookup failed, assuming flat", "security_id", securityID, "error", err.Error())
		pos = types.Position{SecurityID: securityID}
	}

	strategyName := e.evaluateStrategies(ctx, securityID, snap, fs, pos)

	rec := e.decide(ctx, securityID, snap, fs, pos)

	logger.Decision(ctx, securityID, rec.Action, rec.Confidence, rec.Reasoning, "price", price)
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		SecurityID: securityID,
		Action:     rec.Action,
		Confidence: rec.Confidence,
		Reason:     rec.Reasoning,
		Price:      price,
		Features:   fs,
	})

	qty := e.gate.ResolveQuantity(ctx, rec, price, pos.NetQty)
	logger.Debug(ctx, "Position sizing determined",
		"security_id", securityID, "action", rec.Action, "qty", qty)

	orders := []types.OrderResp{}
	reason := rec.Reasoning

	if e.gate.ShouldExecute(ctx, rec, securityID, qty, pos.NetQty) {
		resp, err := e.brk.PlaceOrder(ctx, types.OrderReq{
			SecurityID: securityID,
			Side:       rec.Action,
			Qty:        qty,
			Tag:        "AI",
		})
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to place order", err,
				"security_id", securityID, "side", rec.Action, "qty", qty, "price", price)
			reason += " | order_err:" + err.Error()
		} else {
			orders = append(orders, resp)
			e.counters.Record(securityID)
			logger.Trade(ctx, securityID, rec.Action, qty, price, resp.OrderID,
				"confidence", rec.Confidence)
			_ = tradelog.Append(tradelog.Entry{
				SecurityID: securityID,
				Side:       rec.Action,
				Qty:        qty,
				Price:      price,
				OrderID:    resp.OrderID,
				Reason:     rec.Reasoning,
				Confidence: rec.Confidence,
			})
		}
	}

	logger.Debug(ctx, "Trading step completed",
		"security_id", securityID, "action", rec.Action, "orders", len(orders))

	return &types.StepResult{
		SecurityID:     securityID,
		Recommendation: rec,
		Strategy:       strategyName,
		Price:          price,
		Time:           snap.Ts,
		Orders:         orders,
		Reason:         reason,
	}, nil
}

// evaluateStrategies ranks the option catalog for the tick and records
// the winner. Returns the winning strategy name or "" when disabled or
// nothing qualifies.
func (e *Engine) evaluateStrategies(ctx context.Context, securityID string, snap types.MarketSnapshot, fs types.FeatureSet, pos types.Position) string {
	if e.scorer == nil {
		return ""
	}

	best := e.scorer.SelectBest(ctx, securityID, fs, pos.NetQty)
	if best.Name == "" || best.Name == "No Strategy" {
		logger.Debug(ctx, "No option strategy qualified", "security_id", securityID)
		return ""
	}

	logger.Info(ctx, "Option strategy selected",
		"security_id", securityID,
		"strategy", best.Name,
		"score", best.Score,
		"confidence", best.Confidence,
		"expected_move", best.ExpectedMove,
	)
	_ = tradelog.AppendStrategy(tradelog.StrategyEntry{
		SecurityID:  securityID,
		Name:        best.Name,
		RiskProfile: best.RiskProfile,
		Score:       best.Score,
		Confidence:  best.Confidence,
		TopTwoGap:   best.Diagnostics["top_two_gap"],
		Rationale:   best.Rationale,
	})

	if e.cfg.Strategy.AutoDeploy {
		for _, leg := range best.Legs {
			logger.Info(ctx, "Strategy leg planned",
				"security_id", securityID,
				"strategy", best.Name,
				"action", leg.Action,
				"instrument", leg.Instrument,
				"moneyness", leg.Moneyness,
				"quantity", leg.Quantity,
			)
		}
	}

	return best.Name
}

// decide obtains the model recommendation, normalizing any failure to
// the safe HOLD default.
func (e *Engine) decide(ctx context.Context, securityID string, snap types.MarketSnapshot, fs types.FeatureSet, pos types.Position) types.TradeRecommendation {
	raw, err := e.decider.Analyze(ctx, securityID, snap, fs, pos)
	if err != nil {
		logger.ErrorWithErr(ctx, "Decision source failed, holding", err, "security_id", securityID)
		return decision.Hold()
	}

	rec, err := decision.Parse(raw)
	if err != nil {
		logger.Warn(ctx, "Unparseable decision payload, holding",
			"security_id", securityID, "error", err.Error())
		return decision.Hold()
	}
	return rec
}
