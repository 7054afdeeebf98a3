package strategy

import (
	"context"
	"math"
	"sort"
	"time"

	"dhan-ai-trader/internal/features"
	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
	"dhan-ai-trader/internal/types"
)

// DefaultLookbackDays is the historical window for swing metrics.
const DefaultLookbackDays = 21

const (
	confidenceCeiling = 200.0
	confidenceCap     = 0.95
	minSwingCloses    = 5
)

// Recommendation is the outcome of evaluating one catalog entry. All
// fields are freshly constructed per call; nothing is cached.
type Recommendation struct {
	Name         string             `json:"name"`
	Score        float64            `json:"score"`
	Confidence   float64            `json:"confidence"`
	Rationale    string             `json:"rationale"`
	RiskProfile  string             `json:"risk_profile"`
	ExpectedMove string             `json:"expected_move"`
	Legs         []Leg              `json:"legs"`
	Diagnostics  map[string]float64 `json:"diagnostics"`
}

// Scorer ranks the strategy catalog against a feature set, optional
// historical swing context and the current net position. The historical
// source may be nil; evaluation never fails because of missing history.
type Scorer struct {
	hist         interfaces.HistoricalDataSource
	lookbackDays int
	now          func() time.Time
}

func NewScorer(hist interfaces.HistoricalDataSource, lookbackDays int) *Scorer {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Scorer{hist: hist, lookbackDays: lookbackDays, now: time.Now}
}

// swingContext holds swing metrics over the historical lookback window.
// The zero value stands for "no historical context".
type swingContext struct {
	high            float64
	low             float64
	rangePct        float64
	recentDirection float64
	ok              bool
}

func (s *Scorer) swingFor(ctx context.Context, securityID string) swingContext {
	if s.hist == nil {
		return swingContext{}
	}
	to := s.now()
	from := to.AddDate(0, 0, -s.lookbackDays)
	candles, err := s.hist.DailyCandles(ctx, securityID, from, to)
	if err != nil {
		logger.Debug(ctx, "Historical data fetch failed, scoring without swing context",
			"security_id", securityID, "error", err)
		return swingContext{}
	}

	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		if c.Close > 0 {
			closes = append(closes, c.Close)
		}
	}
	if len(closes) < minSwingCloses {
		return swingContext{}
	}

	high, low := closes[0], closes[0]
	for _, c := range closes {
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	sw := swingContext{high: high, low: low, ok: true}
	if low != 0 {
		sw.rangePct = (high - low) / low
	}
	if closes[0] != 0 {
		sw.recentDirection = (closes[len(closes)-1] - closes[0]) / closes[0]
	}
	return sw
}

// SelectBest evaluates the whole catalog and returns the top
// recommendation, annotated with the gap to the second-best score.
// Stable catalog order breaks ties.
func (s *Scorer) SelectBest(ctx context.Context, securityID string, fs types.FeatureSet, netQty float64) Recommendation {
	sw := s.swingFor(ctx, securityID)

	var best *Recommendation
	scores := make([]float64, 0, len(catalog))
	for _, def := range catalog {
		rec := scoreDefinition(def, fs, sw, netQty)
		scores = append(scores, rec.Score)
		if best == nil || rec.Score > best.Score {
			r := rec
			best = &r
		}
	}

	if best == nil {
		return noStrategy()
	}
	best.Diagnostics["top_two_gap"] = topGap(scores, best.Score)
	return *best
}

// Rank evaluates the full catalog and returns it sorted by score
// descending. Every entry carries its gap to the top score.
func (s *Scorer) Rank(ctx context.Context, securityID string, fs types.FeatureSet, netQty float64) []Recommendation {
	sw := s.swingFor(ctx, securityID)

	recs := make([]Recommendation, 0, len(catalog))
	for _, def := range catalog {
		recs = append(recs, scoreDefinition(def, fs, sw, netQty))
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > 0 {
		top := recs[0].Score
		for i := range recs {
			recs[i].Diagnostics["top_two_gap"] = top - recs[i].Score
		}
	}
	return recs
}

func noStrategy() Recommendation {
	return Recommendation{
		Name:        "No Strategy",
		Score:       0,
		Confidence:  0,
		Rationale:   "Insufficient data to evaluate strategies.",
		RiskProfile: "N/A",
		Diagnostics: map[string]float64{},
	}
}

func scoreDefinition(def Definition, fs types.FeatureSet, sw swingContext, netQty float64) Recommendation {
	trend := trendStrength(fs)
	momentum := fs.GetOr(features.MomentumPct, 0)
	volatility := fs.GetOr(features.VolatilityPct, 0)
	intraday := fs.GetOr(features.IntradayReturnPct, 0)
	rangePos := fs.GetOr(features.RangePosition, 0.5)
	relVol := fs.GetOr(features.RelativeVolume, 1.0)
	swingRange := sw.rangePct

	score := 0.0
	var bits []string

	// Generic terms applied regardless of bias.
	if math.Abs(trend) > 0.02 {
		score += 10 * math.Abs(trend)
	}
	score += 5 * relVol
	score += 5 * math.Min(math.Max(swingRange, 0), 0.2)

	var raw float64
	switch def.Bias {
	case BiasBullish:
		raw = (trend + momentum + intraday) * 100
		score += raw
		if raw > 0 {
			bits = append(bits, "Bullish momentum and trend detected")
		}
		if netQty > 0 {
			score += 15
			bits = append(bits, "Existing long position enables income overlay")
		}
	case BiasBullishRiskOff:
		raw = (trend+sw.recentDirection)*80 - volatility*20
		score += raw
		if raw > 0 {
			bits = append(bits, "Uptrend with desire for downside protection")
		}
	case BiasBearish:
		raw = (-(trend + momentum) - intraday) * 90
		score += raw
		if raw > 0 {
			bits = append(bits, "Bearish momentum warrants downside exposure")
		}
	case BiasBearishIncome:
		raw = -(trend + momentum) + volatility*30
		score += raw
		if raw > 0 {
			bits = append(bits, "Bearish lean with elevated volatility for premium")
		}
	case BiasBullishIncome:
		raw = (trend+momentum)*70 + math.Max(0, 0.05-math.Abs(intraday))*50
		score += raw
		if raw > 0 {
			bits = append(bits, "Bullish bias with controlled volatility")
		}
	case BiasRangeBound:
		raw = math.Max(0, 0.06-math.Abs(trend))*80 + math.Max(0, 0.06-math.Abs(momentum))*60
		raw += math.Max(0, 0.05-swingRange) * 40
		raw -= volatility * 15
		score += raw
		if raw > 0 {
			bits = append(bits, "Range-bound conditions favour short premium structures")
		}
	case BiasRangeBoundTight:
		raw = math.Max(0, 0.04-math.Abs(trend))*90 + math.Max(0, 0.04-math.Abs(momentum))*70
		raw -= volatility * 20
		score += raw
		if raw > 0 {
			bits = append(bits, "Very tight range suggests short ATM premium")
		}
	case BiasVolatilityExpansion:
		raw = volatility*120 + relVol*10
		if swingRange > 0.08 {
			raw += swingRange * 40
		}
		score += raw
		if raw > 0 {
			bits = append(bits, "Elevated volatility regime supports long gamma strategies")
		}
	}

	// Structures layered on held shares lose their edge when flat.
	if def.LongStockPenalty > 0 && netQty <= 0 {
		score -= def.LongStockPenalty
		bits = append(bits, "Requires existing long equity exposure")
	}

	rationale := "Strategy aligns with quantitative signals."
	if len(bits) > 0 {
		rationale = joinBits(bits)
	}

	return Recommendation{
		Name:         def.Name,
		Score:        score,
		Confidence:   scoreToConfidence(score),
		Rationale:    rationale,
		RiskProfile:  def.RiskProfile,
		ExpectedMove: expectedMove(def.Bias, volatility),
		Legs:         def.Legs,
		Diagnostics: map[string]float64{
			"trend_strength":      trend,
			"momentum_pct":        momentum,
			"volatility_pct":      volatility,
			"intraday_return_pct": intraday,
			"range_position":      rangePos,
			"relative_volume":     relVol,
			"swing_range_pct":     swingRange,
		},
	}
}

// trendStrength compares the short and long moving averages. Either
// average missing means no trend signal.
func trendStrength(fs types.FeatureSet) float64 {
	short, okS := fs.Get(features.ShortMA)
	long, okL := fs.Get(features.LongMA)
	if !okS || !okL || long == 0 {
		return 0
	}
	return (short - long) / long
}

// scoreToConfidence maps a raw score onto [0, 0.99]: non-positive scores
// carry no conviction, the ceiling saturates just below certainty, and
// the default path is capped at 0.95.
func scoreToConfidence(score float64) float64 {
	if score <= 0 {
		return 0
	}
	if score >= confidenceCeiling {
		return 0.99
	}
	return math.Min(score/confidenceCeiling, confidenceCap)
}

func expectedMove(bias Bias, volatility float64) string {
	switch bias {
	case BiasBullish, BiasBullishIncome, BiasBullishRiskOff:
		return "Upside continuation expected"
	case BiasBearish, BiasBearishIncome:
		return "Downside continuation expected"
	case BiasRangeBound, BiasRangeBoundTight:
		return "Price expected to stay within a range"
	case BiasVolatilityExpansion:
		if volatility > 0.4 {
			return "Major volatility spike anticipated"
		}
		return "Volatility expansion expected"
	}
	return "Neutral outlook"
}

func topGap(scores []float64, best float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	return best - sorted[1]
}

func joinBits(bits []string) string {
	out := bits[0]
	for _, b := range bits[1:] {
		out += "; " + b
	}
	return out
}
