package strategy

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"dhan-ai-trader/internal/features"
	"dhan-ai-trader/internal/types"
)

func bullishFeatures() types.FeatureSet {
	return types.FeatureSet{
		features.ShortMA:           110,
		features.LongMA:            100,
		features.MomentumPct:       0.05,
		features.VolatilityPct:     0.15,
		features.IntradayReturnPct: 0.02,
		features.RangePosition:     0.8,
		features.RelativeVolume:    1.2,
	}
}

func quietFeatures() types.FeatureSet {
	return types.FeatureSet{
		features.ShortMA:           100,
		features.LongMA:            100,
		features.MomentumPct:       0,
		features.VolatilityPct:     0.01,
		features.IntradayReturnPct: 0,
		features.RangePosition:     0.5,
		features.RelativeVolume:    0.8,
	}
}

type stubHistory struct {
	candles []types.Candle
	err     error
	calls   int
}

func (s *stubHistory) DailyCandles(ctx context.Context, securityID string, from, to time.Time) ([]types.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func TestScoringIsDeterministic(t *testing.T) {
	s := NewScorer(nil, 21)
	fs := bullishFeatures()

	a := s.SelectBest(context.Background(), "RELIANCE", fs, 0)
	b := s.SelectBest(context.Background(), "RELIANCE", fs, 0)

	if a.Name != b.Name || a.Score != b.Score || a.Confidence != b.Confidence {
		t.Errorf("identical inputs produced different results: %+v vs %+v", a, b)
	}
}

func TestLongStockPenaltyWhenFlat(t *testing.T) {
	fs := bullishFeatures()
	var covered Definition
	for _, def := range Catalog() {
		if def.Name == "Covered Call" {
			covered = def
		}
	}
	if covered.Name == "" {
		t.Fatal("Covered Call missing from catalog")
	}

	flat := scoreDefinition(covered, fs, swingContext{}, 0)
	long := scoreDefinition(covered, fs, swingContext{}, 100)

	if !(flat.Score < long.Score) {
		t.Errorf("Covered Call should score strictly lower when flat: flat=%f long=%f", flat.Score, long.Score)
	}
	// Both the held-shares bonus and the penalty apply.
	if diff := long.Score - flat.Score; math.Abs(diff-(covered.LongStockPenalty+15)) > 1e-9 {
		t.Errorf("flat/long score difference = %f, want %f", diff, covered.LongStockPenalty+15)
	}
}

func TestRankOrderingAndGaps(t *testing.T) {
	s := NewScorer(nil, 21)
	recs := s.Rank(context.Background(), "TCS", bullishFeatures(), 0)

	if len(recs) != len(Catalog()) {
		t.Fatalf("rank returned %d entries, want %d", len(recs), len(Catalog()))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("rank not descending at %d: %f > %f", i, recs[i].Score, recs[i-1].Score)
		}
	}
	if gap := recs[0].Diagnostics["top_two_gap"]; gap != 0 {
		t.Errorf("top entry gap = %f, want 0", gap)
	}
	for i, r := range recs {
		want := recs[0].Score - r.Score
		if got := r.Diagnostics["top_two_gap"]; math.Abs(got-want) > 1e-9 {
			t.Errorf("entry %d gap = %f, want %f", i, got, want)
		}
	}
}

func TestSelectBestGapMatchesRunnerUp(t *testing.T) {
	s := NewScorer(nil, 21)
	fs := bullishFeatures()

	best := s.SelectBest(context.Background(), "INFY", fs, 0)
	recs := s.Rank(context.Background(), "INFY", fs, 0)

	if best.Name != recs[0].Name {
		t.Fatalf("SelectBest picked %s but Rank leads with %s", best.Name, recs[0].Name)
	}
	wantGap := recs[0].Score - recs[1].Score
	if got := best.Diagnostics["top_two_gap"]; math.Abs(got-wantGap) > 1e-9 {
		t.Errorf("top-two gap = %f, want %f", got, wantGap)
	}
}

func TestQuietMarketFavoursRangeStrategies(t *testing.T) {
	s := NewScorer(nil, 21)
	recs := s.Rank(context.Background(), "ITC", quietFeatures(), 0)

	top := recs[0]
	if top.Name != "Iron Condor" {
		t.Errorf("quiet market top strategy = %s, want Iron Condor", top.Name)
	}
}

func TestConfidenceMapping(t *testing.T) {
	cases := []struct {
		score, want float64
	}{
		{-10, 0},
		{0, 0},
		{100, 0.5},
		{195, 0.95},
		{200, 0.99},
		{500, 0.99},
	}
	for _, c := range cases {
		if got := scoreToConfidence(c.score); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("scoreToConfidence(%f) = %f, want %f", c.score, got, c.want)
		}
	}
}

func TestHistoricalFailureDegradesGracefully(t *testing.T) {
	hist := &stubHistory{err: errors.New("api down")}
	s := NewScorer(hist, 21)

	rec := s.SelectBest(context.Background(), "AXISBANK", bullishFeatures(), 0)
	if hist.calls != 1 {
		t.Errorf("historical source called %d times, want 1", hist.calls)
	}
	if rec.Name == "" {
		t.Error("selection should still produce a recommendation without swing context")
	}
	if rec.Diagnostics["swing_range_pct"] != 0 {
		t.Errorf("swing range with failed history = %f, want 0", rec.Diagnostics["swing_range_pct"])
	}
}

func TestSwingContextNeedsMinimumCloses(t *testing.T) {
	hist := &stubHistory{candles: []types.Candle{
		{Close: 100}, {Close: 101}, {Close: 102},
	}}
	s := NewScorer(hist, 21)
	sw := s.swingFor(context.Background(), "SBIN")
	if sw.ok {
		t.Error("swing context should be empty below the minimum close count")
	}

	hist.candles = []types.Candle{
		{Close: 100}, {Close: 104}, {Close: 98}, {Close: 102}, {Close: 105},
	}
	sw = s.swingFor(context.Background(), "SBIN")
	if !sw.ok {
		t.Fatal("swing context should be available with enough closes")
	}
	if sw.high != 105 || sw.low != 98 {
		t.Errorf("swing high/low = %f/%f, want 105/98", sw.high, sw.low)
	}
	wantRange := (105.0 - 98.0) / 98.0
	if math.Abs(sw.rangePct-wantRange) > 1e-9 {
		t.Errorf("swing range = %f, want %f", sw.rangePct, wantRange)
	}
	wantDir := (105.0 - 100.0) / 100.0
	if math.Abs(sw.recentDirection-wantDir) > 1e-9 {
		t.Errorf("recent direction = %f, want %f", sw.recentDirection, wantDir)
	}
}

func TestCatalogShape(t *testing.T) {
	defs := Catalog()
	if len(defs) != 10 {
		t.Fatalf("catalog has %d strategies, want 10", len(defs))
	}
	seen := map[string]bool{}
	for _, def := range defs {
		if def.Name == "" || def.RiskProfile == "" {
			t.Errorf("catalog entry missing name or risk profile: %+v", def)
		}
		if len(def.Legs) == 0 {
			t.Errorf("strategy %s has no legs", def.Name)
		}
		if seen[def.Name] {
			t.Errorf("duplicate strategy name %s", def.Name)
		}
		seen[def.Name] = true
	}
}
