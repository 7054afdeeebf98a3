package features

import (
	"math"

	"dhan-ai-trader/internal/types"
)

// DefaultLookbackTicks bounds the per-instrument history buffer.
const DefaultLookbackTicks = 120

// Feature names. A name missing from a FeatureSet means the feature
// could not be computed and carries no signal.
const (
	ShortMA           = "short_ma"
	LongMA            = "long_ma"
	MomentumPct       = "momentum_pct"
	VolatilityPct     = "volatility_pct"
	IntradayReturnPct = "intraday_return_pct"
	RangePosition     = "range_position"
	RelativeVolume    = "relative_volume"
	HistoryDepth      = "history_depth"
)

const (
	shortWindow    = 5
	longWindow     = 20
	volumeWindow   = 10
	minVolPoints   = 6
	tradingDaysPer = 252
)

// Extractor derives a FeatureSet per tick and owns the bounded
// per-instrument history buffers. Update is the only mutation in the
// engine core.
type Extractor struct {
	lookback int
	buffers  map[string]*historyBuffer
}

func NewExtractor(lookbackTicks int) *Extractor {
	if lookbackTicks <= 0 {
		lookbackTicks = DefaultLookbackTicks
	}
	return &Extractor{
		lookback: lookbackTicks,
		buffers:  make(map[string]*historyBuffer),
	}
}

func (e *Extractor) buffer(securityID string) *historyBuffer {
	buf, ok := e.buffers[securityID]
	if !ok {
		buf = newHistoryBuffer(e.lookback)
		e.buffers[securityID] = buf
	}
	return buf
}

// Update computes the feature set for the snapshot against the recorded
// history, then appends the snapshot to the instrument's buffer.
func (e *Extractor) Update(snap types.MarketSnapshot) types.FeatureSet {
	buf := e.buffer(snap.SecurityID)
	fs := Compute(snap, buf.snaps)
	buf.push(snap)
	return fs
}

// Depth returns how many snapshots are buffered for the instrument.
func (e *Extractor) Depth(securityID string) int {
	if buf, ok := e.buffers[securityID]; ok {
		return buf.len()
	}
	return 0
}

// History returns a copy of the buffered snapshots, oldest to newest.
func (e *Extractor) History(securityID string) []types.MarketSnapshot {
	if buf, ok := e.buffers[securityID]; ok {
		return buf.items()
	}
	return nil
}

// Compute derives a fresh FeatureSet from the current snapshot and the
// prior history (oldest to newest, excluding the snapshot itself). It is
// a pure function; features that cannot be computed from the inputs are
// simply absent from the result.
func Compute(snap types.MarketSnapshot, history []types.MarketSnapshot) types.FeatureSet {
	fs := types.FeatureSet{}

	closes := make([]float64, 0, len(history)+1)
	for _, h := range history {
		if h.LastPrice > 0 {
			closes = append(closes, h.LastPrice)
		}
	}
	if snap.LastPrice > 0 {
		closes = append(closes, snap.LastPrice)
	}

	if ma, ok := movingAverage(closes, shortWindow); ok {
		fs[ShortMA] = ma
	}
	if ma, ok := movingAverage(closes, longWindow); ok {
		fs[LongMA] = ma
	}

	if window := tail(closes, longWindow); len(window) >= 2 && window[0] != 0 {
		fs[MomentumPct] = (window[len(window)-1] - window[0]) / window[0]
	}

	if window := tail(closes, longWindow); len(window) >= minVolPoints {
		if vol, ok := annualizedVolatility(window); ok {
			fs[VolatilityPct] = vol
		}
	}

	if snap.Open != 0 {
		fs[IntradayReturnPct] = (snap.LastPrice - snap.Open) / snap.Open
	}

	if snap.High > 0 && snap.Low > 0 && snap.High != snap.Low {
		fs[RangePosition] = clamp((snap.LastPrice-snap.Low)/(snap.High-snap.Low), 0, 1)
	} else {
		fs[RangePosition] = 0.5
	}

	fs[RelativeVolume] = relativeVolume(snap.Volume, history)
	fs[HistoryDepth] = float64(len(history))

	return fs
}

// movingAverage returns the arithmetic mean of the last n values. Below
// the window size there is no signal, so the second return is false.
func movingAverage(series []float64, n int) (float64, bool) {
	if n <= 0 || len(series) < n {
		return 0, false
	}
	sum := 0.0
	for _, v := range series[len(series)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// annualizedVolatility is the population standard deviation of
// period-over-period returns scaled to a yearly horizon.
func annualizedVolatility(series []float64) (float64, bool) {
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if prev := series[i-1]; prev != 0 {
			returns = append(returns, (series[i]-prev)/prev)
		}
	}
	if len(returns) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * math.Sqrt(tradingDaysPer), true
}

func relativeVolume(current float64, history []types.MarketSnapshot) float64 {
	vols := make([]float64, 0, len(history))
	for _, h := range history {
		if h.Volume > 0 {
			vols = append(vols, h.Volume)
		}
	}
	if len(vols) == 0 || current <= 0 {
		return 1.0
	}
	window := tail(vols, volumeWindow)
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	avg := sum / float64(len(window))
	if avg == 0 {
		return 1.0
	}
	return current / avg
}

func tail(series []float64, n int) []float64 {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
