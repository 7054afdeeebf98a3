package risk

import "math"

// minStopPct floors the resolved stop-loss fraction so the per-share
// risk can never divide by zero.
const minStopPct = 0.0001

// ResolveStopPct interprets a stop-loss value against the current
// price. Values at or below 1 are fractional percentages of the price;
// values above 1 are absolute price levels. A nil or unusable value
// falls back to defaultPct. The result is always >= minStopPct.
func ResolveStopPct(price float64, stopLoss *float64, defaultPct float64) float64 {
	pct := 0.0
	if stopLoss != nil && isFinite(*stopLoss) && *stopLoss > 0 {
		if *stopLoss <= 1 {
			pct = *stopLoss
		} else if price > 0 {
			pct = math.Abs(price-*stopLoss) / price
		}
	}
	if pct <= 0 {
		pct = defaultPct
	}
	return math.Max(pct, minStopPct)
}

// Quantity converts a risk budget into an integer order quantity:
// floor((capital * riskPerTrade) / (price * stopPct)). It is total:
// any malformed or non-positive input yields 0 rather than an error.
func Quantity(price, capital, riskPerTrade float64, stopLoss *float64, defaultStopPct float64) int {
	if !isFinite(price) || !isFinite(capital) || !isFinite(riskPerTrade) {
		return 0
	}
	if price <= 0 || capital <= 0 || riskPerTrade <= 0 {
		return 0
	}

	stopPct := ResolveStopPct(price, stopLoss, defaultStopPct)
	maxLoss := capital * riskPerTrade
	perShareRisk := price * stopPct
	if perShareRisk <= 0 {
		return 0
	}
	qty := int(maxLoss / perShareRisk)
	if qty < 0 {
		return 0
	}
	return qty
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
