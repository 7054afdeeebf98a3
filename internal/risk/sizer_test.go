package risk

import (
	"math"
	"testing"
)

func TestQuantityWithDefaultStop(t *testing.T) {
	// 100000 * 0.02 = 2000 risk budget; 1600 * 0.05 = 80 per share.
	qty := Quantity(1600, 100000, 0.02, nil, 0.05)
	if qty != 25 {
		t.Errorf("qty = %d, want 25", qty)
	}
}

func TestQuantityWithAbsoluteStop(t *testing.T) {
	// |1600-1500|/1600 = 0.0625; 1600 * 0.0625 = 100 per share.
	stop := 1500.0
	qty := Quantity(1600, 100000, 0.02, &stop, 0.05)
	if qty != 20 {
		t.Errorf("qty = %d, want 20", qty)
	}
}

func TestQuantityFractionalAndAbsoluteEquivalence(t *testing.T) {
	frac := 0.0625
	abs := 1500.0
	a := Quantity(1600, 100000, 0.02, &frac, 0.05)
	b := Quantity(1600, 100000, 0.02, &abs, 0.05)
	if a != b {
		t.Errorf("fractional stop qty %d != absolute stop qty %d", a, b)
	}
}

func TestQuantityFloorsResult(t *testing.T) {
	// 2000 / 80.4 = 24.87..., must floor.
	qty := Quantity(1608, 100000, 0.02, nil, 0.05)
	if qty != 24 {
		t.Errorf("qty = %d, want 24", qty)
	}
}

func TestQuantityZeroOnBadInputs(t *testing.T) {
	cases := []struct {
		name                         string
		price, capital, riskPerTrade float64
	}{
		{"zero price", 0, 100000, 0.02},
		{"negative price", -1, 100000, 0.02},
		{"zero capital", 1600, 0, 0.02},
		{"zero risk", 1600, 100000, 0},
		{"nan price", math.NaN(), 100000, 0.02},
		{"inf capital", 1600, math.Inf(1), 0.02},
	}
	for _, c := range cases {
		if qty := Quantity(c.price, c.capital, c.riskPerTrade, nil, 0.05); qty != 0 {
			t.Errorf("%s: qty = %d, want 0", c.name, qty)
		}
	}
}

func TestQuantityMonotonicInCapital(t *testing.T) {
	small := Quantity(1600, 50000, 0.02, nil, 0.05)
	large := Quantity(1600, 200000, 0.02, nil, 0.05)
	if small > large {
		t.Errorf("more capital yields smaller quantity: %d > %d", small, large)
	}
}

func TestResolveStopPctFloor(t *testing.T) {
	// A stop effectively at zero still leaves a usable per-share risk.
	pct := ResolveStopPct(1600, nil, 0)
	if pct != minStopPct {
		t.Errorf("pct = %f, want floor %f", pct, minStopPct)
	}

	tiny := 0.00001
	pct = ResolveStopPct(1600, &tiny, 0)
	if pct != minStopPct {
		t.Errorf("tiny fractional stop = %f, want floor %f", pct, minStopPct)
	}
}

func TestResolveStopPctIgnoresUnusableSpec(t *testing.T) {
	bad := math.NaN()
	if pct := ResolveStopPct(1600, &bad, 0.05); pct != 0.05 {
		t.Errorf("NaN stop pct = %f, want default 0.05", pct)
	}
	neg := -2.0
	if pct := ResolveStopPct(1600, &neg, 0.05); pct != 0.05 {
		t.Errorf("negative stop pct = %f, want default 0.05", pct)
	}
}
