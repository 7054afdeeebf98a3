package zerodha

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"dhan-ai-trader/internal/types"
)

const simStartingFunds = 100000.0

// simState backs DRY_RUN mode: a random-walk price per instrument,
// a fixed capital pool, and positions mutated by simulated fills.
type simState struct {
	mu        sync.Mutex
	prices    map[string]float64
	opens     map[string]float64
	highs     map[string]float64
	lows      map[string]float64
	positions map[string]types.Position
	rng       *rand.Rand
}

func newSimState() *simState {
	return &simState{
		prices:    make(map[string]float64),
		opens:     make(map[string]float64),
		highs:     make(map[string]float64),
		lows:      make(map[string]float64),
		positions: make(map[string]types.Position),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *simState) seed(securityIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range securityIDs {
		if _, ok := s.prices[id]; ok {
			continue
		}
		base := 500 + s.rng.Float64()*2500
		s.prices[id] = base
		s.opens[id] = base
		s.highs[id] = base
		s.lows[id] = base
	}
}

func (s *simState) snapshot(securityID string) types.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[securityID]
	if !ok {
		price = 500 + s.rng.Float64()*2500
		s.opens[securityID] = price
		s.highs[securityID] = price
		s.lows[securityID] = price
	}

	// Random walk with a slight mean reversion toward the open.
	drift := (s.opens[securityID] - price) * 0.001
	price += drift + (s.rng.Float64()-0.5)*price*0.004
	if price < 1 {
		price = 1
	}
	s.prices[securityID] = price
	if price > s.highs[securityID] {
		s.highs[securityID] = price
	}
	if price < s.lows[securityID] {
		s.lows[securityID] = price
	}

	return types.MarketSnapshot{
		SecurityID: securityID,
		Symbol:     securityID,
		LastPrice:  price,
		Open:       s.opens[securityID],
		High:       s.highs[securityID],
		Low:        s.lows[securityID],
		Volume:     float64(50000 + s.rng.Intn(150000)),
		Ts:         time.Now().Unix(),
	}
}

func (s *simState) dailyCandles(securityID string, from, to time.Time) []types.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.prices[securityID]
	if !ok {
		base = 1000
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	candles := make([]types.Candle, 0, days)
	price := base * (0.9 + s.rng.Float64()*0.1)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		open := price
		price += (s.rng.Float64() - 0.5) * price * 0.02
		high := open
		if price > high {
			high = price
		}
		high *= 1 + s.rng.Float64()*0.005
		low := open
		if price < low {
			low = price
		}
		low *= 1 - s.rng.Float64()*0.005
		candles = append(candles, types.Candle{
			Ts:    day.Unix(),
			Open:  open,
			High:  high,
			Low:   low,
			Close: price,
			Vol:   float64(100000 + s.rng.Intn(400000)),
		})
	}
	return candles
}

func (s *simState) funds() float64 {
	return simStartingFunds
}

func (s *simState) position(securityID string) types.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.positions[securityID]; ok {
		return p
	}
	return types.Position{SecurityID: securityID}
}

func (s *simState) placeOrder(req types.OrderReq) (types.OrderResp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.prices[req.SecurityID]
	pos := s.positions[req.SecurityID]
	pos.SecurityID = req.SecurityID

	qty := float64(req.Qty)
	switch req.Side {
	case "BUY":
		total := pos.NetQty + qty
		if total != 0 {
			pos.AvgPrice = (pos.AvgPrice*pos.NetQty + price*qty) / total
		}
		pos.NetQty = total
	case "SELL":
		pos.NetQty -= qty
		if pos.NetQty == 0 {
			pos.AvgPrice = 0
		}
	default:
		return types.OrderResp{}, fmt.Errorf("unknown side %q", req.Side)
	}
	s.positions[req.SecurityID] = pos

	return types.OrderResp{
		OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
		Status:  "SIMULATED",
		Message: "dry-run",
	}, nil
}
