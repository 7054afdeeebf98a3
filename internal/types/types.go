package types

// MarketSnapshot is one tick of market state for a single instrument.
// Snapshots are read-only inputs; nothing in the engine mutates one after
// it has been produced.
type MarketSnapshot struct {
	SecurityID string  `json:"security_id"`
	Symbol     string  `json:"symbol,omitempty"`
	LastPrice  float64 `json:"last_price"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Volume     float64 `json:"volume"`
	Ts         int64   `json:"ts"`
}

// Candle is one daily OHLC bar from the historical data source.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// FeatureSet maps feature names to values. A missing key means the
// feature could not be computed from the available history and must be
// treated as "no signal", never as zero.
type FeatureSet map[string]float64

// Get returns the named feature and whether it is present.
func (fs FeatureSet) Get(name string) (float64, bool) {
	v, ok := fs[name]
	return v, ok
}

// GetOr returns the named feature, or def when it is absent.
func (fs FeatureSet) GetOr(name string, def float64) float64 {
	if v, ok := fs[name]; ok {
		return v
	}
	return def
}

// TradeRecommendation is the canonical, normalized form of an upstream
// decision payload. Quantity 0 means "size from risk budget".
type TradeRecommendation struct {
	Action     string   `json:"action"`
	Confidence float64  `json:"confidence"`
	Quantity   int      `json:"quantity,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

// Actionable reports whether the recommendation asks for an order.
func (r TradeRecommendation) Actionable() bool {
	return r.Action == "BUY" || r.Action == "SELL"
}

// Position is the broker-reported net position for an instrument.
// NetQty is positive for long, zero or negative for flat/short.
type Position struct {
	SecurityID string  `json:"security_id"`
	NetQty     float64 `json:"net_qty"`
	AvgPrice   float64 `json:"avg_price"`
}

type OrderReq struct {
	SecurityID, Side string
	Qty              int
	Tag              string
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StepResult summarizes one engine tick for an instrument.
type StepResult struct {
	SecurityID     string              `json:"security_id"`
	Recommendation TradeRecommendation `json:"recommendation"`
	Strategy       string              `json:"strategy,omitempty"`
	Price          float64             `json:"price"`
	Time           int64               `json:"time"`
	Orders         []OrderResp         `json:"orders"`
	Reason         string              `json:"reason"`
}
