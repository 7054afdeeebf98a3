// Package zerodha implements the Broker against the Kite Connect API.
// In DRY_RUN mode every call is served by an in-memory simulator so
// the trading loop can run without credentials.
package zerodha

import (
	"context"
	"errors"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/types"
)

type Params struct {
	Mode        string
	APIKey      string
	AccessToken string
	Exchange    string
}

type Zerodha struct {
	p   Params
	kc  *kiteconnect.Client
	sim *simState
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) *Zerodha {
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}

	z := &Zerodha{p: p}
	if p.Mode == "DRY_RUN" {
		z.sim = newSimState()
	} else {
		z.kc = kiteconnect.New(p.APIKey)
		z.kc.SetAccessToken(p.AccessToken)
	}
	return z
}

func (z *Zerodha) Start(ctx context.Context, securityIDs []string) error {
	if z.sim != nil {
		z.sim.seed(securityIDs)
		return nil
	}
	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return errors.New("missing API key/access token for LIVE mode")
	}
	return nil
}

func (z *Zerodha) Stop(ctx context.Context) {}

func (z *Zerodha) Snapshot(ctx context.Context, securityID string) (types.MarketSnapshot, error) {
	if z.sim != nil {
		return z.sim.snapshot(securityID), nil
	}

	instrument := z.p.Exchange + ":" + securityID
	quotes, err := z.kc.GetQuote(instrument)
	if err != nil {
		return types.MarketSnapshot{}, fmt.Errorf("quote %s: %w", securityID, err)
	}
	q, ok := quotes[instrument]
	if !ok {
		return types.MarketSnapshot{}, fmt.Errorf("no quote returned for %s", instrument)
	}

	return types.MarketSnapshot{
		SecurityID: securityID,
		Symbol:     securityID,
		LastPrice:  q.LastPrice,
		Open:       q.OHLC.Open,
		High:       q.OHLC.High,
		Low:        q.OHLC.Low,
		Volume:     float64(q.Volume),
		Ts:         time.Now().Unix(),
	}, nil
}

func (z *Zerodha) DailyCandles(ctx context.Context, securityID string, from, to time.Time) ([]types.Candle, error) {
	if z.sim != nil {
		return z.sim.dailyCandles(securityID, from, to), nil
	}

	token, ok := instrumentToken(securityID)
	if !ok {
		return nil, fmt.Errorf("no instrument token for %s", securityID)
	}

	data, err := z.kc.GetHistoricalData(int(token), "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("historical %s: %w", securityID, err)
	}

	candles := make([]types.Candle, 0, len(data))
	for _, d := range data {
		candles = append(candles, types.Candle{
			Ts:    d.Date.Unix(),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}
	return candles, nil
}

func (z *Zerodha) AvailableFunds(ctx context.Context) (float64, error) {
	if z.sim != nil {
		return z.sim.funds(), nil
	}

	margins, err := z.kc.GetUserMargins()
	if err != nil {
		return 0, fmt.Errorf("margins: %w", err)
	}
	return margins.Equity.Available.LiveBalance, nil
}

func (z *Zerodha) NetPosition(ctx context.Context, securityID string) (types.Position, error) {
	if z.sim != nil {
		return z.sim.position(securityID), nil
	}

	positions, err := z.kc.GetPositions()
	if err != nil {
		return types.Position{}, fmt.Errorf("positions: %w", err)
	}
	for _, p := range positions.Net {
		if p.Tradingsymbol == securityID {
			return types.Position{
				SecurityID: securityID,
				NetQty:     float64(p.Quantity),
				AvgPrice:   p.AveragePrice,
			}, nil
		}
	}
	return types.Position{SecurityID: securityID}, nil
}

func (z *Zerodha) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if z.sim != nil {
		return z.sim.placeOrder(req)
	}

	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return types.OrderResp{}, errors.New("missing API key/access token")
	}

	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   req.SecurityID,
		Product:         kiteconnect.ProductMIS,
		OrderType:       kiteconnect.OrderTypeMarket,
		TransactionType: req.Side,
		Quantity:        req.Qty,
		Validity:        kiteconnect.ValidityDay,
		Tag:             req.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("place order %s %s x%d: %w", req.Side, req.SecurityID, req.Qty, err)
	}

	return types.OrderResp{
		OrderID: resp.OrderID,
		Status:  "PLACED",
		Message: "ok",
	}, nil
}
