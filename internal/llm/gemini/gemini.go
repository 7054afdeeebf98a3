// Package gemini implements a DecisionSource backed by Google AI
// Studio's Gemini generateContent endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"dhan-ai-trader/internal/store"
	"dhan-ai-trader/internal/trace"
	"dhan-ai-trader/internal/types"
)

// Decider calls Gemini with the current market state and returns the
// raw model text. Payload normalization is left to the caller.
type Decider struct {
	cfg    *store.Config
	client *resty.Client
}

func NewDecider(cfg *store.Config) *Decider {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Decider{cfg: cfg, client: client}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the analysis prompt and returns the model's raw text.
func (d *Decider) Analyze(ctx context.Context, securityID string, snap types.MarketSnapshot, features types.FeatureSet, position types.Position) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	apiKey := os.Getenv("DHAN_AI_STUDIO_KEY")
	if apiKey == "" {
		return "", errors.New("DHAN_AI_STUDIO_KEY missing")
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: d.buildPrompt(securityID, snap, features, position)}}}},
		GenerationConfig: generationConfig{
			Temperature:     d.cfg.LLM.Temperature,
			TopK:            d.cfg.LLM.TopK,
			TopP:            d.cfg.LLM.TopP,
			MaxOutputTokens: d.cfg.LLM.MaxTokens,
		},
	}

	url := fmt.Sprintf("%s/%s:generateContent",
		strings.TrimRight(d.cfg.LLM.BaseURL, "/"), d.cfg.LLM.Model)

	var out generateResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(body).
		SetResult(&out).
		Post(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini api error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (d *Decider) buildPrompt(securityID string, snap types.MarketSnapshot, features types.FeatureSet, position types.Position) string {
	var b strings.Builder
	b.WriteString("You are an expert intraday equities analyst for the Indian stock market (NSE).\n")
	b.WriteString("Analyze the following market state and respond with STRICT JSON only.\n\n")

	fmt.Fprintf(&b, "Security: %s (%s)\n", snap.Symbol, securityID)
	fmt.Fprintf(&b, "Last price: %.2f  Open: %.2f  High: %.2f  Low: %.2f  Volume: %.0f\n",
		snap.LastPrice, snap.Open, snap.High, snap.Low, snap.Volume)

	if len(features) > 0 {
		b.WriteString("\nComputed features:\n")
		keys := make([]string, 0, len(features))
		for k := range features {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %.4f\n", k, features[k])
		}
	} else {
		b.WriteString("\nNo computed features yet (insufficient history).\n")
	}

	fmt.Fprintf(&b, "\nCurrent position: net_qty=%.0f avg_price=%.2f\n",
		position.NetQty, position.AvgPrice)
	fmt.Fprintf(&b, "Risk limits: risk_per_trade=%.3f stop_loss_pct=%.3f take_profit_pct=%.3f\n",
		d.cfg.Risk.RiskPerTrade, d.cfg.Risk.StopLossPercent, d.cfg.Risk.TakeProfitPercent)

	b.WriteString(`
Respond ONLY with a JSON object of this exact shape:
{"action":"BUY|SELL|HOLD","confidence":0.0,"quantity":0,"reasoning":"...","stop_loss":null,"take_profit":null}
Rules:
- confidence is between 0 and 1.
- quantity 0 means "let the risk engine size the order".
- stop_loss may be a fraction of price (e.g. 0.05) or an absolute price.
- Default to HOLD when the signal is unclear.`)

	return b.String()
}
