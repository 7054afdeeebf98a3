// Package decision normalizes raw model output into a trade
// recommendation. Model responses arrive as free text that usually,
// but not always, wraps a JSON object in markdown fences.
package decision

import (
	"encoding/json"
	"errors"
	"strings"

	"dhan-ai-trader/internal/types"
)

var ErrInvalidPayload = errors.New("decision: no JSON object in payload")

type rawDecision struct {
	Action     string      `json:"action"`
	Confidence float64     `json:"confidence"`
	Quantity   json.Number `json:"quantity"`
	Reasoning  string      `json:"reasoning"`
	StopLoss   *float64    `json:"stop_loss"`
	TakeProfit *float64    `json:"take_profit"`
}

// Hold returns the safe default recommendation used whenever parsing
// or the upstream decision source fails.
func Hold() types.TradeRecommendation {
	return types.TradeRecommendation{
		Action:    "HOLD",
		Reasoning: "fallback: decision unavailable",
	}
}

// Parse extracts and normalizes a recommendation from raw model text.
// The action is uppercased and coerced to HOLD when unrecognized,
// confidence is clamped to [0,1] and quantity floored at zero.
func Parse(raw string) (types.TradeRecommendation, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return types.TradeRecommendation{}, ErrInvalidPayload
	}

	var rd rawDecision
	if err := json.Unmarshal([]byte(payload), &rd); err != nil {
		return types.TradeRecommendation{}, err
	}

	rec := types.TradeRecommendation{
		Reasoning:  strings.TrimSpace(rd.Reasoning),
		StopLoss:   rd.StopLoss,
		TakeProfit: rd.TakeProfit,
	}

	switch strings.ToUpper(strings.TrimSpace(rd.Action)) {
	case "BUY":
		rec.Action = "BUY"
	case "SELL":
		rec.Action = "SELL"
	default:
		rec.Action = "HOLD"
	}

	rec.Confidence = rd.Confidence
	if rec.Confidence < 0 {
		rec.Confidence = 0
	} else if rec.Confidence > 1 {
		rec.Confidence = 1
	}

	if rd.Quantity != "" {
		if f, err := rd.Quantity.Float64(); err == nil && f > 0 {
			rec.Quantity = int(f)
		}
	}

	return rec, nil
}

// extractJSON strips markdown code fences and returns the substring
// from the first "{" to the last "}", or "" when no object is present.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
