package risk

import (
	"context"
	"math"
	"time"

	"dhan-ai-trader/internal/interfaces"
	"dhan-ai-trader/internal/logger"
)

// MinFundsTTL floors the cache TTL so a misconfigured value cannot turn
// every tick into an external capital lookup.
const MinFundsTTL = 30 * time.Second

// FundsCache memoizes the external capital read with a TTL. A cached
// amount is never served past its TTL without revalidation.
type FundsCache struct {
	src       interfaces.CapitalSource
	ttl       time.Duration
	amount    float64
	fetchedAt time.Time
	valid     bool
	now       func() time.Time
}

func NewFundsCache(src interfaces.CapitalSource, ttl time.Duration) *FundsCache {
	if ttl < MinFundsTTL {
		ttl = MinFundsTTL
	}
	return &FundsCache{src: src, ttl: ttl, now: time.Now}
}

// Available returns the available trading capital. The second return is
// false when no usable value exists, which sizing treats as capital 0.
func (fc *FundsCache) Available(ctx context.Context) (float64, bool) {
	if fc.valid && fc.now().Sub(fc.fetchedAt) < fc.ttl {
		return fc.amount, true
	}

	if fc.src == nil {
		return 0, false
	}
	amount, err := fc.src.AvailableFunds(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Unable to fetch available funds", err)
		return 0, false
	}
	fc.amount = math.Max(0, amount)
	fc.fetchedAt = fc.now()
	fc.valid = true
	return fc.amount, true
}
