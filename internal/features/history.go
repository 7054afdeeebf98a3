package features

import "dhan-ai-trader/internal/types"

// historyBuffer is a fixed-capacity FIFO of snapshots for one instrument.
// The oldest entry is evicted once capacity is reached.
type historyBuffer struct {
	snaps   []types.MarketSnapshot
	maxSize int
}

func newHistoryBuffer(maxSize int) *historyBuffer {
	if maxSize <= 0 {
		maxSize = DefaultLookbackTicks
	}
	return &historyBuffer{
		snaps:   make([]types.MarketSnapshot, 0, maxSize),
		maxSize: maxSize,
	}
}

func (hb *historyBuffer) push(s types.MarketSnapshot) {
	hb.snaps = append(hb.snaps, s)
	if len(hb.snaps) > hb.maxSize {
		hb.snaps = hb.snaps[1:]
	}
}

func (hb *historyBuffer) len() int {
	return len(hb.snaps)
}

// items returns the buffered snapshots oldest to newest. The returned
// slice is a copy; callers may keep it across ticks.
func (hb *historyBuffer) items() []types.MarketSnapshot {
	out := make([]types.MarketSnapshot, len(hb.snaps))
	copy(out, hb.snaps)
	return out
}
