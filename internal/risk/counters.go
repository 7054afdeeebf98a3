package risk

import "time"

func istNow() time.Time {
	return time.Now().In(time.FixedZone("IST", 19800))
}

// CounterStore tracks per-instrument and aggregate trade counts for the
// current IST calendar day. Counts only move through Record; Rollover
// resets them at most once per day transition.
type CounterStore struct {
	counts map[string]int
	total  int
	day    string
	now    func() time.Time
}

func NewCounterStore() *CounterStore {
	cs := &CounterStore{counts: make(map[string]int), now: istNow}
	cs.day = cs.today()
	return cs
}

func (cs *CounterStore) today() string {
	return cs.now().Format("2006-01-02")
}

// Rollover resets all counters when the stored day differs from today.
// It reports whether a reset happened; calling it repeatedly within the
// same day is a no-op.
func (cs *CounterStore) Rollover() bool {
	today := cs.today()
	if today == cs.day {
		return false
	}
	cs.counts = make(map[string]int)
	cs.total = 0
	cs.day = today
	return true
}

// Record counts one confirmed execution against the instrument and the
// aggregate. Callers invoke it exactly once per successful order.
func (cs *CounterStore) Record(securityID string) {
	cs.counts[securityID]++
	cs.total++
}

func (cs *CounterStore) Total() int {
	return cs.total
}

func (cs *CounterStore) For(securityID string) int {
	return cs.counts[securityID]
}
