package limiter

import (
	"sync"
	"time"
)

// globalKey tracks the process-wide counters alongside the per-buyer ones.
const globalKey = "__global__"

type status struct {
	CurrCount       int       // sends in current window
	PrevCount       int       // sends in previous window
	CurrWindowStart time.Time // when the current window started
	LastSend        time.Time // for the min inter-message delay
}

// RateLimiter enforces a rolling per-window send count and a minimum
// inter-message delay, per buyer and globally. A blocked send is meant to be
// deferred by the caller, never dropped.
type RateLimiter struct {
	mu       sync.Mutex
	keys     map[string]*status
	limit    float64 // float for the sliding-window estimate
	window   time.Duration
	minDelay time.Duration

	now func() time.Time // test hook
}

func New(limit int, window, minDelay time.Duration) *RateLimiter {
	return NewWithClock(limit, window, minDelay, time.Now)
}

// NewWithClock injects the clock, for deterministic tests.
func NewWithClock(limit int, window, minDelay time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		keys:     make(map[string]*status),
		limit:    float64(limit),
		window:   window,
		minDelay: minDelay,
		now:      now,
	}
}

// AllowSend checks the buyer's counters and the global counters together and
// commits both only when the send is allowed, so a buyer-level block never
// burns global budget.
func (rl *RateLimiter) AllowSend(buyerID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	buyer := rl.roll(buyerID, now)
	global := rl.roll(globalKey, now)

	if !rl.underLimit(buyer, now) || !rl.underLimit(global, now) {
		return false
	}

	buyer.CurrCount++
	buyer.LastSend = now
	global.CurrCount++
	global.LastSend = now
	return true
}

// roll advances a key's counters into the current window slot.
func (rl *RateLimiter) roll(key string, now time.Time) *status {
	currWindowStart := now.Truncate(rl.window)

	st, exists := rl.keys[key]
	if !exists {
		st = &status{CurrWindowStart: currWindowStart}
		rl.keys[key] = st
		return st
	}

	if currWindowStart.After(st.CurrWindowStart) {
		elapsedWindows := currWindowStart.Sub(st.CurrWindowStart) / rl.window
		if elapsedWindows == 1 {
			// The old current window becomes the previous one.
			st.PrevCount = st.CurrCount
			st.CurrCount = 0
		} else {
			// Idle long enough that both windows are empty.
			st.PrevCount = 0
			st.CurrCount = 0
		}
		st.CurrWindowStart = currWindowStart
	}
	return st
}

// underLimit applies the sliding-window estimate plus the min-delay check.
// The previous window still weighs on the estimate in proportion to how
// little of the current window has elapsed.
func (rl *RateLimiter) underLimit(st *status, now time.Time) bool {
	if !st.LastSend.IsZero() && now.Sub(st.LastSend) < rl.minDelay {
		return false
	}
	timeIntoWindow := now.Sub(st.CurrWindowStart)
	prevWeight := float64(rl.window-timeIntoWindow) / float64(rl.window)
	estimatedRate := float64(st.PrevCount)*prevWeight + float64(st.CurrCount)
	return estimatedRate < rl.limit
}
