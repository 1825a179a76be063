package limiter

import (
	"fmt"
	"testing"
	"time"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestSixthSendWithinHourIsBlocked(t *testing.T) {
	rl := New(5, time.Hour, 0)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock

	for i := 0; i < 5; i++ {
		if !rl.AllowSend("buyer-1") {
			t.Fatalf("send %d should be allowed", i+1)
		}
		*now = now.Add(time.Minute)
	}

	if rl.AllowSend("buyer-1") {
		t.Error("6th send within the rolling hour must be blocked")
	}
}

func TestWindowRollRestoresBudget(t *testing.T) {
	rl := New(5, time.Hour, 0)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock

	for i := 0; i < 5; i++ {
		rl.AllowSend("buyer-1")
	}
	if rl.AllowSend("buyer-1") {
		t.Fatal("budget should be exhausted")
	}

	// Long idle: both windows empty again.
	*now = now.Add(3 * time.Hour)
	if !rl.AllowSend("buyer-1") {
		t.Error("expected budget restored after idle period")
	}
}

// Immediately after a window boundary the previous window still weighs on the
// sliding estimate, so the budget does not reset abruptly.
func TestSlidingWindowSmoothing(t *testing.T) {
	rl := New(5, time.Hour, 0)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock

	for i := 0; i < 5; i++ {
		rl.AllowSend("buyer-1")
	}

	// At the boundary the previous window still counts in full.
	*now = time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	if rl.AllowSend("buyer-1") {
		t.Error("expected block right at the window boundary")
	}

	// Halfway through the next window only half of it weighs in.
	*now = time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
	if !rl.AllowSend("buyer-1") {
		t.Error("expected allow once the previous window has decayed")
	}
}

func TestMinDelayBetweenSends(t *testing.T) {
	rl := New(100, time.Hour, 30*time.Second)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock

	if !rl.AllowSend("buyer-1") {
		t.Fatal("first send should be allowed")
	}
	*now = now.Add(5 * time.Second)
	if rl.AllowSend("buyer-1") {
		t.Error("send within min delay must be blocked")
	}
	*now = now.Add(30 * time.Second)
	if !rl.AllowSend("buyer-1") {
		t.Error("send after min delay should be allowed")
	}
}

func TestBuyersAreIndependent(t *testing.T) {
	rl := New(5, time.Hour, 0)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock
	_ = now

	for i := 0; i < 5; i++ {
		rl.AllowSend("buyer-1")
	}
	if rl.AllowSend("buyer-1") {
		t.Fatal("buyer-1 should be exhausted")
	}
	if !rl.AllowSend("buyer-2") {
		t.Error("buyer-2 has its own budget")
	}
}

func TestGlobalBudgetCapsAllBuyers(t *testing.T) {
	rl := New(5, time.Hour, 0)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock
	_ = now

	for i := 0; i < 5; i++ {
		if !rl.AllowSend(fmt.Sprintf("buyer-%d", i)) {
			t.Fatalf("send %d should be allowed", i+1)
		}
	}
	if rl.AllowSend("buyer-new") {
		t.Error("global budget must cap sends across buyers")
	}
}

// A buyer-level block must not consume global budget.
func TestBlockedSendDoesNotBurnGlobalBudget(t *testing.T) {
	rl := New(3, time.Hour, time.Minute)
	now, clock := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rl.now = clock

	if !rl.AllowSend("buyer-1") {
		t.Fatal("first send should be allowed")
	}
	// buyer-1 blocked by min delay; global counter must stay at 1.
	rl.AllowSend("buyer-1")
	rl.AllowSend("buyer-1")

	*now = now.Add(2 * time.Minute)
	if !rl.AllowSend("buyer-2") {
		t.Error("buyer-2 should fit the global budget")
	}
	// The global min delay also applies across buyers.
	*now = now.Add(2 * time.Minute)
	if !rl.AllowSend("buyer-3") {
		t.Error("buyer-3 should fit the global budget")
	}
}
