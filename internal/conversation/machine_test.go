package conversation

import (
	"testing"
	"time"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state core.State
		in    core.Intent
		want  core.State
	}{
		{"initial greeting stays", core.StateInitial, core.IntentGreeting, core.StateInitial},
		{"initial availability stays", core.StateInitial, core.IntentAvailability, core.StateInitial},
		{"initial price stays", core.StateInitial, core.IntentPrice, core.StateInitial},
		{"initial condition stays", core.StateInitial, core.IntentProductCondition, core.StateInitial},
		{"initial shipping stays", core.StateInitial, core.IntentShipping, core.StateInitial},
		{"initial payment stays", core.StateInitial, core.IntentPayment, core.StateInitial},
		{"initial information stays", core.StateInitial, core.IntentInformation, core.StateInitial},
		{"initial unknown stays", core.StateInitial, core.IntentUnknown, core.StateInitial},
		{"initial negotiation progresses", core.StateInitial, core.IntentNegotiation, core.StateNegotiating},
		{"negotiating negotiation stays", core.StateNegotiating, core.IntentNegotiation, core.StateNegotiating},
		{"initial purchase commits", core.StateInitial, core.IntentDirectPurchase, core.StateCommitted},
		{"negotiating purchase commits", core.StateNegotiating, core.IntentDirectPurchase, core.StateCommitted},
		{"committed location coordinates", core.StateCommitted, core.IntentLocation, core.StateCoordinating},
		{"committed price stays", core.StateCommitted, core.IntentPrice, core.StateCommitted},
		{"committed purchase stays", core.StateCommitted, core.IntentDirectPurchase, core.StateCommitted},
		{"coordinating stays", core.StateCoordinating, core.IntentLocation, core.StateCoordinating},
		{"recovered negotiates like negotiating", core.StateRecovered, core.IntentGreeting, core.StateNegotiating},
		{"recovered purchase commits", core.StateRecovered, core.IntentDirectPurchase, core.StateCommitted},
		{"fraud never moves initial", core.StateInitial, core.IntentFraud, core.StateInitial},
		{"fraud never moves negotiating", core.StateNegotiating, core.IntentFraud, core.StateNegotiating},
		{"fraud never moves recovered", core.StateRecovered, core.IntentFraud, core.StateRecovered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.state, tt.in); got != tt.want {
				t.Errorf("Next(%v, %v) = %v, want %v", tt.state, tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyRecoversAbandoned(t *testing.T) {
	now := time.Now()
	conv := New("buyer-1", now)
	conv.State = core.StateAbandoned

	Apply(conv, core.IntentDirectPurchase, 0, false, now)
	if conv.State != core.StateRecovered {
		t.Errorf("expected recovered, got %v", conv.State)
	}

	// The next message transitions from Recovered as if Negotiating.
	Apply(conv, core.IntentDirectPurchase, 0, false, now)
	if conv.State != core.StateCommitted {
		t.Errorf("expected committed, got %v", conv.State)
	}
}

func TestApplyFraudScoreMonotonic(t *testing.T) {
	now := time.Now()
	conv := New("buyer-1", now)

	Apply(conv, core.IntentGreeting, 45, false, now)
	if conv.FraudScore != 45 {
		t.Fatalf("expected 45, got %d", conv.FraudScore)
	}

	// A lower subsequent score never decreases the accumulated signal.
	Apply(conv, core.IntentGreeting, 10, false, now)
	if conv.FraudScore != 45 {
		t.Errorf("expected 45 after lower score, got %d", conv.FraudScore)
	}

	Apply(conv, core.IntentGreeting, 80, true, now)
	if conv.FraudScore != 80 {
		t.Errorf("expected 80, got %d", conv.FraudScore)
	}
}

func TestApplyAttentionFlag(t *testing.T) {
	now := time.Now()
	conv := New("buyer-1", now)

	Apply(conv, core.IntentGreeting, 0, false, now)
	if conv.RequiresAttention {
		t.Error("clean message must not flag attention")
	}

	Apply(conv, core.IntentFraud, 40, false, now)
	if !conv.RequiresAttention {
		t.Error("fraud intent must flag attention")
	}

	// The flag is sticky: later clean messages do not clear it.
	Apply(conv, core.IntentGreeting, 0, false, now)
	if !conv.RequiresAttention {
		t.Error("attention flag must not auto-clear")
	}
}

func TestApplyCountsMessages(t *testing.T) {
	now := time.Now()
	conv := New("buyer-1", now)
	for i := 0; i < 3; i++ {
		Apply(conv, core.IntentGreeting, 0, false, now.Add(time.Duration(i)*time.Minute))
	}
	if conv.MessageCount != 3 {
		t.Errorf("expected 3 messages, got %d", conv.MessageCount)
	}
	if !conv.LastActivity.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("last activity not updated: %v", conv.LastActivity)
	}
}

func TestMarkAbandoned(t *testing.T) {
	conv := New("buyer-1", time.Now())
	if !MarkAbandoned(conv) {
		t.Error("expected first mark to change state")
	}
	if conv.State != core.StateAbandoned {
		t.Errorf("expected abandoned, got %v", conv.State)
	}
	if MarkAbandoned(conv) {
		t.Error("second mark must be a no-op")
	}
}

func TestResetFraudScore(t *testing.T) {
	conv := New("buyer-1", time.Now())
	Apply(conv, core.IntentFraud, 90, true, time.Now())

	ResetFraudScore(conv)
	if conv.FraudScore != 0 || conv.RequiresAttention {
		t.Errorf("expected reset, got score=%d attention=%v", conv.FraudScore, conv.RequiresAttention)
	}
}
