package conversation

import (
	"time"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// AbandonAfter is the inactivity window before a conversation counts as
// abandoned. Applied by the periodic sweep, never inside Next.
const AbandonAfter = 24 * time.Hour

// New creates the initial conversation record for a buyer's first message.
func New(buyerID string, now time.Time) *core.Conversation {
	return &core.Conversation{
		BuyerID:      buyerID,
		State:        core.StateInitial,
		LastActivity: now,
	}
}

// Next maps (current state, intent) to the next state.
//
// Fraud intent never forces a state change: risk and state stay orthogonal so
// the gate can block a send without corrupting the conversation lifecycle.
// Recovered behaves as Negotiating for further transitions. Abandoned is
// handled by Apply (any inbound message recovers it before Next runs).
func Next(state core.State, in core.Intent) core.State {
	if in == core.IntentFraud {
		return state
	}
	effective := state
	if effective == core.StateRecovered {
		effective = core.StateNegotiating
	}

	switch effective {
	case core.StateInitial:
		switch in {
		case core.IntentDirectPurchase:
			return core.StateCommitted
		case core.IntentNegotiation:
			return core.StateNegotiating
		default:
			return core.StateInitial
		}
	case core.StateNegotiating:
		if in == core.IntentDirectPurchase {
			return core.StateCommitted
		}
		return core.StateNegotiating
	case core.StateCommitted:
		if in == core.IntentLocation {
			return core.StateCoordinating
		}
		return core.StateCommitted
	case core.StateCoordinating:
		return core.StateCoordinating
	case core.StateAbandoned:
		return core.StateAbandoned
	}
	return state
}

// Apply folds one inbound message into the conversation: message count, state
// transition, monotonic fraud score, attention flag and activity timestamp.
//
// A message arriving on an Abandoned conversation recovers it; the message's
// own intent transitions from Recovered on the next message.
func Apply(conv *core.Conversation, in core.Intent, score int, highRisk bool, now time.Time) {
	conv.MessageCount++
	if conv.State == core.StateAbandoned {
		conv.State = core.StateRecovered
	} else {
		conv.State = Next(conv.State, in)
	}
	// Fraud accumulation is monotonic non-decreasing within a conversation.
	if score > conv.FraudScore {
		conv.FraudScore = score
	}
	if highRisk || in == core.IntentFraud {
		conv.RequiresAttention = true
	}
	conv.LastActivity = now
}

// MarkAbandoned flags an inactive conversation. No-op for conversations that
// are already abandoned.
func MarkAbandoned(conv *core.Conversation) bool {
	if conv.State == core.StateAbandoned {
		return false
	}
	conv.State = core.StateAbandoned
	return true
}

// ResetFraudScore is the explicit reset allowed by the monotonicity rule,
// for operator use after a false positive is reviewed.
func ResetFraudScore(conv *core.Conversation) {
	conv.FraudScore = 0
	conv.RequiresAttention = false
}
