package core

import "time"

// --- Intent Taxonomy ---

// Intent is the classified purpose of an inbound buyer message.
type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentAvailability     Intent = "availability"
	IntentProductCondition Intent = "product_condition"
	IntentPrice            Intent = "price"
	IntentNegotiation      Intent = "negotiation"
	IntentShipping         Intent = "shipping"
	IntentPayment          Intent = "payment"
	IntentLocation         Intent = "location"
	IntentDirectPurchase   Intent = "direct_purchase"
	IntentInformation      Intent = "information"
	IntentFraud            Intent = "fraud"
	IntentUnknown          Intent = "unknown"
)

// --- Conversation Lifecycle ---

// State is the lifecycle stage of a buyer conversation.
type State string

const (
	StateInitial      State = "initial"
	StateNegotiating  State = "negotiating"
	StateCoordinating State = "coordinating"
	StateCommitted    State = "committed"
	StateAbandoned    State = "abandoned"
	StateRecovered    State = "recovered"
)

// RiskTier buckets a fraud-risk score for gating decisions.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// Regime is the operating mode of the engine.
type Regime string

const (
	RegimeAutonomous Regime = "autonomous"
	RegimeSupervised Regime = "supervised"
)

// --- Buyer & Product Models ---

// BuyerProfile is a read-only snapshot owned by the persistence layer.
type BuyerProfile struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Rating        int       `bson:"rating" json:"rating"`
	PurchaseCount int       `bson:"purchase_count" json:"purchase_count"`
	DistanceKm    float64   `bson:"distance_km" json:"distance_km"`
	LastActivity  time.Time `bson:"last_activity" json:"last_activity"`
	Verified      bool      `bson:"verified" json:"verified"`
	HasPhoto      bool      `bson:"has_photo" json:"has_photo"`
}

type ProductInfo struct {
	ID          string  `bson:"_id,omitempty" json:"id"`
	Title       string  `bson:"title" json:"title"`
	Price       float64 `bson:"price" json:"price"`
	FloorPrice  float64 `bson:"floor_price" json:"floor_price"`
	Description string  `bson:"description" json:"description"`
	Condition   string  `bson:"condition" json:"condition"`
	Category    string  `bson:"category" json:"category"`
	Shipping    bool    `bson:"shipping" json:"shipping"`
	Zone        string  `bson:"zone" json:"zone"`
}

// --- Conversation State ---

// Conversation tracks one buyer's interaction. Keyed by buyer id, created on
// the first inbound message and never deleted; abandonment is a state, not a
// removal.
type Conversation struct {
	BuyerID           string    `bson:"_id,omitempty" json:"buyer_id"`
	State             State     `bson:"state" json:"state"`
	MessageCount      int       `bson:"message_count" json:"message_count"`
	FraudScore        int       `bson:"fraud_score" json:"fraud_score"`
	LastActivity      time.Time `bson:"last_activity" json:"last_activity"`
	RequiresAttention bool      `bson:"requires_attention" json:"requires_attention"`
}

// ConversationSummary is the queryable view of a conversation.
type ConversationSummary struct {
	Exists            bool  `json:"exists"`
	State             State `json:"state,omitempty"`
	MessageCount      int   `json:"message_count"`
	RequiresAttention bool  `json:"requires_attention"`
	FraudScore        int   `json:"fraud_score"`
}

// --- Pending Actions ---

// ActionType identifies what a gated action would do if approved.
type ActionType string

const (
	ActionSendMessage  ActionType = "send_message"
	ActionAcceptOffer  ActionType = "accept_offer"
	ActionRejectOffer  ActionType = "reject_offer"
	ActionBlockUser    ActionType = "block_user"
	ActionShareContact ActionType = "share_contact"
)

// Outcome is the resolution of a gated decision.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomeExpired  Outcome = "expired"
	OutcomeDeferred Outcome = "deferred"
)

// ActionPayload carries everything a reviewer needs to decide.
type ActionPayload struct {
	Message           string         `bson:"message" json:"message"`
	Analysis          AnalysisResult `bson:"analysis" json:"analysis"`
	CandidateResponse string         `bson:"candidate_response" json:"candidate_response"`
}

// PendingAction is a queued, time-bounded request for human approval.
type PendingAction struct {
	ID        string        `bson:"_id,omitempty" json:"id"`
	Type      ActionType    `bson:"type" json:"type"`
	BuyerID   string        `bson:"buyer_id" json:"buyer_id"`
	Payload   ActionPayload `bson:"payload" json:"payload"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	Outcome   Outcome       `bson:"outcome" json:"outcome"`
}

// --- Audit Trail ---

// Actor identifies who resolved a gated decision.
type Actor string

const (
	ActorAutomated Actor = "automated"
	ActorHuman     Actor = "human"
)

// AuditEntry is one append-only record per state-changing decision.
type AuditEntry struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Action     string    `bson:"action" json:"action"`
	Actor      Actor     `bson:"actor" json:"actor"`
	Outcome    Outcome   `bson:"outcome" json:"outcome"`
	Supervised bool      `bson:"supervised" json:"supervised"`
}

// --- Analysis Output ---

// AnalysisResult is the engine's verdict on one inbound message.
// Persisted=false flags a degraded (best-effort) persistence write.
type AnalysisResult struct {
	Intent        Intent   `bson:"intent" json:"intent"`
	Priority      RiskTier `bson:"priority" json:"priority"`
	FraudRisk     int      `bson:"fraud_risk" json:"fraud_risk"`
	State         State    `bson:"state" json:"state"`
	RequiresHuman bool     `bson:"requires_human" json:"requires_human"`
	Response      string   `bson:"response,omitempty" json:"response,omitempty"`
	Persisted     bool     `bson:"persisted" json:"persisted"`
}
