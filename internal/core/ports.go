package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when an entity does not exist.
var ErrNotFound = errors.New("not found")

// BuyerRepository exposes buyer profiles owned by the persistence layer.
type BuyerRepository interface {
	GetByID(ctx context.Context, id string) (*BuyerProfile, error)
	Create(ctx context.Context, buyer BuyerProfile) error
}

// ProductRepository exposes product records owned by the persistence layer.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*ProductInfo, error)
	Create(ctx context.Context, product ProductInfo) error
}

// ConversationRepository persists per-buyer conversation state.
type ConversationRepository interface {
	GetByBuyer(ctx context.Context, buyerID string) (*Conversation, error)
	Upsert(ctx context.Context, conv Conversation) error
	// ListInactiveSince returns conversations with no activity since the
	// cutoff, for the periodic abandonment sweep.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]Conversation, error)
}

// ActionRepository persists pending actions. The in-memory active set in the
// gate is authoritative; these writes are best-effort.
type ActionRepository interface {
	Insert(ctx context.Context, action PendingAction) error
	UpdateOutcome(ctx context.Context, id string, outcome Outcome) error
	ListActive(ctx context.Context) ([]PendingAction, error)
}

// AuditRepository is the append-only audit sink.
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Notifier delivers "human decision required" events to the review channel.
type Notifier interface {
	NotifyReview(ctx context.Context, action PendingAction) error
}

// Deliverer accepts an approved outbound message plus a jitter delay.
// The actual send timing mechanics belong to the delivery collaborator.
type Deliverer interface {
	Deliver(ctx context.Context, buyerID, text string, delay time.Duration) error
}

// TextGenerator optionally supplies candidate response text (e.g. from an
// LLM). The selector treats it as one more template source.
type TextGenerator interface {
	Generate(ctx context.Context, conv Conversation, product ProductInfo, message string) (string, error)
}
