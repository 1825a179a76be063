package notification

import (
	"context"
	"log"
	"time"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// OutboundMessage is one approved send handed off to the external delivery
// layer, which owns the actual timing mechanics.
type OutboundMessage struct {
	BuyerID string        `json:"buyer_id"`
	Text    string        `json:"text"`
	Delay   time.Duration `json:"delay"`
}

// QueueDeliverer buffers approved sends on a channel consumed by the delivery
// collaborator. The channel never blocks the gate: when the consumer falls
// behind, the send is dropped here and logged, and the audit trail still
// holds the authorization.
type QueueDeliverer struct {
	out chan OutboundMessage
}

func NewQueueDeliverer(buffer int) *QueueDeliverer {
	if buffer <= 0 {
		buffer = 100
	}
	return &QueueDeliverer{out: make(chan OutboundMessage, buffer)}
}

// Outbound is the channel the delivery collaborator consumes.
func (d *QueueDeliverer) Outbound() <-chan OutboundMessage {
	return d.out
}

func (d *QueueDeliverer) Deliver(ctx context.Context, buyerID, text string, delay time.Duration) error {
	msg := OutboundMessage{BuyerID: buyerID, Text: text, Delay: delay}
	select {
	case d.out <- msg:
		return nil
	default:
		log.Printf("delivery: outbound queue full, dropping send to %s", buyerID)
		return nil
	}
}

var _ core.Deliverer = (*QueueDeliverer)(nil)
