package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// WebhookNotifier POSTs "human decision required" events to the review
// channel. Failures are the caller's to log; the gate never blocks on them.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type reviewEvent struct {
	Event  string             `json:"event"`
	Action core.PendingAction `json:"action"`
}

func (n *WebhookNotifier) NotifyReview(ctx context.Context, action core.PendingAction) error {
	payload := reviewEvent{Event: "human_decision_required", Action: action}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("review webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier satisfies the Notifier port for deployments without a review
// channel and for tests.
type NoopNotifier struct{}

func (NoopNotifier) NotifyReview(ctx context.Context, action core.PendingAction) error {
	return nil
}
