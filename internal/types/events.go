package types

import (
	"encoding/json"
	"time"
)

// WebhookEventName identifies a domain event emitted by the subscription core.
type WebhookEventName string

const (
	WebhookEventSubscriptionStarted   WebhookEventName = "subscription.started"
	WebhookEventSubscriptionUpdated   WebhookEventName = "subscription.updated"
	WebhookEventSubscriptionCancelled WebhookEventName = "subscription.cancelled"
	WebhookEventSubscriptionPaused    WebhookEventName = "subscription.paused"
	WebhookEventSubscriptionResumed   WebhookEventName = "subscription.resumed"
	WebhookEventSubscriptionSwapped   WebhookEventName = "subscription.swapped"
)

// String returns the string representation of the webhook event name
func (w WebhookEventName) String() string {
	return string(w)
}

// WebhookEvent is the envelope published to the event sink. Delivery is
// best-effort and never transactional with the state mutation that caused it.
type WebhookEvent struct {
	ID        string           `json:"id"`
	EventName WebhookEventName `json:"event_name"`
	TenantID  string           `json:"tenant_id"`
	SubjectID string           `json:"subject_id"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
}
