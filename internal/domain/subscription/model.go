package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// Subscription represents one billing relationship between a subject and a
// plan, mirrored onto the payment gateway.
//
// Invariants:
//   - GatewaySubscriptionRef is set iff SubscriptionStatus is live
//     (trialing, active, grace_period).
//   - EndsAt is set iff the subscription is in grace period, cancelled, or a
//     deferred plan change has fixed its termination boundary.
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// SubjectID is the identifier of the billing subject
	SubjectID string `db:"subject_id" json:"subject_id"`

	// PlanID is the identifier for the plan in our system
	PlanID string `db:"plan_id" json:"plan_id"`

	// Quantity is the number of plan units, always >= 1
	Quantity int `db:"quantity" json:"quantity"`

	// PaymentGateway is the provider this subscription lives on
	PaymentGateway types.PaymentGatewayType `db:"payment_gateway" json:"payment_gateway"`

	// GatewaySubscriptionRef is the opaque subscription id on the gateway
	GatewaySubscriptionRef string `db:"gateway_subscription_ref" json:"gateway_subscription_ref"`

	// SubscriptionStatus is the lifecycle status of the subscription
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// StartsAt is when the subscription started billing (or will, for trials)
	StartsAt time.Time `db:"starts_at" json:"starts_at"`

	// TrialEndsAt is the end of the trial period, if any
	TrialEndsAt *time.Time `db:"trial_ends_at" json:"trial_ends_at"`

	// EndsAt is when the subscription terminates. Set on cancellation and
	// when a deferred change fixes the period boundary.
	EndsAt *time.Time `db:"ends_at" json:"ends_at"`

	// NextPlanID is the plan to take effect at EndsAt, if any
	NextPlanID *string `db:"next_plan_id" json:"next_plan_id"`

	// Swapped marks a subscription that was replaced via a swap
	Swapped bool `db:"swapped" json:"swapped"`

	types.BaseModel
}

// IsLive returns true while a gateway subscription object exists for this record.
func (s *Subscription) IsLive() bool {
	return s.SubscriptionStatus.IsLive()
}

// OnGracePeriod reports whether the subscription was cancelled at period end
// and that period has not yet elapsed. Resume is only legal here.
func (s *Subscription) OnGracePeriod(now time.Time) bool {
	return s.SubscriptionStatus == types.SubscriptionStatusGracePeriod &&
		s.EndsAt != nil && s.EndsAt.After(now)
}

// OnTrial reports whether the subscription is within its trial window.
func (s *Subscription) OnTrial(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}
