package types

// SubscriptionStatus is the lifecycle status of a billing subscription.
// A subscription holds a live gateway reference only while it is in one of
// the live statuses (trialing, active, grace_period).
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing    SubscriptionStatus = "trialing"
	SubscriptionStatusActive      SubscriptionStatus = "active"
	SubscriptionStatusGracePeriod SubscriptionStatus = "grace_period"
	SubscriptionStatusCancelled   SubscriptionStatus = "cancelled"
)

// IsLive returns true for statuses that correspond to an existing
// subscription object on the payment gateway.
func (s SubscriptionStatus) IsLive() bool {
	switch s {
	case SubscriptionStatusTrialing, SubscriptionStatusActive, SubscriptionStatusGracePeriod:
		return true
	default:
		return false
	}
}

// String returns the string representation of the subscription status
func (s SubscriptionStatus) String() string {
	return string(s)
}

// SubscriptionFilter is the filter supported by the subscription repository.
// The core only ever needs "current subscription for subject".
type SubscriptionFilter struct {
	SubjectID string               `form:"subject_id"`
	Statuses  []SubscriptionStatus `form:"statuses"`
	PlanID    string               `form:"plan_id"`
}
