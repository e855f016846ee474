package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
)

// PaymentGatewayType represents the type of payment gateway
type PaymentGatewayType string

const (
	PaymentGatewayTypeStripe PaymentGatewayType = "stripe"
)

// Validate validates the payment gateway type
func (p PaymentGatewayType) Validate() error {
	switch p {
	case PaymentGatewayTypeStripe:
		return nil
	default:
		return ierr.NewError("invalid payment gateway type").
			WithHint("Please provide a valid payment gateway type").
			WithReportableDetails(map[string]any{
				"allowed": []PaymentGatewayType{
					PaymentGatewayTypeStripe,
				},
			}).
			Mark(ierr.ErrValidation)
	}
}

// String returns the string representation of the payment gateway type
func (p PaymentGatewayType) String() string {
	return string(p)
}

// ScheduleRefKind distinguishes what kind of gateway object backs a
// subscription schedule record.
type ScheduleRefKind string

const (
	// ScheduleRefKindSchedule means the gateway ref points at a real
	// subscription schedule object (downgrade path).
	ScheduleRefKindSchedule ScheduleRefKind = "schedule"
	// ScheduleRefKindPendingSubscription means the gateway ref points at a
	// not-yet-active subscription created ahead of time (scheduled start path).
	ScheduleRefKindPendingSubscription ScheduleRefKind = "pending_subscription"
)
