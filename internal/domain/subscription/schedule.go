package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// SubscriptionSchedule is a deferred plan-change instruction anchored to a
// billing subject. At most one live schedule may exist per subscription;
// whoever creates one must release any existing schedule first, remotely and
// locally, in that order.
type SubscriptionSchedule struct {
	// ID is the unique identifier for the schedule
	ID string `db:"id" json:"id"`

	// SubjectID is the identifier of the billing subject
	SubjectID string `db:"subject_id" json:"subject_id"`

	// SubscriptionID is the subscription this schedule defers a change for
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	// PaymentGateway is the provider the schedule lives on
	PaymentGateway types.PaymentGatewayType `db:"payment_gateway" json:"payment_gateway"`

	// GatewayRef is the opaque gateway object backing this schedule
	GatewayRef string `db:"gateway_ref" json:"gateway_ref"`

	// GatewayRefKind records whether GatewayRef is a schedule object or a
	// pending subscription created ahead of its activation
	GatewayRefKind types.ScheduleRefKind `db:"gateway_ref_kind" json:"gateway_ref_kind"`

	// StartsAt is the future activation timestamp, always a billing boundary
	// reported by the gateway
	StartsAt time.Time `db:"starts_at" json:"starts_at"`

	// PlanID is the target plan taking effect at StartsAt
	PlanID string `db:"plan_id" json:"plan_id"`

	// Quantity is the target quantity taking effect at StartsAt
	Quantity int `db:"quantity" json:"quantity"`

	types.BaseModel
}
