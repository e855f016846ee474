package dto

import (
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// StartSubscriptionRequest begins billing a subject on a plan immediately.
// TrialUntil, when set, delays the first charge and starts the subscription
// in trial. CreditAmount is granted to the subject's gateway balance before
// the subscription is created. PaymentGateway selects the provider; empty
// means the configured default.
type StartSubscriptionRequest struct {
	PlanID          string                   `json:"plan_id" binding:"required"`
	Quantity        int                      `json:"quantity"`
	PaymentMethodID string                   `json:"payment_method_id"`
	PaymentGateway  types.PaymentGatewayType `json:"payment_gateway,omitempty"`
	TrialUntil      *time.Time               `json:"trial_until,omitempty"`
	CreditAmount    decimal.Decimal          `json:"credit_amount"`
}

func (r *StartSubscriptionRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide a plan to subscribe to").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.TrialUntil != nil && !r.TrialUntil.After(time.Now().UTC()) {
		return ierr.NewError("trial_until must be in the future").
			WithHint("Omit trial_until to start billing immediately").
			Mark(ierr.ErrValidation)
	}
	if r.CreditAmount.IsNegative() {
		return ierr.NewError("credit_amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ScheduledStartRequest books a subscription that begins billing only when
// the current one's period ends. The activation boundary is read from the
// gateway; StartsAt overrides it for callers that already computed one.
type ScheduledStartRequest struct {
	PlanID   string     `json:"plan_id" binding:"required"`
	Quantity int        `json:"quantity"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

func (r *ScheduledStartRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide a plan to subscribe to").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.StartsAt != nil && !r.StartsAt.After(time.Now().UTC()) {
		return ierr.NewError("starts_at must be in the future").
			WithHint("Use the start operation to begin billing immediately").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpgradeRequest moves the subject's current subscription to a pricier plan,
// effective immediately. ProrateNow controls whether the gateway generates
// proration line items; InvoiceNow additionally collects them right away.
type UpgradeRequest struct {
	PlanID     string `json:"plan_id" binding:"required"`
	Quantity   int    `json:"quantity"`
	ProrateNow bool   `json:"prorate_now"`
	InvoiceNow bool   `json:"invoice_now"`
}

func (r *UpgradeRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide the plan to upgrade to").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DowngradeRequest books a move to a cheaper plan at the end of the current
// billing period. Nothing changes on the subscription until then.
type DowngradeRequest struct {
	PlanID   string `json:"plan_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

func (r *DowngradeRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide the plan to downgrade to").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SwapRequest cancels the current subscription immediately and replaces it
// with a new one on the target plan. The replacement inherits the remaining
// paid time of the old subscription as trial.
type SwapRequest struct {
	PlanID   string `json:"plan_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

func (r *SwapRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide the plan to swap to").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CancelRequest ends the subject's current subscription. Now cancels
// immediately; otherwise the subscription runs until the period end and the
// subject enters the grace period. NextPlanID records a plan to move to when
// the grace period lapses.
type CancelRequest struct {
	Now        bool    `json:"now"`
	NextPlanID *string `json:"next_plan_id,omitempty"`
	Swapped    bool    `json:"swapped"`
}

func (r *CancelRequest) Validate() error {
	if r.Now && r.NextPlanID != nil {
		return ierr.NewError("next_plan_id cannot be combined with immediate cancellation").
			WithHint("A next plan only applies when the subscription runs out its period").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SwapResponse describes the replacement subscription created on the
// gateway. The superseded local record is deleted by the swap; registering a
// fresh local record from the new remote object is the caller's move.
type SwapResponse struct {
	GatewaySubscriptionRef string     `json:"gateway_subscription_ref"`
	PlanID                 string     `json:"plan_id"`
	Quantity               int        `json:"quantity"`
	TrialEndsAt            *time.Time `json:"trial_ends_at,omitempty"`
}

// CancelResponse reports when the subscription actually ends.
type CancelResponse struct {
	SubscriptionID string     `json:"subscription_id"`
	Status         string     `json:"status"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
}

// ProrationRequest previews the cost of changing the current subscription to
// the plan identified by tier and cycle in the catalog.
type ProrationRequest struct {
	Tier     string             `json:"tier" binding:"required"`
	Cycle    types.BillingCycle `json:"cycle" binding:"required"`
	Quantity int                `json:"quantity"`
}

func (r *ProrationRequest) Validate() error {
	if r.Tier == "" {
		return ierr.NewError("tier is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.Cycle.Validate(); err != nil {
		return err
	}
	if r.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProrationResponse is the previewed charge (positive) or credit (negative).
// Source reports whether the figure came from the gateway or the local
// estimator fallback.
type ProrationResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}

const (
	ProrationSourceGateway  = "gateway"
	ProrationSourceEstimate = "estimate"
)

// NextBillingTimeResponse reports the next charge instant in the formats
// clients historically consumed.
type NextBillingTimeResponse struct {
	Zulu           string `json:"zulu"`
	Human          string `json:"human"`
	Raw            int64  `json:"raw"`
	Ymdhis         string `json:"ymdhis"`
	WillBeBilledOn string `json:"will_be_billed_on"`
}

// NewNextBillingTimeResponse renders one instant into every supported format.
func NewNextBillingTimeResponse(at time.Time) *NextBillingTimeResponse {
	utc := at.UTC()
	human := utc.Format("January 2, 2006")
	return &NextBillingTimeResponse{
		Zulu:           utc.Format("2006-01-02T15:04:05Z"),
		Human:          human,
		Raw:            utc.Unix(),
		Ymdhis:         utc.Format("2006-01-02 15:04:05"),
		WillBeBilledOn: "will be billed on " + human,
	}
}

// SubscriptionResponse is the API representation of a subscription.
type SubscriptionResponse struct {
	ID                     string                    `json:"id"`
	SubjectID              string                    `json:"subject_id"`
	PlanID                 string                    `json:"plan_id"`
	Quantity               int                       `json:"quantity"`
	PaymentGateway         types.PaymentGatewayType  `json:"payment_gateway"`
	GatewaySubscriptionRef string                    `json:"gateway_subscription_ref,omitempty"`
	SubscriptionStatus     types.SubscriptionStatus  `json:"subscription_status"`
	StartsAt               time.Time                 `json:"starts_at"`
	TrialEndsAt            *time.Time                `json:"trial_ends_at,omitempty"`
	EndsAt                 *time.Time                `json:"ends_at,omitempty"`
	NextPlanID             *string                   `json:"next_plan_id,omitempty"`
	Swapped                bool                      `json:"swapped"`
	CreatedAt              time.Time                 `json:"created_at"`
	UpdatedAt              time.Time                 `json:"updated_at"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                     sub.ID,
		SubjectID:              sub.SubjectID,
		PlanID:                 sub.PlanID,
		Quantity:               sub.Quantity,
		PaymentGateway:         sub.PaymentGateway,
		GatewaySubscriptionRef: sub.GatewaySubscriptionRef,
		SubscriptionStatus:     sub.SubscriptionStatus,
		StartsAt:               sub.StartsAt,
		TrialEndsAt:            sub.TrialEndsAt,
		EndsAt:                 sub.EndsAt,
		NextPlanID:             sub.NextPlanID,
		Swapped:                sub.Swapped,
		CreatedAt:              sub.CreatedAt,
		UpdatedAt:              sub.UpdatedAt,
	}
}

// ScheduleResponse is the API representation of a booked plan change or
// scheduled start.
type ScheduleResponse struct {
	ID             string                `json:"id"`
	SubjectID      string                `json:"subject_id"`
	SubscriptionID string                `json:"subscription_id"`
	GatewayRef     string                `json:"gateway_ref"`
	GatewayRefKind types.ScheduleRefKind `json:"gateway_ref_kind"`
	StartsAt       time.Time             `json:"starts_at"`
	PlanID         string                `json:"plan_id"`
	Quantity       int                   `json:"quantity"`
}

func NewScheduleResponse(schedule *subscription.SubscriptionSchedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:             schedule.ID,
		SubjectID:      schedule.SubjectID,
		SubscriptionID: schedule.SubscriptionID,
		GatewayRef:     schedule.GatewayRef,
		GatewayRefKind: schedule.GatewayRefKind,
		StartsAt:       schedule.StartsAt,
		PlanID:         schedule.PlanID,
		Quantity:       schedule.Quantity,
	}
}
