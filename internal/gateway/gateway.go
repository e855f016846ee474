package gateway

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Client is the capability interface over a remote payment provider. It is
// the only seam through which the subscription core talks to a gateway; every
// operation maps 1:1 to a remote call and may fail with an error marked
// ierr.ErrGateway carrying a *gateway.Error.
//
// The gateway owns billing-period boundaries and proration arithmetic. The
// core treats every timestamp returned here as authoritative.
type Client interface {
	// Customers
	CreateCustomer(ctx context.Context, email string, metadata types.Metadata) (*Customer, error)
	GetCustomer(ctx context.Context, customerRef string) (*Customer, error)
	UpdateDefaultPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error
	CreateBalanceTransaction(ctx context.Context, customerRef string, amount decimal.Decimal, currency string) (*BalanceTransaction, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionRef string) (*Subscription, error)
	UpdateSubscriptionItem(ctx context.Context, subscriptionRef string, params UpdateItemParams) (*Subscription, error)
	// CancelSubscription terminates immediately when now is true, otherwise
	// flags the subscription to cancel at the current period end.
	CancelSubscription(ctx context.Context, subscriptionRef string, now bool) (*Subscription, error)
	// ResumeSubscription clears a pending cancel-at-period-end flag.
	ResumeSubscription(ctx context.Context, subscriptionRef string) error

	// Schedules
	CreateScheduleFromSubscription(ctx context.Context, subscriptionRef string) (*Schedule, error)
	UpdateSchedulePhases(ctx context.Context, scheduleRef string, phases []SchedulePhase) error
	ReleaseSchedule(ctx context.Context, scheduleRef string) error

	// Invoices
	PreviewUpcomingInvoice(ctx context.Context, params PreviewInvoiceParams) (*InvoicePreview, error)
	CreateInvoice(ctx context.Context, customerRef, subscriptionRef string) (*Invoice, error)
	PayInvoice(ctx context.Context, invoiceRef string) error
}

// Customer is the gateway-side customer record the core needs.
type Customer struct {
	Ref     string
	Email   string
	Balance decimal.Decimal // negative = credit owed to the subject
}

// Subscription is the gateway-side view of a subscription.
type Subscription struct {
	Ref                string
	Status             string
	ItemRef            string // id of the single subscription item
	PriceRef           string
	Quantity           int
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CreatedAt          time.Time
	CancelAtPeriodEnd  bool
	TrialEnd           *time.Time
	EndsAt             *time.Time // termination instant once cancellation is fixed
}

// Schedule is the gateway-side schedule object reference.
type Schedule struct {
	Ref string
}

// SchedulePhase is one time-boxed price/quantity segment of a schedule.
type SchedulePhase struct {
	PriceRef          string
	Quantity          int
	StartDate         time.Time
	EndDate           *time.Time
	Iterations        int
	ProrationBehavior types.ProrationBehavior
}

// BalanceTransaction is a signed balance adjustment applied at the gateway.
type BalanceTransaction struct {
	Ref       string
	Amount    decimal.Decimal
	Currency  string
	AppliedAt time.Time
}

// Invoice is the gateway-side invoice reference.
type Invoice struct {
	Ref    string
	Status string
}

// InvoicePreview is the gateway's simulation of the upcoming invoice.
type InvoicePreview struct {
	Total    decimal.Decimal
	Currency string
}

// CreateSubscriptionParams are the inputs for creating a remote subscription.
type CreateSubscriptionParams struct {
	CustomerRef      string
	PriceRef         string
	Quantity         int
	TrialEnd         *time.Time
	PaymentMethodRef string // empty = use the customer's default
}

// UpdateItemParams replaces the price/quantity of the subscription's single item.
type UpdateItemParams struct {
	ItemRef           string
	PriceRef          string
	Quantity          int
	ProrationBehavior types.ProrationBehavior // empty = gateway default
}

// PreviewInvoiceParams simulate the subscription's single item changing to
// the given price/quantity.
type PreviewInvoiceParams struct {
	CustomerRef       string
	SubscriptionRef   string
	ItemRef           string
	PriceRef          string
	Quantity          int
	ProrationBehavior types.ProrationBehavior
}
