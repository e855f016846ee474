package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Operation names used to script and count gateway calls.
const (
	OpCreateCustomer           = "CreateCustomer"
	OpGetCustomer              = "GetCustomer"
	OpUpdateDefaultPM          = "UpdateDefaultPaymentMethod"
	OpCreateBalanceTransaction = "CreateBalanceTransaction"
	OpCreateSubscription       = "CreateSubscription"
	OpGetSubscription          = "GetSubscription"
	OpUpdateSubscriptionItem   = "UpdateSubscriptionItem"
	OpCancelSubscription       = "CancelSubscription"
	OpResumeSubscription       = "ResumeSubscription"
	OpCreateSchedule           = "CreateScheduleFromSubscription"
	OpUpdateSchedulePhases     = "UpdateSchedulePhases"
	OpReleaseSchedule          = "ReleaseSchedule"
	OpPreviewUpcomingInvoice   = "PreviewUpcomingInvoice"
	OpCreateInvoice            = "CreateInvoice"
	OpPayInvoice               = "PayInvoice"
)

// GatewayFailure builds an error shaped exactly like the real adapter's:
// a *gateway.Error wrapped and marked with ierr.ErrGateway.
func GatewayFailure(code gateway.ErrorCode, msg string) error {
	return ierr.WithError(&gateway.Error{Code: code, Message: msg}).
		WithHint("gateway request failed").
		Mark(ierr.ErrGateway)
}

// StubGateway is a scripted in-memory gateway.Client. Tests seed failures
// per operation with FailOn and read call counts back with CallCount.
type StubGateway struct {
	mu sync.Mutex

	calls  map[string]int
	errors map[string]error

	customers     map[string]*gateway.Customer
	subscriptions map[string]*gateway.Subscription
	schedules     map[string]bool
	transactions  []*gateway.BalanceTransaction
	paidInvoices  []string

	// PreviewTotal is returned by PreviewUpcomingInvoice
	PreviewTotal decimal.Decimal
	// PeriodLength is the billing period applied to created subscriptions
	PeriodLength time.Duration

	seq int
}

var _ gateway.Client = (*StubGateway)(nil)

func NewStubGateway() *StubGateway {
	return &StubGateway{
		calls:         make(map[string]int),
		errors:        make(map[string]error),
		customers:     make(map[string]*gateway.Customer),
		subscriptions: make(map[string]*gateway.Subscription),
		schedules:     make(map[string]bool),
		PreviewTotal:  decimal.Zero,
		PeriodLength:  30 * 24 * time.Hour,
	}
}

// FailOn scripts an error for every subsequent call of the operation.
func (g *StubGateway) FailOn(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors[op] = err
}

// FailAll scripts the same error for every operation.
func (g *StubGateway) FailAll(err error) {
	ops := []string{
		OpCreateCustomer, OpGetCustomer, OpUpdateDefaultPM,
		OpCreateBalanceTransaction, OpCreateSubscription, OpGetSubscription,
		OpUpdateSubscriptionItem, OpCancelSubscription, OpResumeSubscription,
		OpCreateSchedule, OpUpdateSchedulePhases, OpReleaseSchedule,
		OpPreviewUpcomingInvoice, OpCreateInvoice, OpPayInvoice,
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, op := range ops {
		g.errors[op] = err
	}
}

// CallCount returns how many times an operation was invoked.
func (g *StubGateway) CallCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// Subscription returns the stub's view of a created subscription.
func (g *StubGateway) Subscription(ref string) *gateway.Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sub, ok := g.subscriptions[ref]; ok {
		copy := *sub
		return &copy
	}
	return nil
}

// SetCustomerBalance scripts the balance returned by GetCustomer.
func (g *StubGateway) SetCustomerBalance(customerRef string, balance decimal.Decimal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if customer, ok := g.customers[customerRef]; ok {
		customer.Balance = balance
	} else {
		g.customers[customerRef] = &gateway.Customer{Ref: customerRef, Balance: balance}
	}
}

// BalanceTransactions returns all recorded balance adjustments.
func (g *StubGateway) BalanceTransactions() []*gateway.BalanceTransaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*gateway.BalanceTransaction{}, g.transactions...)
}

func (g *StubGateway) begin(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	return g.errors[op]
}

func (g *StubGateway) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

func (g *StubGateway) CreateCustomer(ctx context.Context, email string, metadata types.Metadata) (*gateway.Customer, error) {
	if err := g.begin(OpCreateCustomer); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	customer := &gateway.Customer{
		Ref:   g.nextID("cus"),
		Email: email,
	}
	g.customers[customer.Ref] = customer
	copy := *customer
	return &copy, nil
}

func (g *StubGateway) GetCustomer(ctx context.Context, customerRef string) (*gateway.Customer, error) {
	if err := g.begin(OpGetCustomer); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	customer, ok := g.customers[customerRef]
	if !ok {
		return nil, GatewayFailure(gateway.ErrCodeResourceMissing, "no such customer")
	}
	copy := *customer
	return &copy, nil
}

func (g *StubGateway) UpdateDefaultPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	return g.begin(OpUpdateDefaultPM)
}

func (g *StubGateway) CreateBalanceTransaction(ctx context.Context, customerRef string, amount decimal.Decimal, currency string) (*gateway.BalanceTransaction, error) {
	if err := g.begin(OpCreateBalanceTransaction); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	txn := &gateway.BalanceTransaction{
		Ref:       g.nextID("cbtxn"),
		Amount:    amount,
		Currency:  currency,
		AppliedAt: time.Now().UTC(),
	}
	g.transactions = append(g.transactions, txn)
	if customer, ok := g.customers[customerRef]; ok {
		customer.Balance = customer.Balance.Add(amount)
	}
	copy := *txn
	return &copy, nil
}

func (g *StubGateway) CreateSubscription(ctx context.Context, params gateway.CreateSubscriptionParams) (*gateway.Subscription, error) {
	if err := g.begin(OpCreateSubscription); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC()
	sub := &gateway.Subscription{
		Ref:                g.nextID("sub"),
		ItemRef:            g.nextID("si"),
		Status:             "active",
		PriceRef:           params.PriceRef,
		Quantity:           params.Quantity,
		CreatedAt:          now,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(g.PeriodLength),
	}
	if params.TrialEnd != nil {
		trialEnd := params.TrialEnd.UTC()
		sub.TrialEnd = &trialEnd
		sub.Status = "trialing"
		sub.CurrentPeriodEnd = trialEnd
	}
	g.subscriptions[sub.Ref] = sub
	copy := *sub
	return &copy, nil
}

func (g *StubGateway) GetSubscription(ctx context.Context, subscriptionRef string) (*gateway.Subscription, error) {
	if err := g.begin(OpGetSubscription); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[subscriptionRef]
	if !ok {
		return nil, GatewayFailure(gateway.ErrCodeResourceMissing, "no such subscription")
	}
	copy := *sub
	return &copy, nil
}

func (g *StubGateway) UpdateSubscriptionItem(ctx context.Context, subscriptionRef string, params gateway.UpdateItemParams) (*gateway.Subscription, error) {
	if err := g.begin(OpUpdateSubscriptionItem); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[subscriptionRef]
	if !ok {
		return nil, GatewayFailure(gateway.ErrCodeResourceMissing, "no such subscription")
	}
	sub.PriceRef = params.PriceRef
	sub.Quantity = params.Quantity
	copy := *sub
	return &copy, nil
}

func (g *StubGateway) CancelSubscription(ctx context.Context, subscriptionRef string, now bool) (*gateway.Subscription, error) {
	if err := g.begin(OpCancelSubscription); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[subscriptionRef]
	if !ok {
		return nil, GatewayFailure(gateway.ErrCodeResourceMissing, "no such subscription")
	}
	if now {
		at := time.Now().UTC()
		sub.Status = "canceled"
		sub.EndsAt = &at
	} else {
		sub.CancelAtPeriodEnd = true
		endsAt := sub.CurrentPeriodEnd
		sub.EndsAt = &endsAt
	}
	copy := *sub
	return &copy, nil
}

func (g *StubGateway) ResumeSubscription(ctx context.Context, subscriptionRef string) error {
	if err := g.begin(OpResumeSubscription); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[subscriptionRef]
	if !ok {
		return GatewayFailure(gateway.ErrCodeResourceMissing, "no such subscription")
	}
	sub.CancelAtPeriodEnd = false
	sub.EndsAt = nil
	return nil
}

func (g *StubGateway) CreateScheduleFromSubscription(ctx context.Context, subscriptionRef string) (*gateway.Schedule, error) {
	if err := g.begin(OpCreateSchedule); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.subscriptions[subscriptionRef]; !ok {
		return nil, GatewayFailure(gateway.ErrCodeResourceMissing, "no such subscription")
	}
	ref := g.nextID("sub_sched")
	g.schedules[ref] = true
	return &gateway.Schedule{Ref: ref}, nil
}

func (g *StubGateway) UpdateSchedulePhases(ctx context.Context, scheduleRef string, phases []gateway.SchedulePhase) error {
	if err := g.begin(OpUpdateSchedulePhases); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.schedules[scheduleRef] {
		return GatewayFailure(gateway.ErrCodeResourceMissing, "no such schedule")
	}
	return nil
}

func (g *StubGateway) ReleaseSchedule(ctx context.Context, scheduleRef string) error {
	if err := g.begin(OpReleaseSchedule); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.schedules[scheduleRef] {
		return GatewayFailure(gateway.ErrCodeResourceMissing, "no such schedule")
	}
	delete(g.schedules, scheduleRef)
	return nil
}

func (g *StubGateway) PreviewUpcomingInvoice(ctx context.Context, params gateway.PreviewInvoiceParams) (*gateway.InvoicePreview, error) {
	if err := g.begin(OpPreviewUpcomingInvoice); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return &gateway.InvoicePreview{
		Total:    g.PreviewTotal,
		Currency: "usd",
	}, nil
}

func (g *StubGateway) CreateInvoice(ctx context.Context, customerRef, subscriptionRef string) (*gateway.Invoice, error) {
	if err := g.begin(OpCreateInvoice); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return &gateway.Invoice{
		Ref:    g.nextID("in"),
		Status: "open",
	}, nil
}

func (g *StubGateway) PayInvoice(ctx context.Context, invoiceRef string) error {
	if err := g.begin(OpPayInvoice); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.paidInvoices = append(g.paidInvoices, invoiceRef)
	return nil
}

// PaidInvoices returns the refs of invoices paid through the stub.
func (g *StubGateway) PaidInvoices() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string{}, g.paidInvoices...)
}
