package stripe

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// Client adapts the Stripe API to the gateway capability interface. All
// monetary values cross this boundary in major units; Stripe works in the
// currency's smallest unit, so the adapter converts both ways.
type Client struct {
	api    *stripe.Client
	logger *logger.Logger
}

func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		logger: logger,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, email string, metadata types.Metadata) (*gateway.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(email),
		Metadata: metadata,
	}

	customer, err := c.api.V1Customers.Create(ctx, params)
	if err != nil {
		return nil, c.wrapErr(err, "failed to create customer")
	}

	return toCustomer(customer), nil
}

func (c *Client) GetCustomer(ctx context.Context, customerRef string) (*gateway.Customer, error) {
	customer, err := c.api.V1Customers.Retrieve(ctx, customerRef, nil)
	if err != nil {
		return nil, c.wrapErr(err, "failed to retrieve customer")
	}

	return toCustomer(customer), nil
}

func (c *Client) UpdateDefaultPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	params := &stripe.CustomerUpdateParams{
		InvoiceSettings: &stripe.CustomerUpdateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodRef),
		},
	}

	_, err := c.api.V1Customers.Update(ctx, customerRef, params)
	if err != nil {
		return c.wrapErr(err, "failed to update default payment method")
	}

	return nil
}

func (c *Client) CreateBalanceTransaction(ctx context.Context, customerRef string, amount decimal.Decimal, currency string) (*gateway.BalanceTransaction, error) {
	params := &stripe.CustomerBalanceTransactionCreateParams{
		Customer: stripe.String(customerRef),
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(currency),
	}

	txn, err := c.api.V1CustomerBalanceTransactions.Create(ctx, params)
	if err != nil {
		return nil, c.wrapErr(err, "failed to create balance transaction")
	}

	return &gateway.BalanceTransaction{
		Ref:       txn.ID,
		Amount:    fromMinorUnits(txn.Amount),
		Currency:  string(txn.Currency),
		AppliedAt: time.Unix(txn.Created, 0).UTC(),
	}, nil
}

func (c *Client) CreateSubscription(ctx context.Context, params gateway.CreateSubscriptionParams) (*gateway.Subscription, error) {
	createParams := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(params.CustomerRef),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				Price:    stripe.String(params.PriceRef),
				Quantity: stripe.Int64(int64(params.Quantity)),
			},
		},
	}
	if params.TrialEnd != nil {
		createParams.TrialEnd = stripe.Int64(params.TrialEnd.Unix())
	}
	if params.PaymentMethodRef != "" {
		createParams.DefaultPaymentMethod = stripe.String(params.PaymentMethodRef)
	}

	sub, err := c.api.V1Subscriptions.Create(ctx, createParams)
	if err != nil {
		return nil, c.wrapErr(err, "failed to create subscription")
	}

	return toSubscription(sub), nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionRef string) (*gateway.Subscription, error) {
	sub, err := c.api.V1Subscriptions.Retrieve(ctx, subscriptionRef, nil)
	if err != nil {
		return nil, c.wrapErr(err, "failed to retrieve subscription")
	}

	return toSubscription(sub), nil
}

func (c *Client) UpdateSubscriptionItem(ctx context.Context, subscriptionRef string, params gateway.UpdateItemParams) (*gateway.Subscription, error) {
	updateParams := &stripe.SubscriptionUpdateParams{
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:       stripe.String(params.ItemRef),
				Price:    stripe.String(params.PriceRef),
				Quantity: stripe.Int64(int64(params.Quantity)),
			},
		},
	}
	if params.ProrationBehavior != "" {
		updateParams.ProrationBehavior = stripe.String(string(params.ProrationBehavior))
	}

	sub, err := c.api.V1Subscriptions.Update(ctx, subscriptionRef, updateParams)
	if err != nil {
		return nil, c.wrapErr(err, "failed to update subscription item")
	}

	return toSubscription(sub), nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionRef string, now bool) (*gateway.Subscription, error) {
	if now {
		sub, err := c.api.V1Subscriptions.Cancel(ctx, subscriptionRef, &stripe.SubscriptionCancelParams{})
		if err != nil {
			return nil, c.wrapErr(err, "failed to cancel subscription")
		}
		return toSubscription(sub), nil
	}

	params := &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	sub, err := c.api.V1Subscriptions.Update(ctx, subscriptionRef, params)
	if err != nil {
		return nil, c.wrapErr(err, "failed to schedule subscription cancellation")
	}

	return toSubscription(sub), nil
}

func (c *Client) ResumeSubscription(ctx context.Context, subscriptionRef string) error {
	params := &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}

	_, err := c.api.V1Subscriptions.Update(ctx, subscriptionRef, params)
	if err != nil {
		return c.wrapErr(err, "failed to resume subscription")
	}

	return nil
}

func (c *Client) CreateScheduleFromSubscription(ctx context.Context, subscriptionRef string) (*gateway.Schedule, error) {
	params := &stripe.SubscriptionScheduleCreateParams{
		FromSubscription: stripe.String(subscriptionRef),
	}

	schedule, err := c.api.V1SubscriptionSchedules.Create(ctx, params)
	if err != nil {
		return nil, c.wrapErr(err, "failed to create subscription schedule")
	}

	return &gateway.Schedule{Ref: schedule.ID}, nil
}

func (c *Client) UpdateSchedulePhases(ctx context.Context, scheduleRef string, phases []gateway.SchedulePhase) error {
	phaseParams := make([]*stripe.SubscriptionScheduleUpdatePhaseParams, 0, len(phases))
	for _, phase := range phases {
		p := &stripe.SubscriptionScheduleUpdatePhaseParams{
			Items: []*stripe.SubscriptionScheduleUpdatePhaseItemParams{
				{
					Price:    stripe.String(phase.PriceRef),
					Quantity: stripe.Int64(int64(phase.Quantity)),
				},
			},
		}
		if !phase.StartDate.IsZero() {
			p.StartDate = stripe.Int64(phase.StartDate.Unix())
		}
		if phase.EndDate != nil {
			p.EndDate = stripe.Int64(phase.EndDate.Unix())
		}
		if phase.Iterations > 0 {
			p.Iterations = stripe.Int64(int64(phase.Iterations))
		}
		if phase.ProrationBehavior != "" {
			p.ProrationBehavior = stripe.String(string(phase.ProrationBehavior))
		}
		phaseParams = append(phaseParams, p)
	}

	params := &stripe.SubscriptionScheduleUpdateParams{
		Phases: phaseParams,
	}

	_, err := c.api.V1SubscriptionSchedules.Update(ctx, scheduleRef, params)
	if err != nil {
		return c.wrapErr(err, "failed to update schedule phases")
	}

	return nil
}

func (c *Client) ReleaseSchedule(ctx context.Context, scheduleRef string) error {
	_, err := c.api.V1SubscriptionSchedules.Release(ctx, scheduleRef, &stripe.SubscriptionScheduleReleaseParams{})
	if err != nil {
		return c.wrapErr(err, "failed to release schedule")
	}

	return nil
}

func (c *Client) PreviewUpcomingInvoice(ctx context.Context, params gateway.PreviewInvoiceParams) (*gateway.InvoicePreview, error) {
	item := &stripe.InvoiceCreatePreviewSubscriptionDetailsItemParams{
		Price:    stripe.String(params.PriceRef),
		Quantity: stripe.Int64(int64(params.Quantity)),
	}
	if params.ItemRef != "" {
		item.ID = stripe.String(params.ItemRef)
	}

	previewParams := &stripe.InvoiceCreatePreviewParams{
		Customer:     stripe.String(params.CustomerRef),
		Subscription: stripe.String(params.SubscriptionRef),
		SubscriptionDetails: &stripe.InvoiceCreatePreviewSubscriptionDetailsParams{
			Items: []*stripe.InvoiceCreatePreviewSubscriptionDetailsItemParams{item},
		},
	}
	if params.ProrationBehavior != "" {
		previewParams.SubscriptionDetails.ProrationBehavior = stripe.String(string(params.ProrationBehavior))
	}

	invoice, err := c.api.V1Invoices.CreatePreview(ctx, previewParams)
	if err != nil {
		return nil, c.wrapErr(err, "failed to preview upcoming invoice")
	}

	return &gateway.InvoicePreview{
		Total:    fromMinorUnits(invoice.Total),
		Currency: string(invoice.Currency),
	}, nil
}

func (c *Client) CreateInvoice(ctx context.Context, customerRef, subscriptionRef string) (*gateway.Invoice, error) {
	params := &stripe.InvoiceCreateParams{
		Customer:     stripe.String(customerRef),
		Subscription: stripe.String(subscriptionRef),
		AutoAdvance:  stripe.Bool(false),
	}

	invoice, err := c.api.V1Invoices.Create(ctx, params)
	if err != nil {
		return nil, c.wrapErr(err, "failed to create invoice")
	}

	return &gateway.Invoice{
		Ref:    invoice.ID,
		Status: string(invoice.Status),
	}, nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceRef string) error {
	_, err := c.api.V1Invoices.Pay(ctx, invoiceRef, &stripe.InvoicePayParams{})
	if err != nil {
		return c.wrapErr(err, "failed to pay invoice")
	}

	return nil
}

// wrapErr translates a Stripe failure into the internal gateway taxonomy and
// marks it so callers can branch on ierr.ErrGateway without importing stripe.
func (c *Client) wrapErr(err error, msg string) error {
	gerr := &gateway.Error{
		Code:    gateway.ErrCodeGeneric,
		Message: err.Error(),
	}

	if stripeErr, ok := err.(*stripe.Error); ok {
		gerr.Message = stripeErr.Msg
		switch {
		case stripeErr.DeclineCode == stripe.DeclineCodeInsufficientFunds:
			gerr.Code = gateway.ErrCodeInsufficientFunds
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			gerr.Code = gateway.ErrCodeResourceMissing
		}

		c.logger.Errorw("stripe request failed",
			"stripe_error_code", stripeErr.Code,
			"decline_code", stripeErr.DeclineCode,
			"message", stripeErr.Msg)
	}

	return ierr.WithError(gerr).
		WithHint(msg).
		Mark(ierr.ErrGateway)
}

func toCustomer(customer *stripe.Customer) *gateway.Customer {
	return &gateway.Customer{
		Ref:     customer.ID,
		Email:   customer.Email,
		Balance: fromMinorUnits(customer.Balance),
	}
}

func toSubscription(sub *stripe.Subscription) *gateway.Subscription {
	result := &gateway.Subscription{
		Ref:               sub.ID,
		Status:            string(sub.Status),
		CreatedAt:         time.Unix(sub.Created, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}

	// Period boundaries live on the item since the Basil API release.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		result.ItemRef = item.ID
		result.Quantity = int(item.Quantity)
		result.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		result.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		if item.Price != nil {
			result.PriceRef = item.Price.ID
		}
	}

	if sub.TrialEnd > 0 {
		trialEnd := time.Unix(sub.TrialEnd, 0).UTC()
		result.TrialEnd = &trialEnd
	}

	switch {
	case sub.CancelAt > 0:
		endsAt := time.Unix(sub.CancelAt, 0).UTC()
		result.EndsAt = &endsAt
	case sub.CanceledAt > 0 && sub.Status == stripe.SubscriptionStatusCanceled:
		endsAt := time.Unix(sub.CanceledAt, 0).UTC()
		result.EndsAt = &endsAt
	case sub.CancelAtPeriodEnd:
		result.EndsAt = &result.CurrentPeriodEnd
	}

	return result
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}
