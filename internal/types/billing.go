package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
)

// BillingCycle is the recurrence of a plan's price.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

// Validate validates the billing cycle
func (c BillingCycle) Validate() error {
	switch c {
	case BillingCycleMonthly, BillingCycleAnnual:
		return nil
	default:
		return ierr.NewError("invalid billing cycle").
			WithHint("Please provide a valid billing cycle").
			WithReportableDetails(map[string]any{
				"allowed": []BillingCycle{BillingCycleMonthly, BillingCycleAnnual},
			}).
			Mark(ierr.ErrValidation)
	}
}

// String returns the string representation of the billing cycle
func (c BillingCycle) String() string {
	return string(c)
}

// MonthsPerCycle returns the number of months covered by one billing period.
func (c BillingCycle) MonthsPerCycle() int {
	if c == BillingCycleAnnual {
		return 12
	}
	return 1
}

// ProrationBehavior mirrors the gateway's proration switch for plan changes.
type ProrationBehavior string

const (
	ProrationBehaviorCreateProrations ProrationBehavior = "create_prorations"
	ProrationBehaviorNone             ProrationBehavior = "none"
	ProrationBehaviorAlwaysInvoice    ProrationBehavior = "always_invoice"
)

// ProrationBehaviorFromBool maps the caller-facing prorate flag to the
// gateway's behavior string.
func ProrationBehaviorFromBool(prorate bool) ProrationBehavior {
	if prorate {
		return ProrationBehaviorCreateProrations
	}
	return ProrationBehaviorNone
}

// String returns the string representation of the proration behavior
func (p ProrationBehavior) String() string {
	return string(p)
}
