package plan

import (
	"fmt"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a catalog entity. It is immutable from the core's perspective;
// the catalog collaborator owns it.
type Plan struct {
	// ID is the unique identifier for the plan
	ID string `db:"id" json:"id"`

	// Tier is the product tier, e.g. "pro"
	Tier string `db:"tier" json:"tier"`

	// Cycle is the billing cycle of the plan's price
	Cycle types.BillingCycle `db:"cycle" json:"cycle"`

	// GatewayPriceRef is the opaque price id on the payment gateway
	GatewayPriceRef string `db:"gateway_price_ref" json:"gateway_price_ref"`

	// Amount is the per-unit price for one billing period
	Amount decimal.Decimal `db:"amount" json:"amount"`

	// Currency is the 3 letter ISO currency code in lowercase
	Currency string `db:"currency" json:"currency"`

	types.BaseModel
}

// Slug returns the catalog lookup key in "tier_cycle" form, e.g. "pro_monthly".
func (p *Plan) Slug() string {
	return fmt.Sprintf("%s_%s", p.Tier, p.Cycle)
}
