package subject

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Subject is the billing subject a subscription belongs to. The core reads
// and writes only the narrow billing surface: payment instrument, gateway
// customer ref and the local balance mirror.
type Subject struct {
	// ID is the unique identifier for the subject
	ID string `db:"id" json:"id"`

	// Email is the billing email for the subject
	Email string `db:"email" json:"email"`

	// DefaultPaymentMethodID is the gateway reference of the stored default
	// payment instrument, empty when the subject has none on file
	DefaultPaymentMethodID string `db:"default_payment_method_id" json:"default_payment_method_id"`

	// GatewayCustomerRef is the opaque customer id on the payment gateway,
	// empty until a remote customer is created
	GatewayCustomerRef string `db:"gateway_customer_ref" json:"gateway_customer_ref"`

	// Balance is the local mirror of the subject's credit/debit balance.
	// Negative values are credit owed to the subject.
	Balance decimal.Decimal `db:"balance" json:"balance"`

	types.BaseModel
}

// HasPaymentMethod returns true when a default payment instrument is on file.
func (s *Subject) HasPaymentMethod() bool {
	return s.DefaultPaymentMethodID != ""
}

// HasGatewayCustomer returns true when a remote customer record exists.
func (s *Subject) HasGatewayCustomer() bool {
	return s.GatewayCustomerRef != ""
}
