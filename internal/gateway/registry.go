package gateway

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Registry maps a payment gateway enum to its Client implementation. The
// mapping is fixed at construction time; provider selection is a typed
// lookup, never a dynamic name resolution.
type Registry struct {
	clients map[types.PaymentGatewayType]Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[types.PaymentGatewayType]Client),
	}
}

// Register binds a gateway type to its client. Later registrations replace
// earlier ones, which tests use to install stubs.
func (r *Registry) Register(gatewayType types.PaymentGatewayType, client Client) {
	r.clients[gatewayType] = client
}

// Get returns the client for a gateway type
func (r *Registry) Get(gatewayType types.PaymentGatewayType) (Client, error) {
	client, ok := r.clients[gatewayType]
	if !ok {
		return nil, ierr.NewError("unsupported payment gateway").
			WithHintf("No client registered for gateway '%s'", gatewayType).
			WithReportableDetails(map[string]any{
				"payment_gateway": gatewayType,
			}).
			Mark(ierr.ErrValidation)
	}
	return client, nil
}
