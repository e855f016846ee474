package gateway

import (
	"testing"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetUnknownGateway(t *testing.T) {
	registry := NewRegistry()

	client, err := registry.Get(types.PaymentGatewayTypeStripe)

	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

type fakeClient struct{ Client }

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	stub := &fakeClient{}
	registry.Register(types.PaymentGatewayTypeStripe, stub)

	client, err := registry.Get(types.PaymentGatewayTypeStripe)

	require.NoError(t, err)
	assert.Equal(t, stub, client)
}

func TestCodeOf(t *testing.T) {
	gerr := &Error{Code: ErrCodeInsufficientFunds, Message: "card declined"}
	wrapped := ierr.WithError(gerr).
		WithHint("payment failed").
		Mark(ierr.ErrGateway)

	assert.Equal(t, ErrCodeInsufficientFunds, CodeOf(wrapped))
	assert.Equal(t, ErrCodeGeneric, CodeOf(ierr.NewError("boom").Mark(ierr.ErrInternal)))
}
