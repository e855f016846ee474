package service

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subject"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// BalanceLedger reconciles the subject's balance between the local mirror
// and the gateway. Credits flow one way only: ApplyCredit pushes a negative
// adjustment remotely, PullRemoteBalance syncs a negative remote balance
// down. The local balance is never pushed to the gateway.
type BalanceLedger interface {
	// ApplyCredit grants the subject a credit at the gateway, creating the
	// remote customer record first when none exists.
	ApplyCredit(ctx context.Context, subj *subject.Subject, client gateway.Client, amount decimal.Decimal, currency string) error

	// ClearLocal zeroes the local balance mirror after a credit has been
	// consumed by a subscription start.
	ClearLocal(ctx context.Context, subj *subject.Subject) error

	// PullRemoteBalance reads the gateway balance and, when negative, folds
	// it into the local mirror.
	PullRemoteBalance(ctx context.Context, subj *subject.Subject, client gateway.Client) error

	// EnsureGatewayCustomer returns the subject's remote customer ref,
	// creating the remote record and persisting the ref when absent.
	EnsureGatewayCustomer(ctx context.Context, subj *subject.Subject, client gateway.Client) (string, error)
}

type balanceLedger struct {
	ServiceParams
}

// NewBalanceLedger creates a gateway-backed balance ledger
func NewBalanceLedger(params ServiceParams) BalanceLedger {
	return &balanceLedger{ServiceParams: params}
}

func (l *balanceLedger) EnsureGatewayCustomer(ctx context.Context, subj *subject.Subject, client gateway.Client) (string, error) {
	if subj.HasGatewayCustomer() {
		return subj.GatewayCustomerRef, nil
	}

	customer, err := client.CreateCustomer(ctx, subj.Email, types.Metadata{
		"subject_id": subj.ID,
	})
	if err != nil {
		return "", err
	}

	subj.GatewayCustomerRef = customer.Ref
	if err := l.SubjectRepo.Update(ctx, subj); err != nil {
		return "", ierr.WithError(err).
			WithHint("Remote customer was created but the reference could not be saved").
			WithReportableDetails(map[string]any{
				"subject_id":   subj.ID,
				"customer_ref": customer.Ref,
			}).
			Mark(ierr.ErrDatabase)
	}

	l.Logger.Infow("created gateway customer",
		"subject_id", subj.ID,
		"customer_ref", customer.Ref)

	return customer.Ref, nil
}

func (l *balanceLedger) ApplyCredit(ctx context.Context, subj *subject.Subject, client gateway.Client, amount decimal.Decimal, currency string) error {
	if !amount.IsPositive() {
		return nil
	}

	customerRef, err := l.EnsureGatewayCustomer(ctx, subj, client)
	if err != nil {
		return err
	}

	// Negative amount = credit toward the next invoice
	txn, err := client.CreateBalanceTransaction(ctx, customerRef, amount.Neg(), currency)
	if err != nil {
		return err
	}

	l.Logger.Infow("applied gateway credit",
		"subject_id", subj.ID,
		"transaction_ref", txn.Ref,
		"amount", txn.Amount)

	return nil
}

func (l *balanceLedger) ClearLocal(ctx context.Context, subj *subject.Subject) error {
	if subj.Balance.IsZero() {
		return nil
	}

	subj.Balance = decimal.Zero
	return l.SubjectRepo.Update(ctx, subj)
}

func (l *balanceLedger) PullRemoteBalance(ctx context.Context, subj *subject.Subject, client gateway.Client) error {
	if !subj.HasGatewayCustomer() {
		return nil
	}

	customer, err := client.GetCustomer(ctx, subj.GatewayCustomerRef)
	if err != nil {
		return err
	}

	if !customer.Balance.IsNegative() {
		return nil
	}

	subj.Balance = subj.Balance.Add(customer.Balance)
	if err := l.SubjectRepo.Update(ctx, subj); err != nil {
		return err
	}

	l.Logger.Infow("pulled remote balance into local mirror",
		"subject_id", subj.ID,
		"remote_balance", customer.Balance,
		"local_balance", subj.Balance)

	return nil
}
