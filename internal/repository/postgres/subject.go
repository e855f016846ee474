package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/billforge/billforge/internal/domain/subject"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

type subjectRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewSubjectRepository(client postgres.IClient, logger *logger.Logger) subject.Repository {
	return &subjectRepository{
		client: client,
		logger: logger,
	}
}

func (r *subjectRepository) Get(ctx context.Context, id string) (*subject.Subject, error) {
	var subj subject.Subject
	err := r.client.DB().GetContext(ctx, &subj, `
		SELECT id, email, default_payment_method_id, gateway_customer_ref, balance,
		       tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM subjects
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subject not found").
				WithHintf("Subject with ID %s was not found", id).
				WithReportableDetails(map[string]any{"subject_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subject").
			Mark(ierr.ErrDatabase)
	}
	return &subj, nil
}

func (r *subjectRepository) Update(ctx context.Context, subj *subject.Subject) error {
	r.logger.Debugw("updating subject", "subject_id", subj.ID)

	result, err := r.client.DB().ExecContext(ctx, `
		UPDATE subjects
		SET email = $1,
		    default_payment_method_id = $2,
		    gateway_customer_ref = $3,
		    balance = $4,
		    updated_at = NOW(),
		    updated_by = $5
		WHERE id = $6 AND tenant_id = $7`,
		subj.Email, subj.DefaultPaymentMethodID, subj.GatewayCustomerRef,
		subj.Balance, types.GetUserID(ctx), subj.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subject").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("subject not found").
			WithReportableDetails(map[string]any{"subject_id": subj.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
