package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

const subscriptionColumns = `id, subject_id, plan_id, quantity, payment_gateway,
	gateway_subscription_ref, subscription_status, starts_at, trial_ends_at,
	ends_at, next_plan_id, swapped,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

type subscriptionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		client: client,
		logger: logger,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"subject_id", sub.SubjectID)

	_, err := r.client.DB().NamedExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (:id, :subject_id, :plan_id, :quantity, :payment_gateway,
		        :gateway_subscription_ref, :subscription_status, :starts_at,
		        :trial_ends_at, :ends_at, :next_plan_id, :swapped,
		        :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := r.client.DB().GetContext(ctx, &sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("Subscription with ID %s was not found", id).
				WithReportableDetails(map[string]any{"subscription_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	result, err := r.client.DB().ExecContext(ctx, `
		UPDATE subscriptions
		SET plan_id = $1,
		    quantity = $2,
		    gateway_subscription_ref = $3,
		    subscription_status = $4,
		    starts_at = $5,
		    trial_ends_at = $6,
		    ends_at = $7,
		    next_plan_id = $8,
		    swapped = $9,
		    updated_at = NOW(),
		    updated_by = $10
		WHERE id = $11 AND tenant_id = $12`,
		sub.PlanID, sub.Quantity, sub.GatewaySubscriptionRef,
		sub.SubscriptionStatus, sub.StartsAt, sub.TrialEndsAt, sub.EndsAt,
		sub.NextPlanID, sub.Swapped, types.GetUserID(ctx),
		sub.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("subscription not found").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.client.DB().ExecContext(ctx, `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW(), updated_by = $2
		WHERE id = $3 AND tenant_id = $4`,
		types.StatusDeleted, types.GetUserID(ctx), id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete subscription").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("subscription not found").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) GetCurrentForSubject(ctx context.Context, subjectID string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := r.client.DB().GetContext(ctx, &sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE subject_id = $1
		  AND subscription_status IN ($2, $3, $4)
		  AND tenant_id = $5 AND status = $6
		ORDER BY created_at DESC
		LIMIT 1`,
		subjectID,
		types.SubscriptionStatusTrialing, types.SubscriptionStatusActive,
		types.SubscriptionStatusGracePeriod,
		types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("no live subscription for subject").
				WithReportableDetails(map[string]any{"subject_id": subjectID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get current subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = ? AND status = ?`
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if filter != nil {
		if filter.SubjectID != "" {
			query += " AND subject_id = ?"
			args = append(args, filter.SubjectID)
		}
		if filter.PlanID != "" {
			query += " AND plan_id = ?"
			args = append(args, filter.PlanID)
		}
		if len(filter.Statuses) > 0 {
			query += " AND subscription_status IN (?" + strings.Repeat(", ?", len(filter.Statuses)-1) + ")"
			args = append(args, lo.Map(filter.Statuses, func(s types.SubscriptionStatus, _ int) any {
				return s
			})...)
		}
	}
	query += " ORDER BY created_at DESC"

	var subs []*subscription.Subscription
	err := r.client.DB().SelectContext(ctx, &subs, r.client.DB().Rebind(query), args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}
