package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

const scheduleColumns = `id, subject_id, subscription_id, payment_gateway,
	gateway_ref, gateway_ref_kind, starts_at, plan_id, quantity,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

type scheduleRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewScheduleRepository(client postgres.IClient, logger *logger.Logger) subscription.ScheduleRepository {
	return &scheduleRepository{
		client: client,
		logger: logger,
	}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *subscription.SubscriptionSchedule) error {
	r.logger.Debugw("creating subscription schedule",
		"schedule_id", schedule.ID,
		"subscription_id", schedule.SubscriptionID)

	_, err := r.client.DB().NamedExecContext(ctx, `
		INSERT INTO subscription_schedules (`+scheduleColumns+`)
		VALUES (:id, :subject_id, :subscription_id, :payment_gateway,
		        :gateway_ref, :gateway_ref_kind, :starts_at, :plan_id, :quantity,
		        :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		schedule)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription schedule").
			WithReportableDetails(map[string]any{"schedule_id": schedule.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*subscription.SubscriptionSchedule, error) {
	var schedule subscription.SubscriptionSchedule
	err := r.client.DB().GetContext(ctx, &schedule, `
		SELECT `+scheduleColumns+`
		FROM subscription_schedules
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("schedule not found").
				WithReportableDetails(map[string]any{"schedule_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get schedule").
			Mark(ierr.ErrDatabase)
	}
	return &schedule, nil
}

func (r *scheduleRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*subscription.SubscriptionSchedule, error) {
	var schedule subscription.SubscriptionSchedule
	err := r.client.DB().GetContext(ctx, &schedule, `
		SELECT `+scheduleColumns+`
		FROM subscription_schedules
		WHERE subscription_id = $1 AND tenant_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`,
		subscriptionID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("no live schedule for subscription").
				WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get schedule by subscription").
			Mark(ierr.ErrDatabase)
	}
	return &schedule, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.client.DB().ExecContext(ctx, `
		UPDATE subscription_schedules
		SET status = $1, updated_at = NOW(), updated_by = $2
		WHERE id = $3 AND tenant_id = $4`,
		types.StatusDeleted, types.GetUserID(ctx), id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete schedule").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("schedule not found").
			WithReportableDetails(map[string]any{"schedule_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
