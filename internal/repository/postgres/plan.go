package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

const planCacheTTL = 5 * time.Minute

// Plans are immutable to this service, which makes them the one safe thing
// to cache.
type planRepository struct {
	client postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

func NewPlanRepository(client postgres.IClient, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{
		client: client,
		logger: logger,
		cache:  cache,
	}
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	cacheKey := fmt.Sprintf("plan:%s:%s", types.GetTenantID(ctx), id)
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	var p plan.Plan
	err := r.client.DB().GetContext(ctx, &p, `
		SELECT id, tier, cycle, gateway_price_ref, amount, currency,
		       tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("Plan with ID %s was not found", id).
				WithReportableDetails(map[string]any{"plan_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cacheKey, &p, planCacheTTL)
	return &p, nil
}

func (r *planRepository) GetBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	cacheKey := fmt.Sprintf("plan:slug:%s:%s", types.GetTenantID(ctx), slug)
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	var p plan.Plan
	err := r.client.DB().GetContext(ctx, &p, `
		SELECT id, tier, cycle, gateway_price_ref, amount, currency,
		       tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE tier || '_' || cycle = $1 AND tenant_id = $2 AND status = $3`,
		slug, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("No plan matches slug %s", slug).
				WithReportableDetails(map[string]any{"slug": slug}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan by slug").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cacheKey, &p, planCacheTTL)
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	var plans []*plan.Plan
	err := r.client.DB().SelectContext(ctx, &plans, `
		SELECT id, tier, cycle, gateway_price_ref, amount, currency,
		       tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE tenant_id = $1 AND status = $2
		ORDER BY tier, cycle`,
		types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
