package plan

import (
	"context"
)

// Repository provides read access to the plan catalog
type Repository interface {
	// Get retrieves a plan by ID
	Get(ctx context.Context, id string) (*Plan, error)

	// GetBySlug retrieves a plan by its "tier_cycle" slug
	GetBySlug(ctx context.Context, slug string) (*Plan, error)

	// List returns all published plans
	List(ctx context.Context) ([]*Plan, error)
}
