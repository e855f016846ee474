package subscription

import (
	"context"

	"github.com/billforge/billforge/internal/types"
)

// Repository provides access to the subscription store
type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, subscription *Subscription) error
	Delete(ctx context.Context, id string) error

	// GetCurrentForSubject returns the subject's live subscription or
	// ierr.ErrNotFound when none exists.
	GetCurrentForSubject(ctx context.Context, subjectID string) (*Subscription, error)

	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
}

// ScheduleRepository provides access to the subscription schedule store
type ScheduleRepository interface {
	// Create creates a new subscription schedule
	Create(ctx context.Context, schedule *SubscriptionSchedule) error

	// Get retrieves a subscription schedule by ID
	Get(ctx context.Context, id string) (*SubscriptionSchedule, error)

	// GetBySubscriptionID gets the live schedule for a subscription or
	// ierr.ErrNotFound when none exists
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*SubscriptionSchedule, error)

	// Delete deletes a subscription schedule
	Delete(ctx context.Context, id string) error
}
