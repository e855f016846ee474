package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; ok {
		return ierr.NewError("subscription already exists").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copy := *sub
	s.subscriptions[sub.ID] = &copy
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, ierr.NewError("subscription not found").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copy := *sub
	return &copy, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; !ok {
		return ierr.NewError("subscription not found").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrNotFound)
	}

	copy := *sub
	s.subscriptions[sub.ID] = &copy
	return nil
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[id]; !ok {
		return ierr.NewError("subscription not found").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrNotFound)
	}

	delete(s.subscriptions, id)
	return nil
}

func (s *InMemorySubscriptionStore) GetCurrentForSubject(ctx context.Context, subjectID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscriptions {
		if sub.SubjectID == subjectID && sub.IsLive() {
			copy := *sub
			return &copy, nil
		}
	}

	return nil, ierr.NewError("no live subscription for subject").
		WithReportableDetails(map[string]any{"subject_id": subjectID}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if filter != nil {
			if filter.SubjectID != "" && sub.SubjectID != filter.SubjectID {
				continue
			}
			if filter.PlanID != "" && sub.PlanID != filter.PlanID {
				continue
			}
			if len(filter.Statuses) > 0 && !lo.Contains(filter.Statuses, sub.SubscriptionStatus) {
				continue
			}
		}
		copy := *sub
		result = append(result, &copy)
	}
	return result, nil
}

// Clear removes all subscriptions
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}
