package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
)

// InMemoryScheduleStore implements subscription.ScheduleRepository
type InMemoryScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]*subscription.SubscriptionSchedule
}

func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{
		schedules: make(map[string]*subscription.SubscriptionSchedule),
	}
}

func (s *InMemoryScheduleStore) Create(ctx context.Context, schedule *subscription.SubscriptionSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[schedule.ID]; ok {
		return ierr.NewError("schedule already exists").
			WithReportableDetails(map[string]any{"schedule_id": schedule.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copy := *schedule
	s.schedules[schedule.ID] = &copy
	return nil
}

func (s *InMemoryScheduleStore) Get(ctx context.Context, id string) (*subscription.SubscriptionSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return nil, ierr.NewError("schedule not found").
			WithReportableDetails(map[string]any{"schedule_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copy := *schedule
	return &copy, nil
}

func (s *InMemoryScheduleStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*subscription.SubscriptionSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, schedule := range s.schedules {
		if schedule.SubscriptionID == subscriptionID {
			copy := *schedule
			return &copy, nil
		}
	}

	return nil, ierr.NewError("no live schedule for subscription").
		WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryScheduleStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return ierr.NewError("schedule not found").
			WithReportableDetails(map[string]any{"schedule_id": id}).
			Mark(ierr.ErrNotFound)
	}

	delete(s.schedules, id)
	return nil
}

// Count returns the number of live schedules, used by invariant checks
func (s *InMemoryScheduleStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedules)
}

// Clear removes all schedules
func (s *InMemoryScheduleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = make(map[string]*subscription.SubscriptionSchedule)
}
