package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

// Add seeds a plan, used by test setup
func (s *InMemoryPlanStore) Add(p *plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *p
	s.plans[p.ID] = &copy
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, ierr.NewError("plan not found").
			WithReportableDetails(map[string]any{"plan_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copy := *p
	return &copy, nil
}

func (s *InMemoryPlanStore) GetBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Slug() == slug {
			copy := *p
			return &copy, nil
		}
	}

	return nil, ierr.NewError("plan not found").
		WithReportableDetails(map[string]any{"slug": slug}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*plan.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

// Clear removes all plans
func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*plan.Plan)
}
