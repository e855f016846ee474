package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/subject"
	ierr "github.com/billforge/billforge/internal/errors"
)

// InMemorySubjectStore implements subject.Repository
type InMemorySubjectStore struct {
	mu       sync.RWMutex
	subjects map[string]*subject.Subject
}

func NewInMemorySubjectStore() *InMemorySubjectStore {
	return &InMemorySubjectStore{
		subjects: make(map[string]*subject.Subject),
	}
}

// Add seeds a subject, used by test setup
func (s *InMemorySubjectStore) Add(subj *subject.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *subj
	s.subjects[subj.ID] = &copy
}

func (s *InMemorySubjectStore) Get(ctx context.Context, id string) (*subject.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subj, ok := s.subjects[id]
	if !ok {
		return nil, ierr.NewError("subject not found").
			WithReportableDetails(map[string]any{"subject_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copy := *subj
	return &copy, nil
}

func (s *InMemorySubjectStore) Update(ctx context.Context, subj *subject.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[subj.ID]; !ok {
		return ierr.NewError("subject not found").
			WithReportableDetails(map[string]any{"subject_id": subj.ID}).
			Mark(ierr.ErrNotFound)
	}

	copy := *subj
	s.subjects[subj.ID] = &copy
	return nil
}

// Clear removes all subjects
func (s *InMemorySubjectStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = make(map[string]*subject.Subject)
}
