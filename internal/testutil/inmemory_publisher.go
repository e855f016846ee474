package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/types"
)

// InMemoryEventPublisher captures published events for assertions
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.WebhookEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events: make([]*types.WebhookEvent, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.WebhookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns all captured events in publish order
func (p *InMemoryEventPublisher) Events() []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.WebhookEvent{}, p.events...)
}

// EventNames returns the names of all captured events in publish order
func (p *InMemoryEventPublisher) EventNames() []types.WebhookEventName {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]types.WebhookEventName, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.EventName)
	}
	return names
}

// Clear drops all captured events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = p.events[:0]
}
