package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/checkout/internal/publisher"
	"github.com/flexprice/checkout/internal/types"
)

// InMemorySessionPublisher records session events for assertions
type InMemorySessionPublisher struct {
	mu     sync.Mutex
	events []*publisher.SessionEvent
}

var _ publisher.SessionEventPublisher = (*InMemorySessionPublisher)(nil)

func NewInMemorySessionPublisher() *InMemorySessionPublisher {
	return &InMemorySessionPublisher{}
}

func (p *InMemorySessionPublisher) Publish(ctx context.Context, event *publisher.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := *event
	p.events = append(p.events, &copied)
	return nil
}

func (p *InMemorySessionPublisher) Events() []*publisher.SessionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*publisher.SessionEvent(nil), p.events...)
}

// States returns the visited states of one session in publish order
func (p *InMemorySessionPublisher) States(sessionID string) []types.PaymentSessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	states := make([]types.PaymentSessionState, 0, len(p.events))
	for _, e := range p.events {
		if e.SessionID == sessionID {
			states = append(states, e.State)
		}
	}
	return states
}

func (p *InMemorySessionPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
