package audit

import (
	"context"
	"sync"

	id "gatepass/pkg/domain"
)

// InMemoryStore keeps events in process. It backs tests and single-node runs
// where no broker is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByPass returns the recorded events for a pass, oldest first.
func (s *InMemoryStore) ListByPass(_ context.Context, passID id.PassID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.PassID == passID {
			out = append(out, e)
		}
	}
	return out, nil
}
