package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps passes in process. The phone index under the same mutex
// gives it the same conditional-create semantics as the unique index in
// PostgreSQL.
type InMemoryStore struct {
	mu      sync.RWMutex
	passes  map[id.PassID]models.VisitorPass
	byPhone map[string]id.PassID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		passes:  make(map[id.PassID]models.VisitorPass),
		byPhone: make(map[string]id.PassID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, pass models.VisitorPass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byPhone[pass.VisitorPhone]; taken {
		return sentinel.ErrConflict
	}
	s.passes[pass.ID] = pass
	s.byPhone[pass.VisitorPhone] = pass.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, passID id.PassID) (models.VisitorPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pass, ok := s.passes[passID]; ok {
		return pass, nil
	}
	return models.VisitorPass{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, pass models.VisitorPass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.passes[pass.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if holder, taken := s.byPhone[pass.VisitorPhone]; taken && holder != pass.ID {
		return sentinel.ErrConflict
	}
	if existing.VisitorPhone != pass.VisitorPhone {
		delete(s.byPhone, existing.VisitorPhone)
		s.byPhone[pass.VisitorPhone] = pass.ID
	}
	s.passes[pass.ID] = pass
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, passID id.PassID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pass, ok := s.passes[passID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.passes, passID)
	delete(s.byPhone, pass.VisitorPhone)
	return nil
}

func (s *InMemoryStore) ListByResident(_ context.Context, residentID id.ResidentID) ([]models.VisitorPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.VisitorPass
	for _, pass := range s.passes {
		if pass.ResidentID == residentID {
			out = append(out, pass)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, offset, limit int) ([]models.VisitorPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.VisitorPass, 0, len(s.passes))
	for _, pass := range s.passes {
		all = append(all, pass)
	}
	sortByCreatedAt(all)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passes), nil
}

func (s *InMemoryStore) CountActive(_ context.Context, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, pass := range s.passes {
		if !pass.IsExpired(now) {
			active++
		}
	}
	return active, nil
}

func sortByCreatedAt(passes []models.VisitorPass) {
	sort.Slice(passes, func(i, j int) bool {
		return passes[i].CreatedAt.Before(passes[j].CreatedAt)
	})
}
