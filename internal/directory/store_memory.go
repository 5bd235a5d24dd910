package directory

import (
	"context"
	"sync"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu         sync.RWMutex
	residents  map[id.ResidentID]Resident
	guards     map[id.GuardID]Guard
	residences map[id.ResidenceID]Residence
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		residents:  make(map[id.ResidentID]Resident),
		guards:     make(map[id.GuardID]Guard),
		residences: make(map[id.ResidenceID]Residence),
	}
}

func (s *InMemoryStore) SaveResident(_ context.Context, resident Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.residents[resident.ID] = resident
	return nil
}

func (s *InMemoryStore) FindResidentByID(_ context.Context, residentID id.ResidentID) (Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residents[residentID]; ok {
		return r, nil
	}
	return Resident{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindResidentByPhone(_ context.Context, phone string) (Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.residents {
		if r.PhoneNumber == phone {
			return r, nil
		}
	}
	return Resident{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListResidentIDs(_ context.Context, residenceID id.ResidenceID) ([]id.ResidentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.ResidentID
	for _, r := range s.residents {
		if r.ResidenceID == residenceID {
			out = append(out, r.ID)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SaveGuard(_ context.Context, guard Guard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards[guard.ID] = guard
	return nil
}

func (s *InMemoryStore) FindGuardByID(_ context.Context, guardID id.GuardID) (Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.guards[guardID]; ok {
		return g, nil
	}
	return Guard{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindGuardByPhone(_ context.Context, phone string) (Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guards {
		if g.PhoneNumber == phone {
			return g, nil
		}
	}
	return Guard{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListGuardIDs(_ context.Context, residenceID id.ResidenceID) ([]id.GuardID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.GuardID
	for _, g := range s.guards {
		if g.ResidenceID == residenceID {
			out = append(out, g.ID)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SaveResidence(_ context.Context, residence Residence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.residences[residence.ID] = residence
	return nil
}

func (s *InMemoryStore) FindResidenceByID(_ context.Context, residenceID id.ResidenceID) (Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residences[residenceID]; ok {
		return r, nil
	}
	return Residence{}, sentinel.ErrNotFound
}
