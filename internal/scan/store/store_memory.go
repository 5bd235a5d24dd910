package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatepass/internal/scan/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps scan decisions in process memory, for tests and local
// runs. The mutex makes insert-if-absent atomic, mirroring the partial unique
// index the SQL store relies on.
type InMemoryStore struct {
	mu       sync.Mutex
	scans    map[id.ScanID]models.ScanDecision
	decision map[id.PassID]id.ScanID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		scans:    make(map[id.ScanID]models.ScanDecision),
		decision: make(map[id.PassID]id.ScanID),
	}
}

func (s *InMemoryStore) InsertDecision(_ context.Context, scan models.ScanDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scan.Confirmed != nil {
		if _, exists := s.decision[scan.PassID]; exists {
			return sentinel.ErrConflict
		}
		s.decision[scan.PassID] = scan.ID
	}
	s.scans[scan.ID] = copyScan(scan)
	return nil
}

func (s *InMemoryStore) FindDecision(_ context.Context, passID id.PassID) (models.ScanDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scanID, ok := s.decision[passID]
	if !ok {
		return models.ScanDecision{}, sentinel.ErrNotFound
	}
	return copyScan(s.scans[scanID]), nil
}

func (s *InMemoryStore) ListByGuard(_ context.Context, guardID id.GuardID, limit int) ([]models.ScanDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScanDecision
	for _, scan := range s.scans {
		if scan.GuardID == guardID && scan.Confirmed != nil {
			out = append(out, copyScan(scan))
		}
	}
	// Newest first, as the history endpoint presents them.
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) StatsByGuard(_ context.Context, guardID id.GuardID) (models.GuardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.GuardStats{GuardID: guardID}
	for _, scan := range s.scans {
		if scan.GuardID != guardID || scan.Confirmed == nil {
			continue
		}
		stats.TotalScans++
		if *scan.Confirmed {
			stats.TotalApproved++
		} else {
			stats.TotalDenied++
		}
	}
	return stats, nil
}

func (s *InMemoryStore) ListInWindow(_ context.Context, from, to time.Time) ([]models.ScanDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScanDecision
	for _, scan := range s.scans {
		if scan.Confirmed == nil {
			continue
		}
		if scan.ScannedAt.Before(from) || scan.ScannedAt.After(to) {
			continue
		}
		out = append(out, copyScan(scan))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedAt.Before(out[j].ScannedAt) })
	return out, nil
}

func (s *InMemoryStore) CountDecided(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decision), nil
}

func copyScan(scan models.ScanDecision) models.ScanDecision {
	out := scan
	if scan.Confirmed != nil {
		v := *scan.Confirmed
		out.Confirmed = &v
	}
	return out
}
