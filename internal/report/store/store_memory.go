package store

import (
	"context"
	"time"

	"gatepass/internal/directory"
	passstore "gatepass/internal/pass/store"
	"gatepass/internal/report/models"
	scanstore "gatepass/internal/scan/store"
	id "gatepass/pkg/domain"
)

// MemoryQueries composes the in-memory stores into the report joins. The SQL
// implementation pushes the same joins into the database; this one walks the
// residence membership instead.
type MemoryQueries struct {
	residents directory.Store
	passes    passstore.Store
	scans     scanstore.Store
}

func NewMemoryQueries(residents directory.Store, passes passstore.Store, scans scanstore.Store) *MemoryQueries {
	return &MemoryQueries{residents: residents, passes: passes, scans: scans}
}

func (q *MemoryQueries) PassesByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.PassRecord, error) {
	residentIDs, err := q.residents.ListResidentIDs(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	var out []models.PassRecord
	for _, residentID := range residentIDs {
		resident, err := q.residents.FindResidentByID(ctx, residentID)
		if err != nil {
			return nil, err
		}
		passes, err := q.passes.ListByResident(ctx, residentID)
		if err != nil {
			return nil, err
		}
		for _, pass := range passes {
			if pass.CreatedAt.Before(from) || pass.CreatedAt.After(to) {
				continue
			}
			out = append(out, models.PassRecord{
				PassID:       pass.ID,
				ResidentID:   pass.ResidentID,
				ResidentName: resident.Name,
				VisitorName:  pass.VisitorName,
				VisitorPhone: pass.VisitorPhone,
				CreatedAt:    pass.CreatedAt,
				ExpiresAt:    pass.ExpiresAt,
			})
		}
	}
	return out, nil
}

func (q *MemoryQueries) ScansByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.ScanRecord, error) {
	residentIDs, err := q.residents.ListResidentIDs(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	members := make(map[id.ResidentID]bool, len(residentIDs))
	for _, residentID := range residentIDs {
		members[residentID] = true
	}

	scans, err := q.scans.ListInWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []models.ScanRecord
	for _, scan := range scans {
		pass, err := q.passes.FindByID(ctx, scan.PassID)
		if err != nil {
			// The pass may have been deleted after the decision; skip the
			// orphaned row rather than failing the whole report.
			continue
		}
		if !members[pass.ResidentID] {
			continue
		}
		out = append(out, models.ScanRecord{
			ScanID:      scan.ID,
			PassID:      scan.PassID,
			GuardID:     scan.GuardID,
			ResidentID:  pass.ResidentID,
			VisitorName: pass.VisitorName,
			Approved:    scan.Confirmed != nil && *scan.Confirmed,
			ScannedAt:   scan.ScannedAt,
		})
	}
	return out, nil
}

func (q *MemoryQueries) ListPasses(ctx context.Context, offset, limit int) (models.PassPage, error) {
	total, err := q.passes.Count(ctx)
	if err != nil {
		return models.PassPage{}, err
	}
	passes, err := q.passes.List(ctx, offset, limit)
	if err != nil {
		return models.PassPage{}, err
	}
	page := models.PassPage{Total: total, Offset: offset, Passes: make([]models.PassRecord, 0, len(passes))}
	for _, pass := range passes {
		record := models.PassRecord{
			PassID:       pass.ID,
			ResidentID:   pass.ResidentID,
			VisitorName:  pass.VisitorName,
			VisitorPhone: pass.VisitorPhone,
			CreatedAt:    pass.CreatedAt,
			ExpiresAt:    pass.ExpiresAt,
		}
		if resident, err := q.residents.FindResidentByID(ctx, pass.ResidentID); err == nil {
			record.ResidentName = resident.Name
		}
		page.Passes = append(page.Passes, record)
	}
	return page, nil
}

func (q *MemoryQueries) Statistics(ctx context.Context, now time.Time) (models.Statistics, error) {
	total, err := q.passes.Count(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	active, err := q.passes.CountActive(ctx, now)
	if err != nil {
		return models.Statistics{}, err
	}
	scans, err := q.scans.CountDecided(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return models.Statistics{TotalPasses: total, ActivePasses: active, TotalScans: scans}, nil
}
