// Package service aggregates residence-scoped activity into reports. All
// report reads are pure; nothing here writes.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"gatepass/internal/directory"
	"gatepass/internal/report/models"
	"gatepass/internal/report/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

var tracer = otel.Tracer("gatepass/report")

// defaultWindow applies when the caller gives no range.
const defaultWindow = 7 * 24 * time.Hour

// maxPageSize caps one page of the pass roster.
const maxPageSize = 100

// Service builds the rollups behind the report endpoints.
type Service struct {
	queries    store.Queries
	residences directory.Store
}

func NewService(queries store.Queries, residences directory.Store) *Service {
	return &Service{queries: queries, residences: residences}
}

// Aggregate produces one report for the residence over [from, to]. A zero
// range defaults to the trailing week. The pass and scan listings are fetched
// concurrently; the summary is derived from both.
func (s *Service) Aggregate(ctx context.Context, residenceID id.ResidenceID, kind models.ReportKind, from, to time.Time) (models.Report, error) {
	now := requestcontext.Now(ctx)
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-defaultWindow)
	}
	if !from.Before(to) {
		return models.Report{}, dErrors.New(dErrors.CodeValidation, "report range start must precede end")
	}

	ctx, span := tracer.Start(ctx, "report.Aggregate", trace.WithAttributes(
		attribute.String("residence.id", residenceID.String()),
		attribute.String("report.kind", string(kind)),
	))
	defer span.End()

	if _, err := s.residences.FindResidenceByID(ctx, residenceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Report{}, dErrors.New(dErrors.CodeNotFound, "residence not found")
		}
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up residence")
	}

	var (
		passes []models.PassRecord
		scans  []models.ScanRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		passes, err = s.queries.PassesByResidence(gctx, residenceID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		scans, err = s.queries.ScansByResidence(gctx, residenceID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather report data")
	}

	report := models.Report{
		Kind:        kind,
		ResidenceID: residenceID.String(),
		From:        from,
		To:          to,
		GeneratedAt: now,
	}
	switch kind {
	case models.KindUser:
		report.Summary, report.Details = buildUser(passes)
	case models.KindQRCode:
		report.Summary, report.Details = buildQRCode(passes, scans, now)
	case models.KindActivity:
		report.Summary, report.Details = buildActivity(scans, from, to)
	case models.KindSecurity:
		report.Summary, report.Details = buildSecurity(scans)
	default:
		return models.Report{}, dErrors.New(dErrors.CodeInvalidInput, "invalid report kind")
	}
	return report, nil
}

// Passes pages through every issued pass, oldest first, joined with the
// issuing resident. The security desk uses it as the gate roster.
func (s *Service) Passes(ctx context.Context, offset, limit int) (models.PassPage, error) {
	if offset < 0 || limit < 0 {
		return models.PassPage{}, dErrors.New(dErrors.CodeValidation, "offset and limit must not be negative")
	}
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	page, err := s.queries.ListPasses(ctx, offset, limit)
	if err != nil {
		return models.PassPage{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list passes")
	}
	return page, nil
}

// Statistics returns the global counters.
func (s *Service) Statistics(ctx context.Context) (models.Statistics, error) {
	stats, err := s.queries.Statistics(ctx, requestcontext.Now(ctx))
	if err != nil {
		return models.Statistics{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute statistics")
	}
	return stats, nil
}

// buildUser tallies issuance per resident.
func buildUser(passes []models.PassRecord) (models.Summary, []models.Detail) {
	perResident := make(map[id.ResidentID]*models.Detail)
	visitors := make(map[string]bool)
	var order []id.ResidentID
	for _, pass := range passes {
		visitors[pass.VisitorPhone] = true
		if detail, ok := perResident[pass.ResidentID]; ok {
			detail.Count++
			continue
		}
		perResident[pass.ResidentID] = &models.Detail{ResidentName: pass.ResidentName, Count: 1}
		order = append(order, pass.ResidentID)
	}
	details := make([]models.Detail, 0, len(order))
	for _, residentID := range order {
		details = append(details, *perResident[residentID])
	}
	return models.Summary{
		TotalPasses:    len(passes),
		UniqueVisitors: len(visitors),
	}, details
}

// buildQRCode tallies pass usage: how many issued passes were ever decided.
func buildQRCode(passes []models.PassRecord, scans []models.ScanRecord, now time.Time) (models.Summary, []models.Detail) {
	decided := make(map[id.PassID]bool, len(scans))
	for _, scan := range scans {
		decided[scan.PassID] = true
	}
	var active, used int
	details := make([]models.Detail, 0, len(passes))
	for _, pass := range passes {
		if now.Before(pass.ExpiresAt) {
			active++
		}
		if decided[pass.PassID] {
			used++
		}
		details = append(details, models.Detail{
			VisitorName:  pass.VisitorName,
			ResidentName: pass.ResidentName,
			PassID:       pass.PassID.String(),
		})
	}
	return models.Summary{
		TotalPasses:  len(passes),
		ActivePasses: active,
		TotalScans:   used,
	}, details
}

// buildActivity tallies gate traffic over the window.
func buildActivity(scans []models.ScanRecord, from, to time.Time) (models.Summary, []models.Detail) {
	var approved, denied int
	perHour := make(map[int]int)
	details := make([]models.Detail, 0, len(scans))
	for _, scan := range scans {
		if scan.Approved {
			approved++
		} else {
			denied++
		}
		perHour[scan.ScannedAt.Hour()]++
		at := scan.ScannedAt
		details = append(details, models.Detail{
			VisitorName: scan.VisitorName,
			PassID:      scan.PassID.String(),
			Decision:    decisionLabel(scan.Approved),
			ScannedAt:   &at,
		})
	}
	peak := 0
	for hour, count := range perHour {
		if count > perHour[peak] || (count == perHour[peak] && hour < peak) {
			peak = hour
		}
	}
	days := to.Sub(from).Hours() / 24
	if days < 1 {
		days = 1
	}
	return models.Summary{
		TotalScans:  len(scans),
		Approved:    approved,
		Denied:      denied,
		ScansPerDay: float64(len(scans)) / days,
		PeakHour:    peak,
	}, details
}

// buildSecurity lists denials and scores the approval ratio.
func buildSecurity(scans []models.ScanRecord) (models.Summary, []models.Detail) {
	var approved, denied int
	var details []models.Detail
	for _, scan := range scans {
		if scan.Approved {
			approved++
			continue
		}
		denied++
		at := scan.ScannedAt
		details = append(details, models.Detail{
			VisitorName: scan.VisitorName,
			PassID:      scan.PassID.String(),
			Decision:    decisionLabel(false),
			ScannedAt:   &at,
		})
	}
	score := 1.0
	if total := approved + denied; total > 0 {
		score = float64(approved) / float64(total)
	}
	return models.Summary{
		TotalScans:    approved + denied,
		Approved:      approved,
		Denied:        denied,
		SecurityScore: score,
	}, details
}

func decisionLabel(approved bool) string {
	if approved {
		return id.DecisionApproved.String()
	}
	return id.DecisionDenied.String()
}
