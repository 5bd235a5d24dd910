// Package service implements the guard-side confirmation engine. The core
// guarantee is at-most-once: a pass admits exactly one terminal decision, and
// every confirm attempt after the first reports the decision that stands
// instead of recording a second one. The service never decides the race
// itself; the store's conditional insert does, and losing callers re-read the
// winner.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	passmodels "gatepass/internal/pass/models"
	"gatepass/internal/scan/metrics"
	"gatepass/internal/scan/models"
	"gatepass/internal/scan/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

var tracer = otel.Tracer("gatepass/scan")

// PassReader is the slice of the pass service the confirmation engine needs:
// the read-only validation preview.
type PassReader interface {
	Validate(ctx context.Context, passID id.PassID) (passmodels.ValidationResult, error)
}

// Service records guard decisions and serves per-guard history and stats.
type Service struct {
	scans    store.Store
	passes   PassReader
	auditlog *audit.Publisher
	metrics  *metrics.Metrics
}

func NewService(scans store.Store, passes PassReader, auditlog *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{scans: scans, passes: passes, auditlog: auditlog, metrics: m}
}

// Scan is the guard's preview of a pass. It delegates to the validation read
// and records nothing.
func (s *Service) Scan(ctx context.Context, passID id.PassID) (passmodels.ValidationResult, error) {
	return s.passes.Validate(ctx, passID)
}

// Confirm records the guard's terminal decision for a pass, at most once per
// pass across all guards.
//
// The sequence is read, insert, and on conflict one re-read: a decision
// already on file short-circuits to AlreadyDecided; otherwise the conditional
// insert either wins or collides with a concurrent winner, and a collision is
// resolved by reading the row that got there first. Validity is re-checked at
// decision time, so a pass that expired between preview and confirm is
// rejected rather than decided.
func (s *Service) Confirm(ctx context.Context, guardID id.GuardID, passID id.PassID, decision id.Decision) (models.ConfirmResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveConfirm(time.Since(start)) }()

	ctx, span := tracer.Start(ctx, "scan.Confirm", trace.WithAttributes(
		attribute.String("pass.id", passID.String()),
		attribute.String("decision", decision.String()),
	))
	defer span.End()

	// Validity comes before the duplicate check: an expired pass is rejected
	// even when an earlier decision predates the expiry.
	result, err := s.passes.Validate(ctx, passID)
	if err != nil {
		return models.ConfirmResult{}, err
	}
	if !result.Valid {
		s.metrics.IncrementDecision("rejected")
		switch result.Reason {
		case passmodels.ReasonNotFound:
			return models.ConfirmResult{}, dErrors.New(dErrors.CodeNotFound, "pass not found")
		default:
			return models.ConfirmResult{}, dErrors.Wrap(sentinel.ErrExpired, dErrors.CodeValidation, "pass has expired")
		}
	}

	if existing, err := s.scans.FindDecision(ctx, passID); err == nil {
		s.metrics.IncrementDecision("already_decided")
		return models.ConfirmResult{Outcome: models.OutcomeAlreadyDecided, Scan: existing}, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return models.ConfirmResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up decision")
	}

	scan := models.ScanDecision{
		ID:        id.NewScanID(),
		PassID:    passID,
		GuardID:   guardID,
		Confirmed: decision.Confirmed(),
		ScannedAt: requestcontext.Now(ctx),
	}
	err = s.scans.InsertDecision(ctx, scan)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost the race. The winner's row is committed, so one re-read
		// suffices; a second miss would mean the index lied.
		winner, findErr := s.scans.FindDecision(ctx, passID)
		if findErr != nil {
			return models.ConfirmResult{}, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to read winning decision")
		}
		s.metrics.IncrementDecision("already_decided")
		return models.ConfirmResult{Outcome: models.OutcomeAlreadyDecided, Scan: winner}, nil
	}
	if err != nil {
		return models.ConfirmResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
	}

	s.metrics.IncrementDecision(decision.String())
	s.emit(ctx, scan, decision)
	return models.ConfirmResult{Outcome: models.OutcomeRecorded, Scan: scan}, nil
}

// History returns the guard's confirmed decisions, newest first.
func (s *Service) History(ctx context.Context, guardID id.GuardID, limit int) ([]models.ScanDecision, error) {
	scans, err := s.scans.ListByGuard(ctx, guardID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list scan history")
	}
	return scans, nil
}

// Stats returns the guard's decision tally.
func (s *Service) Stats(ctx context.Context, guardID id.GuardID) (models.GuardStats, error) {
	stats, err := s.scans.StatsByGuard(ctx, guardID)
	if err != nil {
		return models.GuardStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute guard stats")
	}
	return stats, nil
}

func (s *Service) emit(ctx context.Context, scan models.ScanDecision, decision id.Decision) {
	action := audit.ActionAccessApproved
	if decision == id.DecisionDenied {
		action = audit.ActionAccessDenied
	}
	_ = s.auditlog.Emit(ctx, audit.Event{
		Action:    action,
		PassID:    scan.PassID,
		ScanID:    scan.ID,
		GuardID:   scan.GuardID,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: scan.ScannedAt,
	})
}
