package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gatepass/internal/directory"
	"gatepass/internal/pass/cache"
	"gatepass/internal/pass/metrics"
	"gatepass/internal/pass/models"
	"gatepass/internal/pass/qr"
	"gatepass/internal/pass/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Service owns the visitor-pass lifecycle: issuance, renewal, edits, deletion,
// and the read-only validation preview. The at-issuance phone-uniqueness rule
// is enforced by the store, not here; the service only translates conflicts.
type Service struct {
	passes    store.Store
	residents directory.Store
	snapshots *cache.Cache
	encoder   qr.Encoder
	auditlog  *audit.Publisher
	metrics   *metrics.Metrics
	phoneRe   *regexp.Regexp
}

// NewService compiles the configured national phone pattern once.
func NewService(
	passes store.Store,
	residents directory.Store,
	snapshots *cache.Cache,
	encoder qr.Encoder,
	auditlog *audit.Publisher,
	m *metrics.Metrics,
	phonePattern string,
) (*Service, error) {
	phoneRe, err := regexp.Compile(phonePattern)
	if err != nil {
		return nil, fmt.Errorf("compile phone pattern: %w", err)
	}
	return &Service{
		passes:    passes,
		residents: residents,
		snapshots: snapshots,
		encoder:   encoder,
		auditlog:  auditlog,
		metrics:   m,
		phoneRe:   phoneRe,
	}, nil
}

// Issue creates a pass bound to the resident with a validity window of
// [now, now+duration). Duplicate visitor phones are rejected by the store's
// uniqueness constraint.
func (s *Service) Issue(ctx context.Context, residentID id.ResidentID, req models.CreatePassRequest) (models.VisitorPass, error) {
	if err := s.validateVisitor(req.VisitorName, req.VisitorPhone); err != nil {
		return models.VisitorPass{}, err
	}
	if req.DurationMinutes <= 0 {
		return models.VisitorPass{}, dErrors.New(dErrors.CodeValidation, "duration must be a positive number of minutes")
	}
	if _, err := s.residents.FindResidentByID(ctx, residentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.VisitorPass{}, dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up resident")
	}

	now := requestcontext.Now(ctx)
	pass := models.VisitorPass{
		ID:              id.NewPassID(),
		ResidentID:      residentID,
		VisitorName:     req.VisitorName,
		VisitorPhone:    req.VisitorPhone,
		QRPayload:       qr.Payload(req.VisitorName, req.VisitorPhone, residentID, req.DurationMinutes),
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		ExpiresAt:       now.Add(minutes(req.DurationMinutes)),
	}
	if err := s.passes.Create(ctx, pass); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeConflict,
				"an active pass already exists for visitor phone "+req.VisitorPhone)
		}
		return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create pass")
	}

	s.metrics.IncrementIssued()
	s.emit(ctx, audit.ActionPassIssued, pass)
	return pass, nil
}

// Renew regenerates the QR payload and resets the validity window to
// [unchanged CreatedAt, now+duration). ID, resident, and CreatedAt are stable.
func (s *Service) Renew(ctx context.Context, residentID id.ResidentID, passID id.PassID, durationMinutes int) (models.VisitorPass, error) {
	if durationMinutes <= 0 {
		return models.VisitorPass{}, dErrors.New(dErrors.CodeValidation, "duration must be a positive number of minutes")
	}
	pass, err := s.findOwned(ctx, residentID, passID)
	if err != nil {
		return models.VisitorPass{}, err
	}

	now := requestcontext.Now(ctx)
	pass.DurationMinutes = durationMinutes
	pass.QRPayload = qr.Payload(pass.VisitorName, pass.VisitorPhone, pass.ResidentID, durationMinutes)
	pass.ExpiresAt = now.Add(minutes(durationMinutes))
	if err := s.passes.Update(ctx, pass); err != nil {
		return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to renew pass")
	}

	s.invalidate(ctx, passID)
	s.metrics.IncrementRenewed()
	s.emit(ctx, audit.ActionPassRenewed, pass)
	return pass, nil
}

// Update edits the visitor fields and re-derives the QR payload. The validity
// window is untouched.
func (s *Service) Update(ctx context.Context, residentID id.ResidentID, passID id.PassID, req models.UpdatePassRequest) (models.VisitorPass, error) {
	pass, err := s.findOwned(ctx, residentID, passID)
	if err != nil {
		return models.VisitorPass{}, err
	}
	if req.VisitorName != nil {
		pass.VisitorName = *req.VisitorName
	}
	if req.VisitorPhone != nil {
		pass.VisitorPhone = *req.VisitorPhone
	}
	if err := s.validateVisitor(pass.VisitorName, pass.VisitorPhone); err != nil {
		return models.VisitorPass{}, err
	}
	pass.QRPayload = qr.Payload(pass.VisitorName, pass.VisitorPhone, pass.ResidentID, pass.DurationMinutes)
	if err := s.passes.Update(ctx, pass); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeConflict,
				"an active pass already exists for visitor phone "+pass.VisitorPhone)
		}
		return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pass")
	}
	s.invalidate(ctx, passID)
	return pass, nil
}

// Delete removes the pass. A deleted pass frees its visitor phone for reuse.
func (s *Service) Delete(ctx context.Context, residentID id.ResidentID, passID id.PassID) error {
	pass, err := s.findOwned(ctx, residentID, passID)
	if err != nil {
		return err
	}
	if err := s.passes.Delete(ctx, passID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete pass")
	}
	s.invalidate(ctx, passID)
	s.emit(ctx, audit.ActionPassDeleted, pass)
	return nil
}

// Get returns a pass owned by the resident.
func (s *Service) Get(ctx context.Context, residentID id.ResidentID, passID id.PassID) (models.VisitorPass, error) {
	return s.findOwned(ctx, residentID, passID)
}

// ListByResident returns the resident's passes, oldest first.
func (s *Service) ListByResident(ctx context.Context, residentID id.ResidentID) ([]models.VisitorPass, error) {
	passes, err := s.passes.ListByResident(ctx, residentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list passes")
	}
	return passes, nil
}

// EncodeQR renders the pass payload through the configured encoder.
func (s *Service) EncodeQR(pass models.VisitorPass) (string, error) {
	encoded, err := s.encoder.Encode(pass.QRPayload)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode qr payload")
	}
	return encoded, nil
}

func (s *Service) validateVisitor(name, phone string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "visitor name is required")
	}
	if !s.phoneRe.MatchString(phone) {
		return dErrors.New(dErrors.CodeValidation, "invalid phone number: include the country code prefix")
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, residentID id.ResidentID, passID id.PassID) (models.VisitorPass, error) {
	pass, err := s.passes.FindByID(ctx, passID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.VisitorPass{}, dErrors.New(dErrors.CodeNotFound, "pass not found")
		}
		return models.VisitorPass{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up pass")
	}
	// Ownership failures read as not-found so pass IDs are not probeable.
	if pass.ResidentID != residentID {
		return models.VisitorPass{}, dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	return pass, nil
}

func (s *Service) invalidate(ctx context.Context, passID id.PassID) {
	_ = s.snapshots.Invalidate(ctx, passID)
}

func (s *Service) emit(ctx context.Context, action audit.Action, pass models.VisitorPass) {
	_ = s.auditlog.Emit(ctx, audit.Event{
		Action:     action,
		PassID:     pass.ID,
		ResidentID: pass.ResidentID,
		RequestID:  requestcontext.RequestID(ctx),
		Timestamp:  requestcontext.Now(ctx),
	})
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
