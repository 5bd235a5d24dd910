package service

import (
	"context"
	"errors"

	"gatepass/internal/pass/cache"
	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Validate is the guard's preview: a pure read that reports whether the pass
// exists and is inside its validity window, with identity snapshots for the
// confirmation screen. It never writes a scan record.
//
// Invalidity is a result, not an error; the error return is reserved for
// store/infrastructure failures. Expiry is monotonic: the check compares the
// request clock against ExpiresAt, so once invalid a pass stays invalid.
func (s *Service) Validate(ctx context.Context, passID id.PassID) (models.ValidationResult, error) {
	now := requestcontext.Now(ctx)

	snap, err := s.lookupSnapshot(ctx, passID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementValidation("not_found")
			return models.ValidationResult{Valid: false, Reason: models.ReasonNotFound}, nil
		}
		return models.ValidationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up pass")
	}

	if snap.Pass.IsExpired(now) {
		s.metrics.IncrementValidation("expired")
		return models.ValidationResult{
			Valid:     false,
			Reason:    models.ReasonExpired,
			CreatedAt: snap.Pass.CreatedAt,
			ExpiresAt: snap.Pass.ExpiresAt,
		}, nil
	}

	s.metrics.IncrementValidation("valid")
	return models.ValidationResult{
		Valid:     true,
		Visitor:   &models.VisitorInfo{Name: snap.Pass.VisitorName, PhoneNumber: snap.Pass.VisitorPhone},
		Resident:  &snap.Resident,
		CreatedAt: snap.Pass.CreatedAt,
		ExpiresAt: snap.Pass.ExpiresAt,
	}, nil
}

// lookupSnapshot reads through the cache. Cache content is the pass record,
// never a verdict, so a stale entry cannot flip an expired pass back to valid;
// renew/edit/delete invalidate explicitly.
func (s *Service) lookupSnapshot(ctx context.Context, passID id.PassID) (cache.Snapshot, error) {
	if snap, err := s.snapshots.Get(ctx, passID); err == nil {
		return snap, nil
	}

	pass, err := s.passes.FindByID(ctx, passID)
	if err != nil {
		return cache.Snapshot{}, err
	}
	resident, err := s.residents.FindResidentByID(ctx, pass.ResidentID)
	if err != nil {
		return cache.Snapshot{}, err
	}
	snap := cache.Snapshot{
		Pass: pass,
		Resident: models.ResidentInfo{
			Name:        resident.Name,
			PhoneNumber: resident.PhoneNumber,
			Apartment:   resident.Apartment,
		},
	}
	_ = s.snapshots.Set(ctx, snap, requestcontext.Now(ctx))
	return snap, nil
}
