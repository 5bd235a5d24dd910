package store

import (
	"context"
	"time"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
)

// Store persists visitor passes. Implementations enforce visitor-phone
// uniqueness at the storage layer: Create and Update return
// sentinel.ErrConflict when another pass holds the phone, so concurrent
// issuance cannot slip two passes past an application-level check.
// Missing records surface as sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, pass models.VisitorPass) error
	FindByID(ctx context.Context, passID id.PassID) (models.VisitorPass, error)
	Update(ctx context.Context, pass models.VisitorPass) error
	Delete(ctx context.Context, passID id.PassID) error
	ListByResident(ctx context.Context, residentID id.ResidentID) ([]models.VisitorPass, error)
	List(ctx context.Context, offset, limit int) ([]models.VisitorPass, error)
	Count(ctx context.Context) (total int, err error)
	CountActive(ctx context.Context, now time.Time) (active int, err error)
}
