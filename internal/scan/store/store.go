// Package store persists guard scan decisions. The at-most-once guarantee
// lives here: InsertDecision is conditional on no terminal decision existing
// for the pass, enforced atomically by the backing store rather than by a
// read-then-write in the service.
package store

import (
	"context"
	"time"

	"gatepass/internal/scan/models"
	id "gatepass/pkg/domain"
)

// Store is the persistence contract for scan decisions.
//
// InsertDecision returns sentinel.ErrConflict when a terminal decision is
// already on file for the pass; the caller re-reads the winner via
// FindDecision. FindDecision returns sentinel.ErrNotFound when no terminal
// decision exists.
type Store interface {
	InsertDecision(ctx context.Context, scan models.ScanDecision) error
	FindDecision(ctx context.Context, passID id.PassID) (models.ScanDecision, error)
	ListByGuard(ctx context.Context, guardID id.GuardID, limit int) ([]models.ScanDecision, error)
	StatsByGuard(ctx context.Context, guardID id.GuardID) (models.GuardStats, error)
	ListInWindow(ctx context.Context, from, to time.Time) ([]models.ScanDecision, error)
	CountDecided(ctx context.Context) (int, error)
}
