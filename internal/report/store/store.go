// Package store serves the read-only joins behind report aggregation. Reports
// never write, so the contract is a pair of residence-scoped listings plus the
// global counters.
package store

import (
	"context"
	"time"

	"gatepass/internal/report/models"
	id "gatepass/pkg/domain"
)

// Queries is the read contract for the aggregator.
type Queries interface {
	PassesByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.PassRecord, error)
	ScansByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.ScanRecord, error)
	ListPasses(ctx context.Context, offset, limit int) (models.PassPage, error)
	Statistics(ctx context.Context, now time.Time) (models.Statistics, error)
}
