package directory

import (
	"context"

	id "gatepass/pkg/domain"
)

// Store is interface-driven to keep domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring services.
// Missing records surface as sentinel.ErrNotFound.
type Store interface {
	SaveResident(ctx context.Context, resident Resident) error
	FindResidentByID(ctx context.Context, residentID id.ResidentID) (Resident, error)
	FindResidentByPhone(ctx context.Context, phone string) (Resident, error)
	ListResidentIDs(ctx context.Context, residenceID id.ResidenceID) ([]id.ResidentID, error)

	SaveGuard(ctx context.Context, guard Guard) error
	FindGuardByID(ctx context.Context, guardID id.GuardID) (Guard, error)
	FindGuardByPhone(ctx context.Context, phone string) (Guard, error)
	ListGuardIDs(ctx context.Context, residenceID id.ResidenceID) ([]id.GuardID, error)

	SaveResidence(ctx context.Context, residence Residence) error
	FindResidenceByID(ctx context.Context, residenceID id.ResidenceID) (Residence, error)
}
