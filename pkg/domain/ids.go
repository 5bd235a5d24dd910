package domain

import (
	"github.com/google/uuid"

	dErrors "gatepass/pkg/domain-errors"
)

// Typed UUID identifiers for the core entities. Distinct types keep a guard ID
// from ever being passed where a pass ID is expected; the compiler enforces it.
//
// Usage: construct via the ParseXxxID helpers at trust boundaries (handlers,
// adapters); direct casting bypasses validation.
type (
	PassID      uuid.UUID
	ScanID      uuid.UUID
	GuardID     uuid.UUID
	ResidentID  uuid.UUID
	ResidenceID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}

func ParsePassID(s string) (PassID, error) {
	u, err := parseUUID(s, "pass id")
	return PassID(u), err
}

func ParseScanID(s string) (ScanID, error) {
	u, err := parseUUID(s, "scan id")
	return ScanID(u), err
}

func ParseGuardID(s string) (GuardID, error) {
	u, err := parseUUID(s, "guard id")
	return GuardID(u), err
}

func ParseResidentID(s string) (ResidentID, error) {
	u, err := parseUUID(s, "resident id")
	return ResidentID(u), err
}

func ParseResidenceID(s string) (ResidenceID, error) {
	u, err := parseUUID(s, "residence id")
	return ResidenceID(u), err
}

// NewPassID generates a fresh pass identifier.
func NewPassID() PassID { return PassID(uuid.New()) }

// NewScanID generates a fresh scan identifier.
func NewScanID() ScanID { return ScanID(uuid.New()) }

// Generators for directory entities, used by seeding and account management.
func NewGuardID() GuardID         { return GuardID(uuid.New()) }
func NewResidentID() ResidentID   { return ResidentID(uuid.New()) }
func NewResidenceID() ResidenceID { return ResidenceID(uuid.New()) }

func (id PassID) String() string      { return uuid.UUID(id).String() }
func (id ScanID) String() string      { return uuid.UUID(id).String() }
func (id GuardID) String() string     { return uuid.UUID(id).String() }
func (id ResidentID) String() string  { return uuid.UUID(id).String() }
func (id ResidenceID) String() string { return uuid.UUID(id).String() }

func (id PassID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ScanID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id GuardID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ResidentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ResidenceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
