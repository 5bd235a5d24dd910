package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists directory records in PostgreSQL. Pure I/O; residence
// scoping logic belongs to the callers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveResident(ctx context.Context, resident Resident) error {
	query := `
		INSERT INTO residents (id, name, phone_number, apartment, password_hash, residence_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			apartment = EXCLUDED.apartment,
			password_hash = EXCLUDED.password_hash
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(resident.ID), resident.Name, resident.PhoneNumber,
		resident.Apartment, resident.PasswordHash, uuid.UUID(resident.ResidenceID),
	)
	if err != nil {
		return fmt.Errorf("save resident: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindResidentByID(ctx context.Context, residentID id.ResidentID) (Resident, error) {
	query := `
		SELECT id, name, phone_number, apartment, password_hash, residence_id
		FROM residents WHERE id = $1
	`
	return scanResident(s.db.QueryRowContext(ctx, query, uuid.UUID(residentID)))
}

func (s *PostgresStore) FindResidentByPhone(ctx context.Context, phone string) (Resident, error) {
	query := `
		SELECT id, name, phone_number, apartment, password_hash, residence_id
		FROM residents WHERE phone_number = $1
	`
	return scanResident(s.db.QueryRowContext(ctx, query, phone))
}

func (s *PostgresStore) ListResidentIDs(ctx context.Context, residenceID id.ResidenceID) ([]id.ResidentID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM residents WHERE residence_id = $1`, uuid.UUID(residenceID))
	if err != nil {
		return nil, fmt.Errorf("list resident ids: %w", err)
	}
	defer rows.Close()
	var out []id.ResidentID
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan resident id: %w", err)
		}
		out = append(out, id.ResidentID(u))
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveGuard(ctx context.Context, guard Guard) error {
	query := `
		INSERT INTO guards (id, name, phone_number, password_hash, residence_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			password_hash = EXCLUDED.password_hash
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(guard.ID), guard.Name, guard.PhoneNumber,
		guard.PasswordHash, uuid.UUID(guard.ResidenceID),
	)
	if err != nil {
		return fmt.Errorf("save guard: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindGuardByID(ctx context.Context, guardID id.GuardID) (Guard, error) {
	query := `
		SELECT id, name, phone_number, password_hash, residence_id
		FROM guards WHERE id = $1
	`
	return scanGuard(s.db.QueryRowContext(ctx, query, uuid.UUID(guardID)))
}

func (s *PostgresStore) FindGuardByPhone(ctx context.Context, phone string) (Guard, error) {
	query := `
		SELECT id, name, phone_number, password_hash, residence_id
		FROM guards WHERE phone_number = $1
	`
	return scanGuard(s.db.QueryRowContext(ctx, query, phone))
}

func (s *PostgresStore) ListGuardIDs(ctx context.Context, residenceID id.ResidenceID) ([]id.GuardID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM guards WHERE residence_id = $1`, uuid.UUID(residenceID))
	if err != nil {
		return nil, fmt.Errorf("list guard ids: %w", err)
	}
	defer rows.Close()
	var out []id.GuardID
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan guard id: %w", err)
		}
		out = append(out, id.GuardID(u))
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveResidence(ctx context.Context, residence Residence) error {
	query := `
		INSERT INTO residences (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address
	`
	_, err := s.db.ExecContext(ctx, query, uuid.UUID(residence.ID), residence.Name, residence.Address)
	if err != nil {
		return fmt.Errorf("save residence: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindResidenceByID(ctx context.Context, residenceID id.ResidenceID) (Residence, error) {
	var (
		r       Residence
		u       uuid.UUID
		address sql.NullString
	)
	query := `SELECT id, name, address FROM residences WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(residenceID)).Scan(&u, &r.Name, &address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Residence{}, sentinel.ErrNotFound
		}
		return Residence{}, fmt.Errorf("find residence: %w", err)
	}
	r.ID = id.ResidenceID(u)
	r.Address = address.String
	return r, nil
}

func scanResident(row *sql.Row) (Resident, error) {
	var (
		r    Resident
		rid  uuid.UUID
		resi uuid.UUID
	)
	err := row.Scan(&rid, &r.Name, &r.PhoneNumber, &r.Apartment, &r.PasswordHash, &resi)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resident{}, sentinel.ErrNotFound
		}
		return Resident{}, fmt.Errorf("find resident: %w", err)
	}
	r.ID = id.ResidentID(rid)
	r.ResidenceID = id.ResidenceID(resi)
	return r, nil
}

func scanGuard(row *sql.Row) (Guard, error) {
	var (
		g    Guard
		gid  uuid.UUID
		resi uuid.UUID
	)
	err := row.Scan(&gid, &g.Name, &g.PhoneNumber, &g.PasswordHash, &resi)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Guard{}, sentinel.ErrNotFound
		}
		return Guard{}, fmt.Errorf("find guard: %w", err)
	}
	g.ID = id.GuardID(gid)
	g.ResidenceID = id.ResidenceID(resi)
	return g, nil
}
