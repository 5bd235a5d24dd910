package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists visitor passes. The UNIQUE constraint on
// visitor_phone is the duplicate-phone enforcement point; the store only
// translates the violation into sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, pass models.VisitorPass) error {
	query := `
		INSERT INTO visitor_passes (id, resident_id, visitor_name, visitor_phone, qr_payload, duration_minutes, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(pass.ID), uuid.UUID(pass.ResidentID), pass.VisitorName,
		pass.VisitorPhone, pass.QRPayload, pass.DurationMinutes,
		pass.CreatedAt, pass.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create pass: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, passID id.PassID) (models.VisitorPass, error) {
	query := selectPass + ` WHERE id = $1`
	return scanPass(s.db.QueryRowContext(ctx, query, uuid.UUID(passID)))
}

func (s *PostgresStore) Update(ctx context.Context, pass models.VisitorPass) error {
	query := `
		UPDATE visitor_passes
		SET visitor_name = $2, visitor_phone = $3, qr_payload = $4, duration_minutes = $5, expires_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(pass.ID), pass.VisitorName, pass.VisitorPhone,
		pass.QRPayload, pass.DurationMinutes, pass.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update pass: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pass: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, passID id.PassID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitor_passes WHERE id = $1`, uuid.UUID(passID))
	if err != nil {
		return fmt.Errorf("delete pass: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pass: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByResident(ctx context.Context, residentID id.ResidentID) ([]models.VisitorPass, error) {
	query := selectPass + ` WHERE resident_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(residentID))
	if err != nil {
		return nil, fmt.Errorf("list passes by resident: %w", err)
	}
	return collectPasses(rows)
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]models.VisitorPass, error) {
	if limit <= 0 {
		limit = 100
	}
	query := selectPass + ` ORDER BY created_at OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	return collectPasses(rows)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitor_passes`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count passes: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) CountActive(ctx context.Context, now time.Time) (int, error) {
	var active int
	query := `SELECT COUNT(*) FROM visitor_passes WHERE expires_at > $1`
	if err := s.db.QueryRowContext(ctx, query, now).Scan(&active); err != nil {
		return 0, fmt.Errorf("count active passes: %w", err)
	}
	return active, nil
}

const selectPass = `
	SELECT id, resident_id, visitor_name, visitor_phone, qr_payload, duration_minutes, created_at, expires_at
	FROM visitor_passes`

func scanPass(row *sql.Row) (models.VisitorPass, error) {
	var (
		pass       models.VisitorPass
		passID     uuid.UUID
		residentID uuid.UUID
	)
	err := row.Scan(&passID, &residentID, &pass.VisitorName, &pass.VisitorPhone,
		&pass.QRPayload, &pass.DurationMinutes, &pass.CreatedAt, &pass.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VisitorPass{}, sentinel.ErrNotFound
		}
		return models.VisitorPass{}, fmt.Errorf("find pass: %w", err)
	}
	pass.ID = id.PassID(passID)
	pass.ResidentID = id.ResidentID(residentID)
	return pass, nil
}

func collectPasses(rows *sql.Rows) ([]models.VisitorPass, error) {
	defer rows.Close()
	var out []models.VisitorPass
	for rows.Next() {
		var (
			pass       models.VisitorPass
			passID     uuid.UUID
			residentID uuid.UUID
		)
		err := rows.Scan(&passID, &residentID, &pass.VisitorName, &pass.VisitorPhone,
			&pass.QRPayload, &pass.DurationMinutes, &pass.CreatedAt, &pass.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		pass.ID = id.PassID(passID)
		pass.ResidentID = id.ResidentID(residentID)
		out = append(out, pass)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
