package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatepass/internal/scan/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists scan decisions. The partial unique index
// guard_scans_one_decision_per_pass admits at most one confirmed row per
// pass; InsertDecision leans on it with ON CONFLICT DO NOTHING so losing a
// race surfaces as zero rows affected rather than an error.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertDecision(ctx context.Context, scan models.ScanDecision) error {
	query := `
		INSERT INTO guard_scans (id, pass_id, guard_id, confirmed, scanned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pass_id) WHERE confirmed IS NOT NULL DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(scan.ID), uuid.UUID(scan.PassID), uuid.UUID(scan.GuardID),
		scan.Confirmed, scan.ScannedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert scan decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert scan decision: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindDecision(ctx context.Context, passID id.PassID) (models.ScanDecision, error) {
	query := selectScan + ` WHERE pass_id = $1 AND confirmed IS NOT NULL`
	return scanRow(s.db.QueryRowContext(ctx, query, uuid.UUID(passID)))
}

func (s *PostgresStore) ListByGuard(ctx context.Context, guardID id.GuardID, limit int) ([]models.ScanDecision, error) {
	if limit <= 0 {
		limit = 100
	}
	query := selectScan + ` WHERE guard_id = $1 AND confirmed IS NOT NULL ORDER BY scanned_at DESC LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(guardID), limit)
	if err != nil {
		return nil, fmt.Errorf("list scans by guard: %w", err)
	}
	return collectScans(rows)
}

func (s *PostgresStore) StatsByGuard(ctx context.Context, guardID id.GuardID) (models.GuardStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE confirmed),
		       COUNT(*) FILTER (WHERE NOT confirmed)
		FROM guard_scans
		WHERE guard_id = $1 AND confirmed IS NOT NULL
	`
	stats := models.GuardStats{GuardID: guardID}
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(guardID)).
		Scan(&stats.TotalScans, &stats.TotalApproved, &stats.TotalDenied)
	if err != nil {
		return models.GuardStats{}, fmt.Errorf("guard stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) ListInWindow(ctx context.Context, from, to time.Time) ([]models.ScanDecision, error) {
	query := selectScan + ` WHERE confirmed IS NOT NULL AND scanned_at BETWEEN $1 AND $2 ORDER BY scanned_at`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scans in window: %w", err)
	}
	return collectScans(rows)
}

func (s *PostgresStore) CountDecided(ctx context.Context) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM guard_scans WHERE confirmed IS NOT NULL`
	if err := s.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("count decided scans: %w", err)
	}
	return total, nil
}

const selectScan = `
	SELECT id, pass_id, guard_id, confirmed, scanned_at
	FROM guard_scans`

func scanRow(row *sql.Row) (models.ScanDecision, error) {
	var (
		scan    models.ScanDecision
		scanID  uuid.UUID
		passID  uuid.UUID
		guardID uuid.UUID
	)
	err := row.Scan(&scanID, &passID, &guardID, &scan.Confirmed, &scan.ScannedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScanDecision{}, sentinel.ErrNotFound
		}
		return models.ScanDecision{}, fmt.Errorf("find scan decision: %w", err)
	}
	scan.ID = id.ScanID(scanID)
	scan.PassID = id.PassID(passID)
	scan.GuardID = id.GuardID(guardID)
	return scan, nil
}

func collectScans(rows *sql.Rows) ([]models.ScanDecision, error) {
	defer rows.Close()
	var out []models.ScanDecision
	for rows.Next() {
		var (
			scan    models.ScanDecision
			scanID  uuid.UUID
			passID  uuid.UUID
			guardID uuid.UUID
		)
		if err := rows.Scan(&scanID, &passID, &guardID, &scan.Confirmed, &scan.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan guard scan: %w", err)
		}
		scan.ID = id.ScanID(scanID)
		scan.PassID = id.PassID(passID)
		scan.GuardID = id.GuardID(guardID)
		out = append(out, scan)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
